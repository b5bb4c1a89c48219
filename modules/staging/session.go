package staging

import (
	"context"
	"sync"
	"time"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/events"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Publisher receives staging notifications.
type Publisher interface {
	FilesOffered(event events.FilesOfferedEvent)
	UploadStarted(event events.UploadStartedEvent)
	UploadProgressed(event events.UploadProgressedEvent)
	UploadCompleted(event events.UploadCompletedEvent)
}

type nopPublisher struct{}

func (nopPublisher) FilesOffered(events.FilesOfferedEvent)         {}
func (nopPublisher) UploadStarted(events.UploadStartedEvent)       {}
func (nopPublisher) UploadProgressed(events.UploadProgressedEvent) {}
func (nopPublisher) UploadCompleted(events.UploadCompletedEvent)   {}

// Session is the single owner of the staging state. The mutex only protects
// memory; a second start while uploading is refused by the status guard in Begin.
//
// Every state change takes a sequence number under mu and then hands off to
// pubMu before mu is released, so notifications leave in state order without
// holding mu while publishing.
type Session struct {
	mu        sync.Mutex
	pubMu     sync.Mutex
	seq       uint64
	state     State
	policy    upload.Policy
	simulator *Simulator
	publisher Publisher
	logger    types.Logger
	cycles    sync.WaitGroup
}

// NewSession creates an idle session. A nil publisher discards notifications.
func NewSession(policy upload.Policy, simulator *Simulator, publisher Publisher, logger types.Logger) *Session {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Session{
		state:     NewState(),
		policy:    policy,
		simulator: simulator,
		publisher: publisher,
		logger:    logger,
	}
}

// Policy returns the validation policy in use.
func (s *Session) Policy() upload.Policy {
	return s.policy
}

// Snapshot returns the current view of the state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Offer validates candidates and appends the accepted ones. Rejection is
// reported through the snapshot's error message and upload.ErrValidationRejected.
func (s *Session) Offer(candidates []upload.FileCandidate) (Snapshot, []upload.FileCandidate, error) {
	s.mu.Lock()
	next, accepted, err := Offer(s.state, candidates, s.policy)
	s.state = next
	snap := s.state.Snapshot()
	seq := s.handOff()
	defer s.pubMu.Unlock()

	if err != nil {
		s.logger.Info("Offered files rejected", "offered", len(candidates))
	} else {
		s.logger.Info("Files accepted",
			"offered", len(candidates),
			"accepted", len(accepted),
			"selected", len(snap.Files))
	}

	s.publisher.FilesOffered(events.FilesOfferedEvent{
		Seq:       seq,
		Offered:   len(candidates),
		Accepted:  upload.Names(accepted),
		Error:     snap.Error,
		Selected:  len(snap.Files),
		Timestamp: time.Now(),
	})

	return snap, accepted, err
}

// StartUpload begins a cycle in the background and returns its ID. It
// reports false without any state change when a cycle is already running or
// nothing is selected.
func (s *Session) StartUpload() (string, bool) {
	s.mu.Lock()
	next, batch, ok := Begin(s.state)
	if !ok {
		status, selected := s.state.Status, len(s.state.Selected)
		s.mu.Unlock()
		s.logger.Debug("Upload start ignored", "status", status, "selected", selected)
		return "", false
	}
	s.state = next
	s.cycles.Add(1)
	seq := s.handOff()

	cycleID := uuid.New().String()
	s.logger.Info("Upload cycle started", "cycleID", cycleID, "files", len(batch))
	s.publisher.UploadStarted(events.UploadStartedEvent{
		Seq:       seq,
		CycleID:   cycleID,
		Files:     upload.Names(batch),
		Timestamp: time.Now(),
	})
	s.pubMu.Unlock()

	go s.runCycle(cycleID, batch)
	return cycleID, true
}

// runCycle uploads batch in order and resets the selection when done.
// Cycles are never cancelled, so it runs on a background context.
func (s *Session) runCycle(cycleID string, batch []upload.FileCandidate) {
	defer s.cycles.Done()

	total := len(batch)
	failed := s.simulator.Run(context.Background(), batch, func(i int, file upload.FileCandidate, err error) {
		s.mu.Lock()
		s.state = Step(s.state, total, err)
		snap := s.state.Snapshot()
		seq := s.handOff()
		defer s.pubMu.Unlock()

		if err != nil {
			s.logger.Warn("File upload failed", "cycleID", cycleID, "file", file.Name, "error", err)
		}

		s.publisher.UploadProgressed(events.UploadProgressedEvent{
			Seq:       seq,
			CycleID:   cycleID,
			Index:     i,
			Total:     total,
			File:      file.Name,
			Failed:    err != nil,
			Progress:  snap.Progress,
			Percent:   snap.Percent,
			Timestamp: time.Now(),
		})
	})

	s.mu.Lock()
	s.state = Finish(s.state)
	lastErr := s.state.Error
	seq := s.handOff()
	defer s.pubMu.Unlock()

	s.logger.Info("Upload cycle completed", "cycleID", cycleID, "files", total, "failed", failed)
	s.publisher.UploadCompleted(events.UploadCompletedEvent{
		Seq:       seq,
		CycleID:   cycleID,
		Total:     total,
		Failed:    failed,
		Error:     lastErr,
		Timestamp: time.Now(),
	})
}

// handOff numbers the state change just made and trades mu for pubMu.
// It must be called with mu held; the caller releases pubMu after publishing.
func (s *Session) handOff() uint64 {
	s.seq++
	seq := s.seq
	s.pubMu.Lock()
	s.mu.Unlock()
	return seq
}

// Wait blocks until no cycle is running or ctx is done.
func (s *Session) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.cycles.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ErrCycleInFlight
	}
}
