package staging

import (
	"math"
	"slices"

	"github.com/example/upload-staging-demo/domain/upload"
)

// State is the staging widget's owned state record. It is only changed
// through the transition functions below, each returning a new value.
type State struct {
	Selected []upload.FileCandidate
	Error    string
	Status   upload.Status
	Progress float64
}

// NewState returns the initial idle state.
func NewState() State {
	return State{Status: upload.StatusIdle}
}

// Offer validates candidates and appends the accepted ones to the selection.
// A fully rejected batch leaves the selection untouched and sets the error
// message; the returned error is upload.ErrValidationRejected.
func Offer(s State, candidates []upload.FileCandidate, policy upload.Policy) (State, []upload.FileCandidate, error) {
	s.Error = ""

	accepted := upload.Validate(candidates, policy)
	if len(accepted) == 0 {
		s.Error = upload.MessageInvalidFile
		return s, nil, upload.ErrValidationRejected
	}

	selected := make([]upload.FileCandidate, 0, len(s.Selected)+len(accepted))
	selected = append(selected, s.Selected...)
	s.Selected = append(selected, accepted...)
	return s, accepted, nil
}

// Begin starts a cycle. It reports false, leaving s unchanged, when a cycle
// is already running or nothing is selected. The returned batch is the
// selection captured at start; its length is the progress denominator.
func Begin(s State) (State, []upload.FileCandidate, bool) {
	if s.Status == upload.StatusUploading || len(s.Selected) == 0 {
		return s, nil, false
	}

	s.Error = ""
	s.Progress = 0
	s.Status = upload.StatusUploading
	return s, slices.Clone(s.Selected), true
}

// Step records the outcome of one file out of total. Success advances
// progress by 100/total; failure only sets the error message.
func Step(s State, total int, err error) State {
	if err != nil {
		s.Error = upload.MessageUploadFailed
		return s
	}
	if total > 0 {
		s.Progress = math.Min(100, s.Progress+100/float64(total))
	}
	return s
}

// Finish ends a cycle: back to idle with an empty selection and zero progress.
// The last error message, if any, stays visible.
func Finish(s State) State {
	s.Status = upload.StatusIdle
	s.Selected = nil
	s.Progress = 0
	return s
}

// Snapshot is the read-only view of a State handed to renderers and callers.
type Snapshot struct {
	Files     []string      `json:"files"`
	Error     string        `json:"error,omitempty"`
	Status    upload.Status `json:"status"`
	Uploading bool          `json:"uploading"`
	CanUpload bool          `json:"can_upload"`
	Progress  float64       `json:"progress"`
	Percent   int           `json:"percent"`
}

// Snapshot returns the view of s. Percent is the progress rounded to the
// nearest integer.
func (s State) Snapshot() Snapshot {
	uploading := s.Status == upload.StatusUploading
	return Snapshot{
		Files:     upload.Names(s.Selected),
		Error:     s.Error,
		Status:    s.Status,
		Uploading: uploading,
		CanUpload: !uploading && len(s.Selected) > 0,
		Progress:  s.Progress,
		Percent:   int(math.Round(s.Progress)),
	}
}
