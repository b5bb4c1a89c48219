package transport

import (
	"context"
	"time"

	"github.com/example/upload-staging-demo/domain/upload"
)

// DefaultLatency is the per-file delay of the simulated transport.
const DefaultLatency = time.Second

// Submitter delivers one file and reports success or failure.
// A real network client can replace the simulated one without touching
// the upload cycle.
type Submitter interface {
	Submit(ctx context.Context, file upload.FileCandidate) error
}

// SubmitterFunc adapts a plain function to Submitter.
type SubmitterFunc func(ctx context.Context, file upload.FileCandidate) error

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, file upload.FileCandidate) error {
	return f(ctx, file)
}

// Simulated stands in for a network transfer by waiting a fixed latency.
// No bytes are sent and it never fails on its own.
type Simulated struct {
	latency time.Duration
}

// NewSimulated creates a simulated transport. A non-positive latency falls
// back to DefaultLatency.
func NewSimulated(latency time.Duration) *Simulated {
	if latency <= 0 {
		latency = DefaultLatency
	}
	return &Simulated{latency: latency}
}

// Latency returns the configured per-file delay.
func (s *Simulated) Latency() time.Duration {
	return s.latency
}

// Submit waits for the configured latency or until ctx is done.
func (s *Simulated) Submit(ctx context.Context, _ upload.FileCandidate) error {
	timer := time.NewTimer(s.latency)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
