package staging

import (
	"context"
	"fmt"

	"github.com/example/upload-staging-demo/domain/upload"
	"github.com/example/upload-staging-demo/modules/transport"
)

// StepFunc observes the outcome of one file. err wraps upload.ErrUploadStepFailed.
type StepFunc func(index int, file upload.FileCandidate, err error)

// Simulator drives one upload cycle over a transport.
type Simulator struct {
	submitter transport.Submitter
}

// NewSimulator creates a simulator on top of the given transport.
func NewSimulator(submitter transport.Submitter) *Simulator {
	return &Simulator{submitter: submitter}
}

// Run submits files one after another, never concurrently, and calls onStep
// after each. A failed file does not stop the cycle. It returns the number
// of failed files.
func (s *Simulator) Run(ctx context.Context, files []upload.FileCandidate, onStep StepFunc) int {
	failed := 0
	for i, file := range files {
		var stepErr error
		if err := s.submitter.Submit(ctx, file); err != nil {
			stepErr = fmt.Errorf("%w: %s: %w", upload.ErrUploadStepFailed, file.Name, err)
			failed++
		}
		if onStep != nil {
			onStep(i, file, stepErr)
		}
	}
	return failed
}
