package staging

import "errors"

// Sentinel errors for the staging module.
var (
	// ErrCycleInFlight is returned by Wait when ctx ends before the running cycle.
	ErrCycleInFlight = errors.New("upload cycle still in flight")
)
