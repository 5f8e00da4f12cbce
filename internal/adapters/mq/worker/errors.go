package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrPoolStopped  = errors.New("worker pool stopped")
	ErrTaskPanicked = errors.New("scoring task panicked")
)
