package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrUnknownMode = errors.New("unknown ranking mode")
	// ErrDegenerateWeights is a warning: the fallback weights are still usable.
	ErrDegenerateWeights = errors.New("degenerate weights: falling back to equal weighting")
)
