package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	// ErrDegenerateSetWeights is a warning: result sets were weighted equally instead.
	ErrDegenerateSetWeights = errors.New("degenerate result set weights: falling back to equal weighting")
)
