package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrInvalidDifficulty = errors.New("invalid difficulty")
	// ErrStoreUnavailable means no recipe store is configured or it cannot be reached.
	ErrStoreUnavailable = errors.New("recipe store unavailable")
)
