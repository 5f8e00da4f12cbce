package api

import "github.com/okian/reciperank/pkg/logger"

// Option configures the ranking handlers.
type Option func(*RankHandler)

// WithCache enables response caching for the ranking endpoints.
func WithCache(c Cache) Option {
	return func(h *RankHandler) {
		h.cache = c
	}
}

// WithMaxCandidates caps the candidates accepted by one request.
func WithMaxCandidates(n int) Option {
	return func(h *RankHandler) {
		if n > 0 {
			h.maxCandidates = n
		}
	}
}

// WithMaxRequestBytes caps request body size.
func WithMaxRequestBytes(n int64) Option {
	return func(h *RankHandler) {
		if n > 0 {
			h.maxRequestBytes = n
		}
	}
}

// WithLogger sets the handler logger.
func WithLogger(l logger.Logger) Option {
	return func(h *RankHandler) {
		if l != nil {
			h.logger = l
		}
	}
}
