package service

import (
	"time"

	"github.com/okian/reciperank/internal/domain/scoring"
	"github.com/okian/reciperank/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of scoring workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the scoring chunk queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithChunkSize sets how many candidates one worker task scores.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithParallelThreshold sets the list length from which scoring fans out.
func WithParallelThreshold(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.parallelThreshold = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithDefaultMode sets the mode used when a request names none.
func WithDefaultMode(m scoring.Mode) Option {
	return func(s *Service) {
		if m.Valid() {
			s.defaultMode = m
		}
	}
}

// WithWeightOverrides sets weights merged over the default mode preset. They
// apply only when a request names neither a mode nor weights.
func WithWeightOverrides(o *scoring.WeightOverrides) Option {
	return func(s *Service) {
		s.overrides = o
	}
}

// WithRecencyHalfLife sets the default recency half-life in days.
func WithRecencyHalfLife(days float64) Option {
	return func(s *Service) {
		if days > 0 {
			s.halfLifeDays = days
		}
	}
}

// WithStore enables /rank/hits hydration.
func WithStore(st Store) Option {
	return func(s *Service) {
		s.store = st
	}
}

// WithClock overrides the time source used when a request has no evaluation time.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
