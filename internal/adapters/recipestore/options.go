package recipestore

import (
	"time"

	"github.com/okian/reciperank/pkg/logger"
)

// Option configures a Store.
type Option func(*settings)

type settings struct {
	logger       logger.Logger
	queryTimeout time.Duration
	maxOpen      int
	maxIdle      int
	connLifetime time.Duration
}

func defaults() settings {
	return settings{
		logger:       logger.Nop(),
		queryTimeout: 2 * time.Second,
		maxOpen:      10,
		maxIdle:      5,
		connLifetime: 5 * time.Minute,
	}
}

// WithLogger sets the store logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithQueryTimeout bounds each hydration query. Zero disables the bound.
func WithQueryTimeout(d time.Duration) Option {
	return func(s *settings) {
		if d >= 0 {
			s.queryTimeout = d
		}
	}
}

// WithPool sets the connection pool limits used by Open.
func WithPool(maxOpen, maxIdle int, lifetime time.Duration) Option {
	return func(s *settings) {
		if maxOpen > 0 {
			s.maxOpen = maxOpen
		}
		if maxIdle >= 0 {
			s.maxIdle = maxIdle
		}
		if lifetime > 0 {
			s.connLifetime = lifetime
		}
	}
}
