package cache

import (
	"time"

	"github.com/okian/reciperank/pkg/logger"
)

const (
	defaultTTL        = time.Minute
	defaultPrefix     = "reciperank:rank:"
	defaultMaxEntries = 10_000
)

type settings struct {
	ttl        time.Duration
	prefix     string
	maxEntries int
	logger     logger.Logger
	now        func() time.Time
}

func newSettings(opts []Option) settings {
	s := settings{
		ttl:        defaultTTL,
		prefix:     defaultPrefix,
		maxEntries: defaultMaxEntries,
		logger:     logger.Nop(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures a cache.
type Option func(*settings)

// WithTTL sets how long entries live. Non-positive values keep the default.
func WithTTL(ttl time.Duration) Option {
	return func(s *settings) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithPrefix sets the key namespace.
func WithPrefix(prefix string) Option {
	return func(s *settings) {
		s.prefix = prefix
	}
}

// WithMaxEntries bounds the in-memory cache. Ignored by Redis.
func WithMaxEntries(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxEntries = n
		}
	}
}

// WithLogger sets the logger used to report degraded lookups.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock replaces time.Now for expiry checks in the in-memory cache.
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		if now != nil {
			s.now = now
		}
	}
}
