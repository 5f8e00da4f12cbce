// Package config defines service configuration structures and loading hooks.
package config

import (
	"fmt"
	"runtime"
	"strings"
	"time"

	"github.com/okian/reciperank/internal/domain/scoring"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogJSON switches the log handler to JSON output.
	LogJSON bool `koanf:"log_json"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// WorkerCount sets the number of scoring workers.
	WorkerCount int `koanf:"worker_count"`

	// QueueSize bounds the scoring chunk queue.
	QueueSize int `koanf:"queue_size"`

	// ChunkSize is the number of candidates per queued scoring task.
	ChunkSize int `koanf:"chunk_size"`

	// ParallelThreshold is the candidate count below which scoring stays on
	// the request goroutine.
	ParallelThreshold int `koanf:"parallel_threshold"`

	// DefaultMode applies when a request names no mode.
	DefaultMode string `koanf:"default_mode"`

	// RecencyHalfLifeDays is the default recency half-life.
	RecencyHalfLifeDays float64 `koanf:"recency_half_life_days"`

	// WeightOverrides are service-wide weight overrides (similarity, quality,
	// engagement, recency). Request overrides replace them.
	WeightOverrides map[string]float64 `koanf:"weight_overrides"`

	// MaxCandidates caps the candidates accepted by a single request.
	MaxCandidates int `koanf:"max_candidates"`

	// MaxRequestBytes caps request body size.
	MaxRequestBytes int64 `koanf:"max_request_bytes"`

	// Redis response cache; disabled when RedisAddr is empty.
	RedisAddr       string `koanf:"redis_addr"`
	RedisPassword   string `koanf:"redis_password"`
	RedisDB         int    `koanf:"redis_db"`
	CacheTTLSeconds int    `koanf:"cache_ttl_seconds"`

	// PostgresDSN enables hit hydration; empty disables /rank/hits.
	PostgresDSN string `koanf:"postgres_dsn"`

	TracingEnabled    bool    `koanf:"tracing_enabled"`
	OTLPEndpoint      string  `koanf:"otlp_endpoint"`
	TracingSampleRate float64 `koanf:"tracing_sample_rate"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9080",
		WorkerCount:         runtime.NumCPU(),
		QueueSize:           4096,
		ChunkSize:           256,
		ParallelThreshold:   512,
		DefaultMode:         scoring.ModeBalanced.String(),
		RecencyHalfLifeDays: 30,
		MaxCandidates:       10_000,
		MaxRequestBytes:     8 << 20,
		CacheTTLSeconds:     60,
		OTLPEndpoint:        "localhost:4318",
		TracingSampleRate:   1,
	}
}

// Mode returns the parsed default mode. Call Validate first.
func (c *Config) Mode() scoring.Mode {
	m, err := scoring.ParseMode(c.DefaultMode)
	if err != nil {
		return scoring.ModeBalanced
	}
	return m
}

// Overrides converts WeightOverrides into scoring overrides; nil when unset.
func (c *Config) Overrides() *scoring.WeightOverrides {
	return scoring.OverridesFromMap(c.WeightOverrides)
}

// CacheTTL returns the cache entry lifetime.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

var weightKeys = map[string]bool{
	"similarity": true,
	"quality":    true,
	"engagement": true,
	"recency":    true,
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.RecencyHalfLifeDays <= 0:
		return fmt.Errorf("%w: recency_half_life_days must be positive", ErrInvalidConfig)
	case c.MaxCandidates <= 0:
		return fmt.Errorf("%w: max_candidates must be positive", ErrInvalidConfig)
	case c.MaxRequestBytes <= 0:
		return fmt.Errorf("%w: max_request_bytes must be positive", ErrInvalidConfig)
	case c.ChunkSize <= 0:
		return fmt.Errorf("%w: chunk_size must be positive", ErrInvalidConfig)
	case c.QueueSize <= 0:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.CacheTTLSeconds < 0:
		return fmt.Errorf("%w: cache_ttl_seconds must not be negative", ErrInvalidConfig)
	case c.TracingSampleRate < 0 || c.TracingSampleRate > 1:
		return fmt.Errorf("%w: tracing_sample_rate must be within [0, 1]", ErrInvalidConfig)
	}
	if _, err := scoring.ParseMode(c.DefaultMode); err != nil {
		return fmt.Errorf("%w: default_mode: %w", ErrInvalidConfig, err)
	}
	for k, v := range c.WeightOverrides {
		if !weightKeys[k] {
			return fmt.Errorf("%w: unknown weight %q", ErrInvalidConfig, k)
		}
		if v < 0 {
			return fmt.Errorf("%w: weight %q must not be negative", ErrInvalidConfig, k)
		}
	}
	return nil
}
