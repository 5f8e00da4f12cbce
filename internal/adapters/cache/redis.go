// Package cache stores encoded ranking responses. Every failure degrades to a
// miss so ranking never depends on the cache being up.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/okian/reciperank/pkg/logger"
	"github.com/okian/reciperank/pkg/metrics"
)

// Redis is a response cache backed by Redis.
type Redis struct {
	client *redis.Client
	settings
}

// NewRedis connects to addr. The connection is lazy; call Ping to check it.
func NewRedis(addr, password string, db int, opts ...Option) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	return NewRedisFromClient(client, opts...)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, opts ...Option) *Redis {
	return &Redis{client: client, settings: newSettings(opts)}
}

// Ping checks the connection.
func (c *Redis) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: redis ping: %w", ErrUnavailable, err)
	}
	return nil
}

// Get returns the cached value for key.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case err == nil:
		metrics.RecordCacheLookup(true)
		return val, true
	case errors.Is(err, redis.Nil):
	default:
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache get failed", logger.String("key", key), logger.Error(err))
	}
	metrics.RecordCacheLookup(false)
	return nil, false
}

// Set stores value under key for the configured TTL.
func (c *Redis) Set(ctx context.Context, key string, value []byte) {
	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		metrics.RecordCacheError()
		c.logger.Warn(ctx, "cache set failed", logger.String("key", key), logger.Error(err))
	}
}

// Close releases the connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}
