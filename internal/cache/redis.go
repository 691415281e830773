// Package cache wraps the Redis client used for rate limiting and
// readiness checks. Domain data is never cached.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// dialCheckTimeout bounds the connection check in New.
const dialCheckTimeout = 5 * time.Second

// Cache holds the shared Redis client.
type Cache struct {
	client *redis.Client
}

// New parses redisURL, connects and pings once. Pool sizing comes from the
// URL query (pool_size, min_idle_conns, ...) when present.
func New(ctx context.Context, redisURL string) (*Cache, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if opt.ClientName == "" {
		opt.ClientName = "hireline-api"
	}
	if opt.MinIdleConns == 0 {
		opt.MinIdleConns = 2
	}
	opt.ConnMaxIdleTime = 5 * time.Minute

	c := NewWithClient(redis.NewClient(opt))

	pingCtx, cancel := context.WithTimeout(ctx, dialCheckTimeout)
	defer cancel()
	if err := c.Ping(pingCtx); err != nil {
		_ = c.Close()
		return nil, err
	}

	return c, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// Ping reports whether Redis answers. It backs the readiness probe.
func (c *Cache) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *Cache) Close() error {
	return c.client.Close()
}

// Client exposes the underlying client to the rate limiter.
func (c *Cache) Client() *redis.Client {
	return c.client
}
