package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitPrefix = "hireline:ratelimit:"

// RateLimitResult contains the result of a rate limit check.
type RateLimitResult struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*RateLimitResult, error)
}

// tokenBucketScript refills and consumes a token atomically.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local rate = tonumber(ARGV[1])
	local burst = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])

	local data = redis.call('HMGET', key, 'tokens', 'last_update')
	local tokens = tonumber(data[1]) or burst
	local last_update = tonumber(data[2]) or now

	local elapsed = math.max(0, now - last_update)
	tokens = math.min(burst, tokens + (elapsed * rate))

	local allowed = 0
	local retry_after = 0

	if tokens >= 1 then
		tokens = tokens - 1
		allowed = 1
	else
		retry_after = math.ceil((1 - tokens) / rate)
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_update', now)
	redis.call('EXPIRE', key, ttl)

	return {allowed, retry_after, math.floor(tokens)}
`)

// RedisLimiter is a token bucket shared by every instance through Redis.
type RedisLimiter struct {
	client    redis.Scripter
	perMinute int
	burst     int
	ttl       time.Duration
	now       func() time.Time
}

// NewRedisLimiter returns a limiter allowing perMinute requests per key
// with bursts up to burst.
func NewRedisLimiter(c *Cache, perMinute, burst int) *RedisLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	// Long enough for an empty bucket to refill completely.
	ttl := time.Duration(float64(burst)/float64(perMinute)*float64(time.Minute)) + time.Minute
	return &RedisLimiter{
		client:    c.client,
		perMinute: perMinute,
		burst:     burst,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Allow consumes a token for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) (*RateLimitResult, error) {
	now := l.now()
	ratePerSecond := float64(l.perMinute) / 60.0

	res, err := tokenBucketScript.Run(ctx, l.client,
		[]string{rateLimitPrefix + hashKey(key)},
		ratePerSecond, l.burst, now.Unix(), int(l.ttl.Seconds()),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("run token bucket: %w", err)
	}

	return &RateLimitResult{
		Allowed:    res[0] == 1,
		Limit:      l.perMinute,
		Remaining:  res[2],
		ResetAt:    now.Add(time.Duration(float64(time.Second) / ratePerSecond)),
		RetryAfter: time.Duration(res[1]) * time.Second,
	}, nil
}

// hashKey keeps raw client addresses out of Redis.
func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
