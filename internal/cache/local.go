package cache

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// LocalLimiter is an in-process token bucket per key, used when Redis is
// not configured. Idle keys are evicted in the background.
type LocalLimiter struct {
	limit     rate.Limit
	perMinute int
	burst     int
	idle      time.Duration

	mu      sync.Mutex
	entries map[string]*localEntry

	stop chan struct{}
	once sync.Once
}

// NewLocalLimiter returns a limiter allowing perMinute requests per key
// with bursts up to burst.
func NewLocalLimiter(perMinute, burst int) *LocalLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	l := &LocalLimiter{
		limit:     rate.Limit(float64(perMinute) / 60.0),
		perMinute: perMinute,
		burst:     burst,
		idle:      10 * time.Minute,
		entries:   make(map[string]*localEntry),
		stop:      make(chan struct{}),
	}
	go l.cleanupLoop(5 * time.Minute)
	return l
}

// Allow consumes a token for key. It never fails.
func (l *LocalLimiter) Allow(_ context.Context, key string) (*RateLimitResult, error) {
	now := time.Now()
	lim := l.get(key, now)

	res := &RateLimitResult{Limit: l.perMinute, ResetAt: now.Add(time.Duration(float64(time.Second) / float64(l.limit)))}
	if lim.AllowN(now, 1) {
		res.Allowed = true
		res.Remaining = int64(math.Floor(lim.TokensAt(now)))
		return res, nil
	}

	wait := time.Duration((1 - lim.TokensAt(now)) / float64(l.limit) * float64(time.Second))
	res.RetryAfter = time.Duration(math.Ceil(wait.Seconds())) * time.Second
	return res, nil
}

func (l *LocalLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.entries[key] = e
	}
	e.lastSeen = now
	return e.limiter
}

// Len returns the number of tracked keys.
func (l *LocalLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Stop ends the cleanup goroutine.
func (l *LocalLimiter) Stop() {
	l.once.Do(func() { close(l.stop) })
}

func (l *LocalLimiter) cleanupLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.evict(time.Now())
		case <-l.stop:
			return
		}
	}
}

func (l *LocalLimiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for k, e := range l.entries {
		if now.Sub(e.lastSeen) > l.idle {
			delete(l.entries, k)
		}
	}
}

var (
	_ Limiter = (*RedisLimiter)(nil)
	_ Limiter = (*LocalLimiter)(nil)
)
