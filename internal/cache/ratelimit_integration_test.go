//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/hireline/hireline/internal/testutil"
)

func TestIntegrationRedisLimiter(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "REDIS_URL")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })
	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush: %v", err)
	}

	l := NewRedisLimiter(c, 60, 2)
	key := testutil.UniqueID("ip")

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, key)
		if err != nil {
			t.Fatalf("Allow: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}

	res, err := l.Allow(ctx, key)
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if res.Allowed {
		t.Fatal("request beyond burst allowed")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("retry after = %v, want positive", res.RetryAfter)
	}
}
