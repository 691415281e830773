package cache

import (
	"context"
	"testing"
	"time"
)

func TestHashKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		key  string
	}{
		{"IPv4", "192.168.1.1"},
		{"IPv6", "2001:db8::1"},
		{"empty", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			h := hashKey(tt.key)
			if len(h) != 16 {
				t.Errorf("hashKey(%q) length = %d, want 16", tt.key, len(h))
			}
			if h != hashKey(tt.key) {
				t.Error("hashKey should be deterministic")
			}
		})
	}

	if hashKey("10.0.0.1") == hashKey("10.0.0.2") {
		t.Error("different keys should hash differently")
	}
}

func TestLocalLimiter_Burst(t *testing.T) {
	l := NewLocalLimiter(60, 3)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res, err := l.Allow(ctx, "1.2.3.4")
		if err != nil {
			t.Fatal(err)
		}
		if !res.Allowed {
			t.Fatalf("request %d rejected within burst", i+1)
		}
	}

	res, err := l.Allow(ctx, "1.2.3.4")
	if err != nil {
		t.Fatal(err)
	}
	if res.Allowed {
		t.Fatal("request beyond burst allowed")
	}
	if res.RetryAfter < time.Second {
		t.Errorf("retry after = %v, want >= 1s", res.RetryAfter)
	}
	if res.Limit != 60 {
		t.Errorf("limit = %d, want 60", res.Limit)
	}

	other, _ := l.Allow(ctx, "5.6.7.8")
	if !other.Allowed {
		t.Error("separate key should have its own bucket")
	}
}

func TestLocalLimiter_Evict(t *testing.T) {
	l := NewLocalLimiter(60, 1)
	defer l.Stop()

	_, _ = l.Allow(context.Background(), "a")
	_, _ = l.Allow(context.Background(), "b")
	if l.Len() != 2 {
		t.Fatalf("len = %d, want 2", l.Len())
	}

	l.evict(time.Now().Add(time.Hour))
	if l.Len() != 0 {
		t.Errorf("len after evict = %d, want 0", l.Len())
	}
}

func TestLocalLimiter_NonPositiveRate(t *testing.T) {
	l := NewLocalLimiter(0, 0)
	defer l.Stop()
	ctx := context.Background()

	first, _ := l.Allow(ctx, "k")
	if !first.Allowed {
		t.Fatal("first request rejected")
	}
	if d := time.Until(first.ResetAt); d <= 0 || d > time.Minute {
		t.Errorf("reset in %v, want within a minute", d)
	}

	second, _ := l.Allow(ctx, "k")
	if second.Allowed {
		t.Fatal("second request allowed with burst 1")
	}
	if second.RetryAfter <= 0 || second.RetryAfter > time.Minute {
		t.Errorf("retry after = %v, want (0, 1m]", second.RetryAfter)
	}
}
