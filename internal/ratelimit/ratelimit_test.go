package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pharmatch/chatbot/internal/metrics"
)

func newTestLimiter(t *testing.T, limit int, window time.Duration) Limiter {
	t.Helper()
	mr := miniredis.RunT(t)
	limiter, err := NewSlidingWindowLimiter("redis://"+mr.Addr(), limit, window)
	if err != nil {
		t.Fatalf("NewSlidingWindowLimiter() error = %v", err)
	}
	t.Cleanup(func() { limiter.Close() })
	return limiter
}

func TestSlidingWindowLimiter_AllowsUnderLimit(t *testing.T) {
	limiter := newTestLimiter(t, 5, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "203.0.113.1")
		if err != nil {
			t.Fatalf("Allow() request %d error = %v", i+1, err)
		}
		if !allowed {
			t.Errorf("Allow() request %d = false, want true", i+1)
		}
	}
}

func TestSlidingWindowLimiter_DeniesOverLimit(t *testing.T) {
	limiter := newTestLimiter(t, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := limiter.Allow(ctx, "203.0.113.1"); err != nil {
			t.Fatalf("Allow() request %d error = %v", i+1, err)
		}
	}

	hitsBefore := testutil.ToFloat64(metrics.RateLimitHits)

	allowed, err := limiter.Allow(ctx, "203.0.113.1")
	if err != nil {
		t.Fatalf("Allow() over limit error = %v", err)
	}
	if allowed {
		t.Error("Allow() over limit = true, want false")
	}

	if got := testutil.ToFloat64(metrics.RateLimitHits); got != hitsBefore+1 {
		t.Errorf("rate limit hit counter = %v, want %v", got, hitsBefore+1)
	}
}

func TestSlidingWindowLimiter_KeysAreIndependent(t *testing.T) {
	limiter := newTestLimiter(t, 1, time.Minute)
	ctx := context.Background()

	if allowed, err := limiter.Allow(ctx, "203.0.113.1"); err != nil || !allowed {
		t.Fatalf("Allow(key1) = %v, %v; want true, nil", allowed, err)
	}
	if allowed, err := limiter.Allow(ctx, "203.0.113.2"); err != nil || !allowed {
		t.Errorf("Allow(key2) = %v, %v; want true, nil (keys must not share a window)", allowed, err)
	}
	if allowed, err := limiter.Allow(ctx, "203.0.113.1"); err != nil || allowed {
		t.Errorf("Allow(key1) second call = %v, %v; want false, nil", allowed, err)
	}
}

func TestSlidingWindowLimiter_WindowSlides(t *testing.T) {
	limiter := newTestLimiter(t, 2, 100*time.Millisecond)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := limiter.Allow(ctx, "key"); err != nil {
			t.Fatalf("Allow() request %d error = %v", i+1, err)
		}
	}
	if allowed, _ := limiter.Allow(ctx, "key"); allowed {
		t.Fatal("Allow() at limit = true, want false")
	}

	// Old entries fall out of the window; timestamps come from the caller,
	// so no fake-clock advance is needed.
	time.Sleep(150 * time.Millisecond)

	allowed, err := limiter.Allow(ctx, "key")
	if err != nil {
		t.Fatalf("Allow() after window error = %v", err)
	}
	if !allowed {
		t.Error("Allow() after window = false, want true")
	}
}

func TestNewSlidingWindowLimiter_InvalidURL(t *testing.T) {
	if _, err := NewSlidingWindowLimiter("not-a-valid-url", 100, time.Minute); err == nil {
		t.Error("NewSlidingWindowLimiter() with invalid URL should return error")
	}
}

func TestNewSlidingWindowLimiter_ConnectionFailed(t *testing.T) {
	if _, err := NewSlidingWindowLimiter("redis://localhost:1", 100, time.Minute); err == nil {
		t.Error("NewSlidingWindowLimiter() with unreachable Redis should return error")
	}
}

func TestSlidingWindowLimiter_RedisDownAfterStart(t *testing.T) {
	mr := miniredis.RunT(t)
	limiter, err := NewSlidingWindowLimiter("redis://"+mr.Addr(), 5, time.Minute)
	if err != nil {
		t.Fatalf("NewSlidingWindowLimiter() error = %v", err)
	}
	defer limiter.Close()

	mr.Close()

	if _, err := limiter.Allow(context.Background(), "key"); err == nil {
		t.Error("Allow() with Redis down should return error")
	}
}

func TestNoOpLimiter(t *testing.T) {
	limiter := NoOpLimiter{}
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		allowed, err := limiter.Allow(ctx, fmt.Sprintf("key-%d", i))
		if err != nil {
			t.Errorf("Allow() error = %v, want nil", err)
		}
		if !allowed {
			t.Error("Allow() = false, want true")
		}
	}
	if err := limiter.Close(); err != nil {
		t.Errorf("Close() error = %v, want nil", err)
	}
}
