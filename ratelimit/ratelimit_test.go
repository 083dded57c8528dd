package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestMemoryLimiterAllow(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		if remaining != 3-(i+1) {
			t.Errorf("request %d: remaining = %d", i+1, remaining)
		}
	}

	allowed, remaining, err := limiter.Allow(ctx, "1.2.3.4", 3, time.Minute)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if allowed || remaining != 0 {
		t.Error("fourth request should be denied")
	}
}

func TestMemoryLimiterPerKey(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "a", 1, time.Minute); !allowed {
		t.Fatal("first a should pass")
	}
	if allowed, _, _ := limiter.Allow(ctx, "a", 1, time.Minute); allowed {
		t.Error("second a should be denied")
	}
	if allowed, _, _ := limiter.Allow(ctx, "b", 1, time.Minute); !allowed {
		t.Error("b is an independent key")
	}
}

func TestMemoryLimiterWindowExpiry(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	if allowed, _, _ := limiter.Allow(ctx, "a", 1, 10*time.Millisecond); !allowed {
		t.Fatal("first should pass")
	}
	time.Sleep(20 * time.Millisecond)
	if allowed, _, _ := limiter.Allow(ctx, "a", 1, 10*time.Millisecond); !allowed {
		t.Error("window expired, request should pass again")
	}
}

func TestMemoryLimiterReset(t *testing.T) {
	limiter := NewMemoryLimiter()
	ctx := context.Background()

	limiter.Allow(ctx, "a", 1, time.Minute)
	if err := limiter.Reset(ctx, "a"); err != nil {
		t.Fatalf("reset: %v", err)
	}
	if allowed, _, _ := limiter.Allow(ctx, "a", 1, time.Minute); !allowed {
		t.Error("reset key should pass again")
	}
}
