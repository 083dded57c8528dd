// Package ratelimit throttles login attempts on the SSO callback. A
// misbehaving provider or a scripted client retrying failed logins must
// not be able to hammer the account store.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter checks whether a request identified by key is within its rate.
// Denial is the allowed result, not an error: err is reserved for limiter
// infrastructure faults, which callers may treat as fail-open.
type Limiter interface {
	// Allow reports whether the request should proceed and how many
	// requests remain in the current window.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (allowed bool, remaining int, err error)

	// Reset clears the counter for the key.
	Reset(ctx context.Context, key string) error
}

type fixedWindowEntry struct {
	count     int
	expiresAt time.Time
}

// MemoryLimiter is a fixed-window limiter for single-node deployments.
// Multi-node deployments use the Redis limiter.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*fixedWindowEntry
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{entries: make(map[string]*fixedWindowEntry)}
}

func (r *MemoryLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	entry, exists := r.entries[key]

	if !exists || now.After(entry.expiresAt) {
		r.entries[key] = &fixedWindowEntry{
			count:     1,
			expiresAt: now.Add(window),
		}
		return true, limit - 1, nil
	}

	if entry.count >= limit {
		return false, 0, nil
	}

	entry.count++
	return true, limit - entry.count, nil
}

func (r *MemoryLimiter) Reset(_ context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}
