package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a fixed-window limiter backed by Redis, for deployments
// with more than one node behind the login endpoint.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "openidconnect:ratelimit:"
	}
	return &RedisLimiter{client: client, prefix: prefix}
}

// incrScript increments the window counter and sets its expiry atomically,
// so two nodes never race the PEXPIRE of a fresh window.
var incrScript = redis.NewScript(`
	local count = redis.call('INCR', KEYS[1])
	if count == 1 then
		redis.call('PEXPIRE', KEYS[1], ARGV[1])
	end
	return count
`)

func (r *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, int, error) {
	result, err := incrScript.Run(ctx, r.client, []string{r.prefix + key}, window.Milliseconds()).Result()
	if err != nil {
		return false, 0, fmt.Errorf("ratelimit: redis incr failed: %w", err)
	}

	count, ok := result.(int64)
	if !ok {
		return false, 0, fmt.Errorf("ratelimit: unexpected result type %T", result)
	}

	if count > int64(limit) {
		return false, 0, nil
	}
	return true, limit - int(count), nil
}

func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return fmt.Errorf("ratelimit: redis del failed: %w", err)
	}
	return nil
}
