package redis

import (
	"context"
	"fmt"
	"time"

	"smartrunai-edge/internal/domain/ports/repository"
	"smartrunai-edge/internal/infra/metrics"
)

var _ repository.RateLimitStore = (*RateLimiter)(nil)

// RateLimiter is a fixed window shared by every replica: INCR the window key,
// set its expiry whenever it has none, and give the slot back when over the
// limit. A key left without a TTL by a failed EXPIRE is repaired on its next hit.
type RateLimiter struct {
	client RedisClient
	prefix string
	max    int
	window time.Duration
}

func NewRateLimiter(client RedisClient, prefix string, max int, window time.Duration) *RateLimiter {
	if max < 1 {
		max = 1
	}
	return &RateLimiter{client: client, prefix: prefix, max: max, window: window}
}

func (r *RateLimiter) CheckAndIncrement(ctx context.Context, id string) (bool, error) {
	key := r.key(id)
	count, ttl, err := r.client.IncrTTL(ctx, key)
	if err != nil {
		return false, fmt.Errorf("rate limit incr: %w", err)
	}

	if count == 1 || ttl < 0 {
		if err := r.client.Expire(ctx, key, r.window); err != nil {
			return false, fmt.Errorf("rate limit expire: %w", err)
		}
	}

	if count > int64(r.max) {
		// Denied requests do not consume the window.
		_, _ = r.client.Decr(ctx, key)
		metrics.IncRateLimitRejection("redis")
		return false, nil
	}
	return true, nil
}

func (r *RateLimiter) key(id string) string {
	return fmt.Sprintf("%s%s", r.prefix, id)
}
