package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperr "github.com/KirkDiggler/avatar-forge/internal/errors"
)

// RedisStore shares counters between bot instances
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore creates a store on client
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	if client == nil {
		panic("redis client is required")
	}
	return &RedisStore{client: client}
}

func rateLimitKey(key string) string {
	return fmt.Sprintf("ratelimit:%s", key)
}

// Increment increments the counter for a key. The window starts at the first request.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int, error) {
	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, rateLimitKey(key))
	pipe.ExpireNX(ctx, rateLimitKey(key), window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, apperr.Wrapf(err, "failed to count request for '%s'", key)
	}
	return int(incr.Val()), nil
}

// Reset resets the counter for a key
func (s *RedisStore) Reset(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, rateLimitKey(key)).Err(); err != nil {
		return apperr.Wrapf(err, "failed to reset rate limit for '%s'", key)
	}
	return nil
}
