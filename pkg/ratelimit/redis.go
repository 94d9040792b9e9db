package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the sliding window in a Redis sorted set scored by request
// time, so multiple instances share one counter with the same window
// semantics as MemoryStore.
type RedisStore struct {
	redis       redis.UniversalClient
	window      time.Duration
	maxRequests int
}

func NewRedisStore(client redis.UniversalClient, window time.Duration, maxRequests int) *RedisStore {
	if window <= 0 {
		window = DefaultWindow
	}
	if maxRequests <= 0 {
		maxRequests = DefaultMaxRequests
	}

	return &RedisStore{
		redis:       client,
		window:      window,
		maxRequests: maxRequests,
	}
}

func (s *RedisStore) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := "ratelimit:" + key
	now := time.Now()
	cutoff := now.Add(-s.window).UnixNano()

	if err := s.redis.ZRemRangeByScore(ctx, redisKey, "0", strconv.FormatInt(cutoff, 10)).Err(); err != nil {
		return false, fmt.Errorf("failed to prune rate limit window: %w", err)
	}

	count, err := s.redis.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count rate limit window: %w", err)
	}

	if count >= int64(s.maxRequests) {
		return false, nil
	}

	member := strconv.FormatInt(now.UnixNano(), 10)
	pipe := s.redis.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	pipe.Expire(ctx, redisKey, s.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record request: %w", err)
	}

	return true, nil
}
