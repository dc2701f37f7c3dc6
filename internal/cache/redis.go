package cache

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisKeyPrefix = "jobsift:cache:"

// RedisStore backs the cache with a Redis server so that entries survive
// process restarts and can be shared between runs. TTL maps to key expiry;
// the size budget is left to the server's own maxmemory policy, so the
// eviction counter stays at zero here.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger

	hits   atomic.Int64
	misses atomic.Int64
}

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return client, nil
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool) {
	payload, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			// Unreadable entry counts as a miss; drop it so the next
			// write starts clean.
			s.logger.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
			s.client.Del(ctx, redisKeyPrefix+key)
		}
		s.misses.Add(1)
		return nil, false
	}

	if len(payload) == 0 {
		s.client.Del(ctx, redisKeyPrefix+key)
		s.misses.Add(1)
		return nil, false
	}

	s.hits.Add(1)
	return payload, true
}

func (s *RedisStore) Put(ctx context.Context, key string, payload []byte) error {
	if err := s.client.Set(ctx, redisKeyPrefix+key, payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache write: %w", err)
	}
	return nil
}

func (s *RedisStore) Stats() Stats {
	return Stats{
		Hits:   s.hits.Load(),
		Misses: s.misses.Load(),
	}
}
