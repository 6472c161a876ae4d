package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRateLimitPrefix = "minicrm:ratelimit:"

// RedisRateLimiter is a fixed-window limiter whose counters live in Redis,
// so every server instance shares the same budget per key.
type RedisRateLimiter struct {
	client    *redis.Client
	keyPrefix string
	limit     int
	period    time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisRateLimiter connects to Redis and verifies the connection
func NewRedisRateLimiter(cfg RedisConfig, limit int, period time.Duration) (*RedisRateLimiter, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisRateLimiterWithClient(client, "", limit, period), nil
}

// NewRedisRateLimiterWithClient creates a limiter over an existing client
func NewRedisRateLimiterWithClient(client *redis.Client, keyPrefix string, limit int, period time.Duration) *RedisRateLimiter {
	if keyPrefix == "" {
		keyPrefix = defaultRateLimitPrefix
	}
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: keyPrefix,
		limit:     limit,
		period:    period,
	}
}

// Allow implements RateLimitStore.
// INCR and the first-hit EXPIRE run in one transaction so a counter never outlives its window.
func (rl *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	k := rl.keyPrefix + key

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, k)
		pipe.ExpireNX(ctx, k, rl.period)
		return nil
	})
	if err != nil {
		return false, 0, fmt.Errorf("failed to count attempt: %w", err)
	}

	count := int(incr.Val())
	if count > rl.limit {
		return false, 0, nil
	}
	return true, rl.limit - count, nil
}

// Peek implements RateLimitStore
func (rl *RedisRateLimiter) Peek(ctx context.Context, key string) (bool, int, error) {
	count, err := rl.client.Get(ctx, rl.keyPrefix+key).Int()
	if errors.Is(err, redis.Nil) {
		return rl.limit > 0, rl.limit, nil
	}
	if err != nil {
		return false, 0, fmt.Errorf("failed to read attempts: %w", err)
	}
	if count >= rl.limit {
		return false, 0, nil
	}
	return true, rl.limit - count, nil
}

// Limit implements RateLimitStore
func (rl *RedisRateLimiter) Limit() int {
	return rl.limit
}

// Close closes the Redis client
func (rl *RedisRateLimiter) Close() error {
	return rl.client.Close()
}
