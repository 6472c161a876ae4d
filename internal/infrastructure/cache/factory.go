package cache

import (
	"fmt"
	"time"

	"github.com/minicrm/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RateLimiterFactory creates rate limit stores based on configuration
type RateLimiterFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// RateLimiterFactoryOption is a functional option for configuring the factory
type RateLimiterFactoryOption func(*RateLimiterFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateLimiterFactoryOption {
	return func(f *RateLimiterFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to an in-memory store.
// Default is true.
func WithInMemoryFallback(allow bool) RateLimiterFactoryOption {
	return func(f *RateLimiterFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewRateLimiterFactory creates a new factory
func NewRateLimiterFactory(cfg config.RedisConfig, opts ...RateLimiterFactoryOption) *RateLimiterFactory {
	f := &RateLimiterFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a Redis store when Redis is enabled and reachable, otherwise an in-memory one.
func (f *RateLimiterFactory) CreateStore(limit int, period time.Duration) (RateLimitStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("Using in-memory rate limiter", zap.Int("limit", limit), zap.Duration("window", period))
		return NewInMemoryRateLimiter(limit, period), nil
	}

	store, err := NewRedisRateLimiter(RedisConfig{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}, limit, period)
	if err == nil {
		f.logger.Info("Using Redis rate limiter", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for rate limiting but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory rate limiter. "+
		"Limits are not shared between instances.",
		zap.Error(err),
	)
	return NewInMemoryRateLimiter(limit, period), nil
}
