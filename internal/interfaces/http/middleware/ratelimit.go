package middleware

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/minicrm/backend/internal/infrastructure/cache"
	"go.uber.org/zap"
)

// RateLimitConfig configures the rate limiting middleware
type RateLimitConfig struct {
	Store cache.RateLimitStore
	// KeyPrefix separates the counters of different route groups
	KeyPrefix string
	// KeyFunc extracts the client key (default: client IP)
	KeyFunc func(*gin.Context) string
	// FailuresOnly counts only requests answered with a status of 400 or above.
	// The budget is checked before the handler and charged after it.
	FailuresOnly bool
	Logger       *zap.Logger
}

// RateLimit limits requests per client IP using the given store
func RateLimit(store cache.RateLimitStore, logger *zap.Logger) gin.HandlerFunc {
	return RateLimitWithConfig(RateLimitConfig{Store: store, Logger: logger})
}

// RateLimitWithConfig returns a rate limiting middleware.
// When the store fails the request is let through.
func RateLimitWithConfig(cfg RateLimitConfig) gin.HandlerFunc {
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = func(c *gin.Context) string { return c.ClientIP() }
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		key := cfg.KeyPrefix + keyFunc(c)
		ctx := c.Request.Context()

		check := cfg.Store.Allow
		if cfg.FailuresOnly {
			check = cfg.Store.Peek
		}
		allowed, remaining, err := check(ctx, key)
		if err != nil {
			logger.Warn("Rate limit check failed, allowing request",
				zap.String("key", key),
				zap.Error(err))
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(cfg.Store.Limit()))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))

		if !allowed {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message": "Too many requests. Please try again later.",
			})
			return
		}
		c.Next()

		if cfg.FailuresOnly && c.Writer.Status() >= http.StatusBadRequest {
			if _, _, err := cfg.Store.Allow(ctx, key); err != nil {
				logger.Warn("Failed to record failed attempt",
					zap.String("key", key),
					zap.Error(err))
			}
		}
	}
}
