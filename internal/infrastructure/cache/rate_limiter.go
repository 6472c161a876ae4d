package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimitStore counts attempts per key.
// Allow records one attempt and reports whether it is within the limit.
// Peek reports the same without recording anything.
type RateLimitStore interface {
	Allow(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Peek(ctx context.Context, key string) (allowed bool, remaining int, err error)
	Limit() int
	Close() error
}

// InMemoryRateLimiter is a process-local limiter with one token bucket per key.
// A bucket holds limit tokens and refills completely over one period.
// It suits single-instance deployments and tests.
type InMemoryRateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	refill  rate.Limit
	period  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewInMemoryRateLimiter creates a limiter allowing limit attempts per period.
// A background goroutine drops idle buckets until Close is called.
func NewInMemoryRateLimiter(limit int, period time.Duration) *InMemoryRateLimiter {
	rl := &InMemoryRateLimiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		refill:  rate.Every(period / time.Duration(max(limit, 1))),
		period:  period,
		now:     time.Now,
		stop:    make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops buckets untouched for a full period; they are full again by then
func (rl *InMemoryRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.period * 2)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for key, b := range rl.buckets {
				if now.Sub(b.lastSeen) > rl.period {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		case <-rl.stop:
			return
		}
	}
}

// Allow implements RateLimitStore
func (rl *InMemoryRateLimiter) Allow(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(rl.refill, rl.limit)}
		rl.buckets[key] = b
	}
	b.lastSeen = now

	if !b.limiter.AllowN(now, 1) {
		return false, 0, nil
	}
	return true, int(b.limiter.TokensAt(now)), nil
}

// Peek implements RateLimitStore
func (rl *InMemoryRateLimiter) Peek(_ context.Context, key string) (bool, int, error) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		return rl.limit > 0, rl.limit, nil
	}
	tokens := b.limiter.TokensAt(rl.now())
	if tokens < 1 {
		return false, 0, nil
	}
	return true, int(tokens), nil
}

// Limit implements RateLimitStore
func (rl *InMemoryRateLimiter) Limit() int {
	return rl.limit
}

// Close stops the cleanup goroutine
func (rl *InMemoryRateLimiter) Close() error {
	rl.once.Do(func() { close(rl.stop) })
	return nil
}
