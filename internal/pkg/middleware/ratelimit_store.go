package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/cache"
)

// RateLimitStore is the shared counter behind the fixed-window limiter.
// Hit records one request for the key and returns the count observed within
// the current window plus the moment the window resets. Implementations must
// serialize concurrent hits on the same key.
type RateLimitStore interface {
	Hit(key string, window time.Duration) (count int64, resetAt time.Time, err error)
}

type redisRateLimitStore struct {
	client *redis.Client
}

// NewRedisRateLimitStore creates the production counter store. Redis INCR is
// atomic, so two concurrent requests can never both observe the same count.
func NewRedisRateLimitStore() RateLimitStore {
	return &redisRateLimitStore{client: cache.GetClient()}
}

func (s *redisRateLimitStore) Hit(key string, window time.Duration) (int64, time.Time, error) {
	ctx := context.Background()
	now := time.Now()

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	pttl := pipe.PTTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, time.Time{}, err
	}

	ttl := pttl.Val()
	if ttl < 0 {
		// Key existed without expiry (pre-dates ExpireNX); repair it.
		ttl = window
		_ = s.client.Expire(ctx, key, window).Err()
	}
	return incr.Val(), now.Add(ttl), nil
}

type memoryWindow struct {
	count   int64
	resetAt time.Time
}

type memoryRateLimitStore struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
}

// NewMemoryRateLimitStore creates an in-process counter store. Used by tests
// and single-node deployments running without Redis.
func NewMemoryRateLimitStore() RateLimitStore {
	return &memoryRateLimitStore{windows: make(map[string]*memoryWindow)}
}

func (s *memoryRateLimitStore) Hit(key string, window time.Duration) (int64, time.Time, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &memoryWindow{count: 1, resetAt: now.Add(window)}
		s.windows[key] = w
		return w.count, w.resetAt, nil
	}
	w.count++
	return w.count, w.resetAt, nil
}
