package middleware

import (
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/VaishaliGajapathi/GlamArTryon/internal/pkg/usercontext"
)

// RateLimitConfig configures one fixed-window limiter instance. Each route
// group gets its own scope so counters never bleed across endpoints.
type RateLimitConfig struct {
	Scope       string
	MaxRequests int
	Window      time.Duration
	Store       RateLimitStore
}

// Default request budgets per 60s window.
const (
	DefaultSessionMaxRequests = 20
	DefaultSDKMaxRequests     = 50
	DefaultPluginMaxRequests  = 30
	DefaultRateLimitWindow    = 60 * time.Second
)

// RateLimit caps request volume per principal within a fixed window. The
// window opens on the first request for a key and resets once it elapses.
func RateLimit(cfg RateLimitConfig) fiber.Handler {
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultSessionMaxRequests
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultRateLimitWindow
	}
	if cfg.Store == nil {
		cfg.Store = NewRedisRateLimitStore()
	}

	return func(c *fiber.Ctx) error {
		key := fmt.Sprintf("ratelimit:%s:%s", cfg.Scope, ResolvePrincipal(c))

		count, resetAt, err := cfg.Store.Hit(key, cfg.Window)
		if err != nil {
			// Counter store unavailable; let the request through rather than
			// failing the whole API on a cache outage.
			log.Errorf("[RateLimit] counter store error for %s: %v", key, err)
			return c.Next()
		}

		if count > int64(cfg.MaxRequests) {
			retryAfter := RetryAfterSeconds(resetAt, time.Now())
			c.Set(fiber.HeaderRetryAfter, fmt.Sprintf("%d", retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error":       "Rate limit exceeded",
				"retry_after": retryAfter,
			})
		}

		return c.Next()
	}
}

// ResolvePrincipal identifies the rate-limit subject with a fixed precedence:
// authenticated account id, then site token, then caller IP.
func ResolvePrincipal(c *fiber.Ctx) string {
	if userID := usercontext.GetUserID(c); userID != 0 {
		return fmt.Sprintf("user:%d", userID)
	}
	if integration := usercontext.GetSiteIntegration(c); integration != nil {
		return "site:" + integration.SiteToken
	}
	return "ip:" + c.IP()
}

// RetryAfterSeconds computes the client hint for a closed window, rounded up
// and never below one second.
func RetryAfterSeconds(resetAt, now time.Time) int {
	secs := int(math.Ceil(resetAt.Sub(now).Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
