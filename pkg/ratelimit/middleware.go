package ratelimit

import (
	"context"
	"time"

	"github.com/Abraxas-365/hirekit/pkg/logx"
	"github.com/Abraxas-365/hirekit/pkg/telemetry"
	"github.com/gofiber/fiber/v2"
)

// KeyFunc derives the throttling key for a request
type KeyFunc func(c *fiber.Ctx) string

// ByIPAndPath keys on client IP plus the concrete request path, so each
// /jobs/:jobId URL gets its own window per client
func ByIPAndPath(c *fiber.Ctx) string {
	return c.IP() + ":" + c.Path()
}

// Middleware rejects requests over the limit with 429. Limiter errors fail open.
func Middleware(limiter Limiter, key KeyFunc) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}

		ctx, cancel := context.WithTimeout(c.UserContext(), 250*time.Millisecond)
		defer cancel()

		allowed, err := limiter.Allow(ctx, key(c))
		if err != nil {
			logx.Warnf("rate limiter unavailable: %v", err)
			return c.Next()
		}
		if !allowed {
			telemetry.RateLimitRejects.Inc()
			return fiber.NewError(fiber.StatusTooManyRequests, "Too many requests")
		}
		return c.Next()
	}
}
