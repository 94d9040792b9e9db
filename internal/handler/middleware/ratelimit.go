package middleware

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Sayandeep06/WatchTower/pkg/ratelimit"
)

// RateLimitMiddleware gates requests through the sliding-window limiter,
// keyed by client IP and route. Denial maps to 429 with retry guidance,
// never to an authentication error.
func RateLimitMiddleware(store ratelimit.Store, windowSeconds int) fiber.Handler {
	if windowSeconds <= 0 {
		windowSeconds = 60
	}

	return func(c *fiber.Ctx) error {
		key := c.IP() + ":" + c.Path()

		allowed, err := store.Allow(c.Context(), key)
		if err != nil {
			// A broken limiter backend must not take the auth surface down
			// with it.
			log.Printf("[RATE_LIMIT] store failure for %s: %v", key, err)
			return c.Next()
		}

		if !allowed {
			log.Printf("[RATE_LIMIT] limit exceeded for %s", c.IP())
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(windowSeconds))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": ratelimit.ErrRateLimited.Error(),
			})
		}

		return c.Next()
	}
}
