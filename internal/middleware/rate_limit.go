package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit creates a per-dealer rate limiter middleware instance.
// Unauthenticated requests fall back to the client IP.
func RateLimit(identifier string, max int, window time.Duration) fiber.Handler {
	if max <= 0 {
		max = 10
	}
	if window <= 0 {
		window = time.Second
	}

	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			dealerID := fmt.Sprintf("%v", c.Locals("dealer_id"))
			if dealerID == "" || dealerID == "0" || dealerID == "<nil>" {
				dealerID = c.IP()
			}
			return fmt.Sprintf("%s:%s", identifier, dealerID)
		},
	})
}
