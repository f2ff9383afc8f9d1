package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/noah-isme/gema-result-api/internal/utils"
)

// RateLimit limits requests per authenticated user, or per client IP for
// anonymous callers, within window.
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
			return fmt.Sprintf("%s:%s", identifier, rateKey(c))
		},
		LimitReached: func(c *fiber.Ctx) error {
			return utils.SendError(c, fiber.StatusTooManyRequests, "too many requests, retry later")
		},
	})
}

func rateKey(c *fiber.Ctx) string {
	switch v := c.Locals("user_id").(type) {
	case uint:
		if v != 0 {
			return fmt.Sprintf("user:%d", v)
		}
	case string:
		if v != "" && v != "0" {
			return "user:" + v
		}
	}
	return "ip:" + c.IP()
}
