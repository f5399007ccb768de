package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// RateLimit, istemci IP'si başına pencere içinde en fazla max isteğe izin verir.
// storage nil ise sayaçlar bellekte tutulur (tek instance için yeterli).
// max sıfırsa çağıran limiter'ı hiç kurmamalıdır.
func RateLimit(max int, window time.Duration, storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		Storage:    storage,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "Çok fazla istek, lütfen daha sonra tekrar deneyin."})
		},
	})
}
