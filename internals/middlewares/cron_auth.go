package middlewares

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"

	"classcover_backend/internals/configs"
)

// CronAuth guards the batch-job routes. External schedulers must present
// `Authorization: Bearer $CRON_SECRET`; anything else is rejected before a
// single query runs.
func CronAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := configs.CronSecret
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Cron secret is not configured")
		}
		auth := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}
		return c.Next()
	}
}
