package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CronSecret guards the batch trigger. The secret comes from the secret query
// parameter or a bearer token; an unset secret rejects every call.
func CronSecret(secret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		given := c.Query("secret")
		if given == "" {
			given = strings.TrimPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		}

		if secret == "" || subtle.ConstantTimeCompare([]byte(given), []byte(secret)) != 1 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Invalid cron secret",
			})
		}
		return c.Next()
	}
}
