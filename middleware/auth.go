package middleware

import (
	"log"
	"os"
	"strconv"
	"strings"

	"sales-kpi-bot/services"

	"github.com/gofiber/fiber/v2"
)

// ServiceAuthMiddleware validates the shared token set by the chat-transport
// gateway. When BOT_SERVICE_TOKEN is unset the check is disabled, which is
// the expected mode for local runs and tests.
func ServiceAuthMiddleware() fiber.Handler {
	expectedToken := os.Getenv("BOT_SERVICE_TOKEN")
	if expectedToken == "" {
		log.Println("⚠️  BOT_SERVICE_TOKEN not set — gateway auth disabled")
		return func(c *fiber.Ctx) error { return c.Next() }
	}

	return func(c *fiber.Ctx) error {
		token := strings.TrimPrefix(c.Get("Authorization"), "Bearer ")
		if token != expectedToken {
			log.Printf("🚫 Invalid service token for %s", c.Path())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "invalid service authentication token",
			})
		}
		return c.Next()
	}
}

// CallerContext extracts the caller identity from X-User-ID for downstream
// handlers. The gateway authenticates callers; this service trusts the header.
func CallerContext() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Get("X-User-ID")
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || userID <= 0 {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "missing or invalid X-User-ID header",
			})
		}
		c.Locals("user_id", userID)
		return c.Next()
	}
}

// RequireRole gates a route on the caller's minimum role. The denial names
// the required role; it never silently drops the request.
func RequireRole(roles *services.RoleService, required string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _ := c.Locals("user_id").(int64)
		if err := roles.Require(userID, required); err != nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error":         "access denied",
				"required_role": required,
			})
		}
		return c.Next()
	}
}

// CallerID returns the authenticated caller set by CallerContext.
func CallerID(c *fiber.Ctx) int64 {
	userID, _ := c.Locals("user_id").(int64)
	return userID
}
