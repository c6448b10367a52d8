package middleware

import (
	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/utils"
)

// AuthRequired validates the jwt session cookie and stores the caller's
// identity in Locals for downstream handlers.
func AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies("jwt")
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Please login first",
			})
		}

		claims, err := utils.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"success": false,
				"error":   "Invalid or expired token",
			})
		}

		c.Locals("userID", claims.UserID)
		c.Locals("emailID", claims.EmailID)
		return c.Next()
	}
}
