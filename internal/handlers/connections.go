package handlers

import (
	"github.com/gofiber/fiber/v2"
)

// RemoveConnection handles DELETE /connection/remove/:otherUserId.
func RemoveConnection(c *fiber.Ctx) error {
	otherUserID := c.Params("otherUserId")
	if err := connections.Remove(c.Context(), userID(c), otherUserID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "Connection removed"})
}

// BlockUser handles POST /connection/block/:otherUserId.
func BlockUser(c *fiber.Ctx) error {
	otherUserID := c.Params("otherUserId")
	if _, err := connections.Block(c.Context(), userID(c), otherUserID); err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{"message": "User blocked"})
}

// UnblockUser handles POST /connection/unblock/:otherUserId.
func UnblockUser(c *fiber.Ctx) error {
	otherUserID := c.Params("otherUserId")
	restored, err := connections.Unblock(c.Context(), userID(c), otherUserID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"message":  "User unblocked",
		"restored": restored,
	})
}

// BlockedUsers handles GET /connections/blocked.
func BlockedUsers(c *fiber.Ctx) error {
	users, err := connections.BlockedUsers(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, users)
}
