package handlers

import (
	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/models"
)

// SendRequest handles POST /request/send/:status/:toUserId — a swipe.
func SendRequest(c *fiber.Ctx) error {
	status := models.ConnectionStatus(c.Params("status"))
	toUserID := c.Params("toUserId")

	req, matched, err := connections.SendRequest(c.Context(), userID(c), toUserID, status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, fiber.Map{
		"request": req,
		"matched": matched,
	})
}

// ReviewRequest handles POST /request/review/:status/:requestId — accept
// or reject a pending request.
func ReviewRequest(c *fiber.Ctx) error {
	status := models.ConnectionStatus(c.Params("status"))
	requestID := c.Params("requestId")

	req, err := connections.Review(c.Context(), userID(c), requestID, status)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, req)
}
