package handlers

import (
	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/apperr"
)

// RequestsReceived handles GET /user/requests/received.
func RequestsReceived(c *fiber.Ctx) error {
	requests, err := connections.RequestsReceived(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, requests)
}

// Connections handles GET /user/connections.
func Connections(c *fiber.Ctx) error {
	result, err := connections.Connections(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, result)
}

// Feed handles GET /feed?page=&limit= — ranked swipe candidates.
func Feed(c *fiber.Ctx) error {
	user, err := stores.Users.FindByID(c.Context(), userID(c))
	if err != nil {
		return fail(c, err)
	}
	if user == nil {
		return fail(c, apperr.New(apperr.KindNotFound, "User not found"))
	}

	page := c.QueryInt("page", 1)
	limit := c.QueryInt("limit", 0)

	feed, err := connections.Feed(c.Context(), user, page, limit)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, feed)
}
