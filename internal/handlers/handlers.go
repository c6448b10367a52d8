// Package handlers holds the HTTP handlers. Like the rest of the app they
// are package-level functions wired once at startup through Init.
package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"devlink/server/internal/apperr"
	"devlink/server/internal/realtime"
	"devlink/server/internal/service"
	"devlink/server/internal/store"
)

var (
	stores      *store.Store
	connections *service.ConnectionService
	messages    *service.MessageService
	gateway     *realtime.Gateway
)

// Init wires the handler package's dependencies. Call once before
// registering routes.
func Init(st *store.Store, connSvc *service.ConnectionService, msgSvc *service.MessageService, gw *realtime.Gateway) {
	stores = st
	connections = connSvc
	messages = msgSvc
	gateway = gw
}

// statusFor maps an error to its HTTP status code.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindAuthentication:
		return fiber.StatusUnauthorized
	case apperr.KindPermission:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func fail(c *fiber.Ctx, err error) error {
	status := statusFor(err)
	message := err.Error()
	if status == fiber.StatusInternalServerError {
		logrus.WithError(err).WithField("path", c.Path()).Error("Request failed")
		message = "Something went wrong"
	}
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func userID(c *fiber.Ctx) string {
	id, _ := c.Locals("userID").(string)
	return id
}
