package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/models"
	"devlink/server/internal/realtime"
)

// WebSocketUpgrade authenticates the handshake before allowing the
// protocol upgrade. The resolved user rides along in Locals.
func WebSocketUpgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}

	user, err := realtime.Authenticate(c.Context(), c, stores.Users)
	if err != nil {
		return fail(c, err)
	}

	c.Locals("user", user)
	return c.Next()
}

// WebSocketHandler hands the upgraded connection to the gateway.
var WebSocketHandler = websocket.New(func(conn *websocket.Conn) {
	user, ok := conn.Locals("user").(*models.User)
	if !ok {
		conn.Close()
		return
	}
	gateway.HandleConnection(conn, user)
})

// WebSocketStats handles GET /ws/stats.
func WebSocketStats(c *fiber.Ctx) error {
	return ok(c, fiber.Map{
		"onlineUsers": gateway.Registry().Count(),
		"userIds":     gateway.Registry().OnlineUserIDs(),
	})
}
