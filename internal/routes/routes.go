package routes

import (
	"github.com/gofiber/fiber/v2"

	"devlink/server/internal/handlers"
	"devlink/server/internal/middleware"
)

// SetupRoutes registers all application routes
func SetupRoutes(app *fiber.App) {
	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := middleware.AuthRequired()

	// Auth routes
	app.Post("/auth/signup", middleware.StrictRateLimiter(), handlers.Signup)
	app.Post("/auth/login", middleware.StrictRateLimiter(), handlers.Login)
	app.Post("/auth/logout", handlers.Logout)
	app.Get("/auth/me", auth, handlers.GetMe)

	// Feed
	app.Get("/feed", auth, middleware.RelaxedRateLimiter(), handlers.Feed)

	// Connection requests
	app.Post("/request/send/:status/:toUserId", auth, middleware.ModerateRateLimiter(), handlers.SendRequest)
	app.Post("/request/review/:status/:requestId", auth, middleware.ModerateRateLimiter(), handlers.ReviewRequest)

	// Connections
	app.Get("/user/requests/received", auth, handlers.RequestsReceived)
	app.Get("/user/connections", auth, handlers.Connections)
	app.Delete("/connection/remove/:otherUserId", auth, handlers.RemoveConnection)
	app.Post("/connection/block/:otherUserId", auth, handlers.BlockUser)
	app.Post("/connection/unblock/:otherUserId", auth, handlers.UnblockUser)
	app.Get("/connections/blocked", auth, handlers.BlockedUsers)

	// Messages
	app.Get("/messages/conversations", auth, handlers.Conversations)
	app.Get("/messages/conversation/:otherUserId", auth, handlers.Conversation)
	app.Get("/messages/unread-count", auth, handlers.UnreadCount)
	app.Delete("/messages/message/:messageId", auth, handlers.DeleteMessage)
	app.Delete("/messages/conversation/:otherUserId", auth, handlers.DeleteConversation)

	// Reports
	app.Post("/user/report/:reportedUserId", auth, middleware.ModerateRateLimiter(), handlers.ReportUser)
	app.Get("/user/reports", auth, handlers.MyReports)

	// WebSocket. Stats is registered first so the upgrade middleware only
	// guards the socket endpoint itself.
	app.Get("/ws/stats", auth, handlers.WebSocketStats)
	app.Use("/ws", handlers.WebSocketUpgrade)
	app.Get("/ws", handlers.WebSocketHandler)
}
