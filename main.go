package main

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"devlink/server/internal/database"
	"devlink/server/internal/handlers"
	"devlink/server/internal/realtime"
	"devlink/server/internal/routes"
	"devlink/server/internal/service"
	"devlink/server/internal/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("No .env file found, using environment variables")
	}

	if err := database.Connect(); err != nil {
		logrus.Fatalf("Database connection failed: %v", err)
	}
	defer database.Close()

	st := store.New(database.Pool)
	connSvc := service.NewConnectionService(st.Connections, st.Messages, st.Users)
	msgSvc := service.NewMessageService(st.Messages, connSvc, st.Users)

	registry := realtime.NewRegistry()
	gateway := realtime.NewGateway(registry, connSvc, msgSvc, logrus.StandardLogger())

	handlers.Init(st, connSvc, msgSvc, gateway)

	app := fiber.New(fiber.Config{
		AppName: "DevLink API v1.0",
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     getEnv("CORS_ORIGIN", "http://localhost:5173"),
		AllowCredentials: true,
	}))

	routes.SetupRoutes(app)

	port := getEnv("PORT", "8080")
	logrus.Infof("🚀 Server starting on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		logrus.Fatalf("Server failed to start: %v", err)
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
