package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"connect-four-system/handlers"
	"connect-four-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8001"
	}
	userServiceURL := os.Getenv("USER_SERVICE_URL")
	if userServiceURL == "" {
		userServiceURL = "http://127.0.0.1:8002"
	}
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,PATCH,OPTIONS",
	}))

	directory := services.NewUserDirectoryClient(userServiceURL)
	gameService := services.NewGameService(services.NewGameStore())
	lobbyService := services.NewLobbyService(services.NewLobbyStore(), directory)

	handlers.SetupGameRoutes(app, gameService)
	handlers.SetupOnlineRoutes(app, lobbyService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Game service running on http://localhost:%s", port)
	log.Printf("✅ User directory at %s", userServiceURL)

	<-ctx.Done()
	log.Println("Shutting down game service...")
	if err := app.Shutdown(); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
