package handlers

import (
	"connect-four-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupUserRoutes wires the user-directory endpoints. /users/scores and
// the history routes are registered before the parameterized siblings.
func SetupUserRoutes(app *fiber.App, userService *services.UserService) {
	app.Get("/users", userService.ListUsers)
	app.Post("/users", userService.RegisterUser)
	app.Get("/users/scores", userService.GetAllScores)
	app.Post("/users/score", userService.UpdateScore)
	app.Get("/users/score/:name", userService.GetScore)
	app.Post("/users/history", userService.AddHistory)
	app.Get("/users/history/:name", userService.GetHistory)
	app.Delete("/users/:id", userService.DeleteUser)

	app.Post("/auth", userService.Login)
}
