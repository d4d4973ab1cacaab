package handlers

import (
	"connect-four-system/services"

	"github.com/gofiber/fiber/v2"
)

// SetupGameRoutes wires the local-game endpoints.
func SetupGameRoutes(app *fiber.App, gameService *services.GameService) {
	app.Get("/games", gameService.ListGames)
	app.Post("/games", gameService.CreateGame)
	app.Put("/games/:id/move", gameService.PlayMove)
	app.Delete("/games/:id", gameService.DeleteGame)
}

// SetupOnlineRoutes wires the lobby endpoints. Fixed paths (/join,
// /lobbies) are registered before the :code routes so codes cannot
// shadow them.
func SetupOnlineRoutes(app *fiber.App, lobbyService *services.LobbyService) {
	app.Post("/online", lobbyService.CreateLobby)
	app.Post("/online/join", lobbyService.JoinLobby)
	app.Get("/online/lobbies", lobbyService.ListLobbies)
	app.Get("/online/:code", lobbyService.GetLobby)
	app.Put("/online/:code/move", lobbyService.PlayMove)
	app.Post("/online/:code/reset", lobbyService.ResetLobby)
	app.Patch("/online/:code/reset", lobbyService.ResetLobby)
	app.Delete("/online/:code", lobbyService.DestroyLobby)
}
