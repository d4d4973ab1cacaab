package services

import (
	"errors"
	"log"

	"connect-four-system/engine"
	"connect-four-system/models"

	"github.com/gofiber/fiber/v2"
)

// GameService serves the local-game endpoints. Sessions live in the
// injected store for the lifetime of the process.
type GameService struct {
	Store *GameStore
}

func NewGameService(store *GameStore) *GameService {
	return &GameService{Store: store}
}

// ListGames returns every local session.
func (s *GameService) ListGames(c *fiber.Ctx) error {
	return c.JSON(s.Store.List())
}

// CreateGame registers a new local session under the caller-supplied id.
func (s *GameService) CreateGame(c *fiber.Ctx) error {
	var req models.GameCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if len(req.Players) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "at least one player is required"})
	}

	cfg := models.DefaultConfig(req.Rows, req.Cols, req.Connect)
	if cfg.Connect < 3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "connect must be at least 3"})
	}
	board, err := engine.NewBoard(cfg.Rows, cfg.Cols)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	game := &models.GameState{
		ID:      req.ID,
		Players: req.Players,
		Config:  cfg,
		Board:   board,
		Status:  models.StatusActive,
	}
	if err := s.Store.Add(game); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	log.Printf("local game %d created (%dx%d connect %d, %d players)",
		game.ID, cfg.Rows, cfg.Cols, cfg.Connect, len(game.Players))
	return c.JSON(game)
}

// PlayMove validates and applies one move on a local session.
func (s *GameService) PlayMove(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid game id"})
	}
	var move models.MoveRequest
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	game, err := s.Store.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}

	game.Lock()
	defer game.Unlock()
	return applyMove(c, game, move)
}

// applyMove runs the shared validation chain and board mechanics for one
// move. Caller holds the session lock. Shared with the lobby service so
// both routers keep identical move semantics.
func applyMove(c *fiber.Ctx, game *models.GameState, move models.MoveRequest) error {
	if game.Status != models.StatusActive {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "game is " + game.Status})
	}
	if move.PlayerID != game.CurrentPlayer().ID {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "not this player's turn"})
	}

	row, col, err := engine.DropToken(game.Board, move.Column, move.PlayerID)
	if err != nil {
		if errors.Is(err, engine.ErrOutOfRange) || errors.Is(err, engine.ErrColumnFull) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	game.MoveCount++

	if engine.CheckWinner(game.Board, row, col, move.PlayerID, game.Config.Connect) {
		game.Status = models.StatusWon
		winner := move.PlayerID
		game.WinnerID = &winner
		return c.JSON(game)
	}
	if engine.IsDraw(game.Board) {
		game.Status = models.StatusDraw
		return c.JSON(game)
	}

	game.AdvanceTurn()
	return c.JSON(game)
}

// DeleteGame removes a local session.
func (s *GameService) DeleteGame(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid game id"})
	}
	if err := s.Store.Delete(id); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "game not found"})
	}
	return c.JSON(fiber.Map{"message": "Game deleted successfully"})
}
