package services

import (
	"hash/fnv"
	"log"
	"time"

	"connect-four-system/engine"
	"connect-four-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
)

// LobbyService serves the online-mode endpoints. Lobbies are keyed by a
// player-supplied code, canonicalized with slug so "My Lobby" and
// "my-lobby" address the same room and codes stay URL-safe.
type LobbyService struct {
	Store     *LobbyStore
	Directory *UserDirectoryClient
}

func NewLobbyService(store *LobbyStore, directory *UserDirectoryClient) *LobbyService {
	return &LobbyService{Store: store, Directory: directory}
}

// codeKey canonicalizes a lobby code for storage and lookup.
func codeKey(code string) string {
	return slug.Make(code)
}

// lobbyID derives a stable positive int id from the canonical code.
func lobbyID(code string) int {
	h := fnv.New32a()
	h.Write([]byte(code))
	return int(h.Sum32() & 0x7FFFFFFF)
}

// CreateLobby opens a one-player lobby in waiting state. With verify_user
// set, the creator's name must be registered with the user directory; an
// unreachable directory reads as unregistered.
func (s *LobbyService) CreateLobby(c *fiber.Ctx) error {
	var req models.OnlineCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.GameCode == "" || req.PlayerName == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "gameCode and playerName are required"})
	}
	if req.VerifyUser && !s.Directory.UserExists(req.PlayerName) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	cfg := models.DefaultConfig(req.Rows, req.Cols, req.Connect)
	if cfg.Connect < 3 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "connect must be at least 3"})
	}
	board, err := engine.NewBoard(cfg.Rows, cfg.Cols)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	code := codeKey(req.GameCode)
	state := &models.GameState{
		ID:      lobbyID(code),
		GameID:  uuid.NewString(),
		Players: []models.Player{{ID: 1, Name: req.PlayerName}},
		Config:  cfg,
		Board:   board,
		Status:  models.StatusWaiting,
	}
	if err := s.Store.Add(code, state); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Game code already exists"})
	}

	log.Printf("lobby %q created by %s (%dx%d connect %d)",
		code, req.PlayerName, cfg.Rows, cfg.Cols, cfg.Connect)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Lobby created",
		"code":    code,
		"state":   state,
	})
}

// JoinLobby seats the second player and activates the game. Duplicate
// names are rejected per lobby only; the same name may sit in different
// lobbies.
func (s *LobbyService) JoinLobby(c *fiber.Ctx) error {
	var req models.OnlineJoinRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.VerifyUser && !s.Directory.UserExists(req.PlayerName) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "User not found"})
	}

	game, err := s.Store.Get(codeKey(req.GameCode))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	}

	game.Lock()
	defer game.Unlock()
	if len(game.Players) >= 2 {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Game already full"})
	}
	for _, p := range game.Players {
		if p.Name == req.PlayerName {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Name already used in this game"})
		}
	}

	game.Players = append(game.Players, models.Player{ID: 2, Name: req.PlayerName})
	game.Status = models.StatusActive
	game.StartedAt = time.Now()
	log.Printf("%s joined lobby %q", req.PlayerName, codeKey(req.GameCode))
	return c.JSON(fiber.Map{"message": "Joined", "state": game})
}

// ListLobbies returns a summary of every lobby. Read-only.
func (s *LobbyService) ListLobbies(c *fiber.Ctx) error {
	return c.JSON(s.Store.Summaries())
}

// GetLobby returns the full session state for one code.
func (s *LobbyService) GetLobby(c *fiber.Ctx) error {
	game, err := s.Store.Get(codeKey(c.Params("code")))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	}
	return c.JSON(game)
}

// PlayMove runs the shared move chain, with the lobby-only precondition
// that both seats are taken. A terminal move triggers best-effort score
// and history reporting after the session lock is released.
func (s *LobbyService) PlayMove(c *fiber.Ctx) error {
	code := codeKey(c.Params("code"))
	var move models.MoveRequest
	if err := c.BodyParser(&move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	game, err := s.Store.Get(code)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	}

	game.Lock()
	if len(game.Players) < 2 {
		game.Unlock()
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "Waiting for opponent"})
	}
	wasActive := game.Status == models.StatusActive
	moveErr := applyMove(c, game, move)
	ended := game.Status == models.StatusWon || game.Status == models.StatusDraw
	var report []models.HistoryCreateRequest
	if wasActive && ended {
		report = matchReport(game)
	}
	game.Unlock()

	for _, entry := range report {
		s.reportOutcome(entry)
	}
	return moveErr
}

// matchReport builds one history entry per player for a finished game.
// Caller holds the session lock.
func matchReport(game *models.GameState) []models.HistoryCreateRequest {
	winner := ""
	if game.WinnerID != nil {
		for _, p := range game.Players {
			if p.ID == *game.WinnerID {
				winner = p.Name
			}
		}
	}
	endedAt := time.Now().UTC()
	duration := 0
	if !game.StartedAt.IsZero() {
		duration = int(endedAt.Sub(game.StartedAt).Seconds())
	}

	entries := make([]models.HistoryCreateRequest, 0, len(game.Players))
	for i, p := range game.Players {
		result := "draw"
		switch {
		case winner == p.Name:
			result = "win"
		case winner != "":
			result = "loss"
		}
		opponent := ""
		if len(game.Players) == 2 {
			opponent = game.Players[1-i].Name
		}
		entries = append(entries, models.HistoryCreateRequest{
			Name: p.Name,
			HistoryEntry: models.HistoryEntry{
				GameID:    game.GameID,
				Mode:      "online",
				Result:    result,
				Opponent:  opponent,
				Winner:    winner,
				Rows:      game.Config.Rows,
				Cols:      game.Config.Cols,
				Connect:   game.Config.Connect,
				MoveCount: game.MoveCount,
				DurationS: duration,
				EndedAt:   endedAt.Format(time.RFC3339),
			},
		})
	}
	return entries
}

// reportOutcome pushes one player's result to the user directory. Scoring
// and history are best-effort: failures are logged, never surfaced to the
// players.
func (s *LobbyService) reportOutcome(entry models.HistoryCreateRequest) {
	if entry.Result == "win" {
		switch res := s.Directory.AddScore(entry.Name, 1); res.Outcome {
		case ScoreApplied:
			log.Printf("score for %s is now %d", entry.Name, res.NewScore)
		case ScoreFailed:
			log.Printf("score update for %s failed: %v", entry.Name, res.Err)
		}
	}
	if err := s.Directory.ReportHistory(entry); err != nil {
		log.Printf("history report for %s failed: %v", entry.Name, err)
	}
}

// ResetLobby starts a rematch on a fresh board of the stored dimensions.
// The opening player alternates between resets.
func (s *LobbyService) ResetLobby(c *fiber.Ctx) error {
	game, err := s.Store.Get(codeKey(c.Params("code")))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	}

	game.Lock()
	defer game.Unlock()
	if err := game.Reset(); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"message": "Reset", "state": game})
}

// DestroyLobby removes a lobby entirely.
func (s *LobbyService) DestroyLobby(c *fiber.Ctx) error {
	if err := s.Store.Delete(codeKey(c.Params("code"))); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Game not found"})
	}
	return c.JSON(fiber.Map{"message": "Destroyed"})
}
