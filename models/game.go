package models

import (
	"sync"
	"time"

	"connect-four-system/engine"
)

const (
	StatusWaiting = "waiting" // lobby created, opponent not joined yet
	StatusActive  = "active"
	StatusWon     = "won"
	StatusDraw    = "draw"
)

// GameConfig is fixed at session creation.
type GameConfig struct {
	Rows    int `json:"rows"`
	Cols    int `json:"cols"`
	Connect int `json:"connect"`
}

// DefaultConfig fills the standard Connect-Four dimensions for any field
// left at zero.
func DefaultConfig(rows, cols, connect int) GameConfig {
	cfg := GameConfig{Rows: rows, Cols: cols, Connect: connect}
	if cfg.Rows == 0 {
		cfg.Rows = 6
	}
	if cfg.Cols == 0 {
		cfg.Cols = 7
	}
	if cfg.Connect == 0 {
		cfg.Connect = 4
	}
	return cfg
}

type Player struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GameState is one session, local or online. The services hold mu for the
// whole read-modify-write sequence of every mutation; the mutex never
// leaves the process and is not serialized.
type GameState struct {
	ID                 int          `json:"id"`
	Players            []Player     `json:"players"`
	Config             GameConfig   `json:"config"`
	Board              engine.Board `json:"board"`
	CurrentPlayerIndex int          `json:"current_player_index"`
	Status             string       `json:"status"`
	WinnerID           *int         `json:"winner_id"`

	// Online bookkeeping. GameID ties both players' history entries to
	// the same match; MoveCount and StartedAt feed those entries.
	GameID    string    `json:"game_id,omitempty"`
	MoveCount int       `json:"move_count,omitempty"`
	StartedAt time.Time `json:"-"`

	// Index of the player who opened the current round. Reset seats the
	// other player first, keeping rematches fair.
	starter int

	mu sync.Mutex
}

func (g *GameState) Lock()   { g.mu.Lock() }
func (g *GameState) Unlock() { g.mu.Unlock() }

// CurrentPlayer returns the player whose turn it is.
func (g *GameState) CurrentPlayer() Player {
	return g.Players[g.CurrentPlayerIndex]
}

// AdvanceTurn moves to the next player, wrapping around the players list.
func (g *GameState) AdvanceTurn() {
	g.CurrentPlayerIndex = (g.CurrentPlayerIndex + 1) % len(g.Players)
}

// Reset replaces the board using the stored dimensions, clears the winner
// and seats the alternating starter. Caller holds the lock.
func (g *GameState) Reset() error {
	board, err := engine.NewBoard(g.Config.Rows, g.Config.Cols)
	if err != nil {
		return err
	}
	if len(g.Players) == 2 {
		g.starter = (g.starter + 1) % 2
	}
	g.Board = board
	g.Status = StatusActive
	g.WinnerID = nil
	g.CurrentPlayerIndex = g.starter
	g.MoveCount = 0
	g.StartedAt = time.Now()
	return nil
}

// LobbySummary is the read-only listing shape for GET /online/lobbies.
type LobbySummary struct {
	Code    string   `json:"room_id"`
	Players []string `json:"players"`
	Status  string   `json:"status"`
}

type GameCreateRequest struct {
	ID      int      `json:"id"`
	Players []Player `json:"players"`
	Rows    int      `json:"rows"`
	Cols    int      `json:"cols"`
	Connect int      `json:"connect"`
}

type MoveRequest struct {
	Column   int `json:"column"`
	PlayerID int `json:"player_id"`
}

type OnlineCreateRequest struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
	Rows       int    `json:"rows"`
	Cols       int    `json:"cols"`
	Connect    int    `json:"connect"`
	VerifyUser bool   `json:"verify_user"`
}

type OnlineJoinRequest struct {
	GameCode   string `json:"gameCode"`
	PlayerName string `json:"playerName"`
	VerifyUser bool   `json:"verify_user"`
}
