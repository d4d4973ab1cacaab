package services

import (
	"errors"
	"sync"

	"connect-four-system/models"
)

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameAlreadyExists = errors.New("game id already in use")
	ErrLobbyNotFound     = errors.New("lobby not found")
	ErrLobbyExists       = errors.New("game code already exists")
)

// GameStore owns the local-game sessions, keyed by the caller-supplied
// integer id. It is created at service start, injected into GameService,
// and never persisted; entries leave only through Delete.
type GameStore struct {
	games map[int]*models.GameState
	mu    sync.RWMutex
}

func NewGameStore() *GameStore {
	return &GameStore{games: make(map[int]*models.GameState)}
}

func (s *GameStore) Add(g *models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[g.ID]; ok {
		return ErrGameAlreadyExists
	}
	s.games[g.ID] = g
	return nil
}

func (s *GameStore) Get(id int) (*models.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return g, nil
}

func (s *GameStore) List() []*models.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.GameState, 0, len(s.games))
	for _, g := range s.games {
		out = append(out, g)
	}
	return out
}

func (s *GameStore) Delete(id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(s.games, id)
	return nil
}

// lobby pairs a session with the canonical code it is stored under, so
// listings can echo the code back without a reverse lookup.
type lobby struct {
	code  string
	state *models.GameState
}

// LobbyStore owns the online sessions, keyed by canonical (slugified)
// lobby code. Same lifecycle as GameStore.
type LobbyStore struct {
	lobbies map[string]*lobby
	mu      sync.RWMutex
}

func NewLobbyStore() *LobbyStore {
	return &LobbyStore{lobbies: make(map[string]*lobby)}
}

func (s *LobbyStore) Add(code string, g *models.GameState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[code]; ok {
		return ErrLobbyExists
	}
	s.lobbies[code] = &lobby{code: code, state: g}
	return nil
}

func (s *LobbyStore) Get(code string) (*models.GameState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	l, ok := s.lobbies[code]
	if !ok {
		return nil, ErrLobbyNotFound
	}
	return l.state, nil
}

// Summaries returns the listing view of every lobby. Each session is
// locked briefly so a concurrent join cannot tear the players slice.
func (s *LobbyStore) Summaries() []models.LobbySummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.LobbySummary, 0, len(s.lobbies))
	for _, l := range s.lobbies {
		l.state.Lock()
		names := make([]string, len(l.state.Players))
		for i, p := range l.state.Players {
			names[i] = p.Name
		}
		status := l.state.Status
		l.state.Unlock()
		out = append(out, models.LobbySummary{
			Code:    l.code,
			Players: names,
			Status:  status,
		})
	}
	return out
}

func (s *LobbyStore) Delete(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.lobbies[code]; !ok {
		return ErrLobbyNotFound
	}
	delete(s.lobbies, code)
	return nil
}
