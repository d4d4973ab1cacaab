package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"connect-four-system/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory stands in for the user service: a fixed set of registered
// names, plus a record of score and history posts.
type fakeDirectory struct {
	server *httptest.Server

	mu           sync.Mutex
	known        map[string]bool
	scorePosts   []models.ScoreUpdateRequest
	historyPosts []models.HistoryCreateRequest
}

func newFakeDirectory(names ...string) *fakeDirectory {
	fd := &fakeDirectory{known: make(map[string]bool)}
	for _, n := range names {
		fd.known[n] = true
	}
	fd.server = httptest.NewServer(http.HandlerFunc(fd.handle))
	return fd
}

func (fd *fakeDirectory) handle(w http.ResponseWriter, r *http.Request) {
	fd.mu.Lock()
	defer fd.mu.Unlock()
	switch {
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/users/score/"):
		name := strings.TrimPrefix(r.URL.Path, "/users/score/")
		if !fd.known[name] {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, "0")
	case r.Method == http.MethodPost && r.URL.Path == "/users/score":
		var req models.ScoreUpdateRequest
		json.NewDecoder(r.Body).Decode(&req)
		fd.scorePosts = append(fd.scorePosts, req)
		io.WriteString(w, `{"new_score": 1}`)
	case r.Method == http.MethodPost && r.URL.Path == "/users/history":
		var req models.HistoryCreateRequest
		json.NewDecoder(r.Body).Decode(&req)
		fd.historyPosts = append(fd.historyPosts, req)
		io.WriteString(w, `{"message": "History added"}`)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (fd *fakeDirectory) close() { fd.server.Close() }

func newLobbyApp(directoryURL string) *fiber.App {
	app := fiber.New()
	svc := NewLobbyService(NewLobbyStore(), NewUserDirectoryClient(directoryURL))
	app.Post("/online", svc.CreateLobby)
	app.Post("/online/join", svc.JoinLobby)
	app.Get("/online/lobbies", svc.ListLobbies)
	app.Get("/online/:code", svc.GetLobby)
	app.Put("/online/:code/move", svc.PlayMove)
	app.Post("/online/:code/reset", svc.ResetLobby)
	app.Delete("/online/:code", svc.DestroyLobby)
	return app
}

type lobbyResponse struct {
	Message string           `json:"message"`
	Code    string           `json:"code"`
	State   models.GameState `json:"state"`
}

func decodeLobby(t *testing.T, resp *http.Response) *lobbyResponse {
	t.Helper()
	defer resp.Body.Close()
	var out lobbyResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return &out
}

func createLobby(t *testing.T, app *fiber.App, code, name string) *lobbyResponse {
	t.Helper()
	resp := doJSON(t, app, fiber.MethodPost, "/online", models.OnlineCreateRequest{
		GameCode:   code,
		PlayerName: name,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeLobby(t, resp)
}

func joinLobby(t *testing.T, app *fiber.App, code, name string) *http.Response {
	t.Helper()
	return doJSON(t, app, fiber.MethodPost, "/online/join", models.OnlineJoinRequest{
		GameCode:   code,
		PlayerName: name,
	})
}

func TestCreateLobby(t *testing.T) {
	app := newLobbyApp("")

	out := createLobby(t, app, "room1", "alice")
	assert.Equal(t, "room1", out.Code)
	assert.Equal(t, models.StatusWaiting, out.State.Status)
	require.Len(t, out.State.Players, 1)
	assert.Equal(t, models.Player{ID: 1, Name: "alice"}, out.State.Players[0])
	assert.NotEmpty(t, out.State.GameID)

	// Same code again.
	resp := doJSON(t, app, fiber.MethodPost, "/online", models.OnlineCreateRequest{
		GameCode: "room1", PlayerName: "bob",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateLobby_CodeCanonicalization(t *testing.T) {
	app := newLobbyApp("")

	out := createLobby(t, app, "My Lobby", "alice")
	assert.Equal(t, "my-lobby", out.Code)

	resp := doJSON(t, app, fiber.MethodGet, "/online/my-lobby", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// "My Lobby" and "my-lobby" are the same room.
	resp = doJSON(t, app, fiber.MethodPost, "/online", models.OnlineCreateRequest{
		GameCode: "my lobby", PlayerName: "bob",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateLobby_VerifyUser(t *testing.T) {
	fd := newFakeDirectory("alice")
	defer fd.close()
	app := newLobbyApp(fd.server.URL)

	resp := doJSON(t, app, fiber.MethodPost, "/online", models.OnlineCreateRequest{
		GameCode: "room1", PlayerName: "ghost", VerifyUser: true,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, fiber.MethodPost, "/online", models.OnlineCreateRequest{
		GameCode: "room1", PlayerName: "alice", VerifyUser: true,
	})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateLobby_VerifyUserDirectoryUnreachable(t *testing.T) {
	fd := newFakeDirectory("alice")
	fd.close() // directory is down: admission fails closed

	app := newLobbyApp(fd.server.URL)
	resp := doJSON(t, app, fiber.MethodPost, "/online", models.OnlineCreateRequest{
		GameCode: "room1", PlayerName: "alice", VerifyUser: true,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestJoinLobby(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")

	resp := joinLobby(t, app, "room1", "bob")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeLobby(t, resp)
	assert.Equal(t, models.StatusActive, out.State.Status)
	require.Len(t, out.State.Players, 2)
	assert.Equal(t, models.Player{ID: 2, Name: "bob"}, out.State.Players[1])
}

func TestJoinLobby_Full(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")
	joinLobby(t, app, "room1", "bob").Body.Close()

	resp := joinLobby(t, app, "room1", "carol")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

	// Seated players are unchanged.
	resp = doJSON(t, app, fiber.MethodGet, "/online/room1", nil)
	defer resp.Body.Close()
	var state models.GameState
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
	require.Len(t, state.Players, 2)
	assert.Equal(t, "alice", state.Players[0].Name)
	assert.Equal(t, "bob", state.Players[1].Name)
}

func TestJoinLobby_DuplicateNamePerLobbyOnly(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")
	createLobby(t, app, "room2", "bob")

	// Same name twice in one lobby is rejected.
	resp := joinLobby(t, app, "room1", "alice")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// The same name in a different lobby is fine.
	resp = joinLobby(t, app, "room2", "alice")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func TestJoinLobby_NotFound(t *testing.T) {
	app := newLobbyApp("")
	resp := joinLobby(t, app, "nowhere", "alice")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestOnlineMove_RequiresOpponent(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")

	resp := doJSON(t, app, fiber.MethodPut, "/online/room1/move", models.MoveRequest{Column: 0, PlayerID: 1})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestOnlineMove_WinReportsScoreAndHistory(t *testing.T) {
	fd := newFakeDirectory("alice", "bob")
	defer fd.close()
	app := newLobbyApp(fd.server.URL)
	createLobby(t, app, "room1", "alice")
	joinLobby(t, app, "room1", "bob").Body.Close()

	moves := []models.MoveRequest{
		{Column: 0, PlayerID: 1}, {Column: 1, PlayerID: 2},
		{Column: 0, PlayerID: 1}, {Column: 1, PlayerID: 2},
		{Column: 0, PlayerID: 1}, {Column: 1, PlayerID: 2},
		{Column: 0, PlayerID: 1},
	}
	var last models.GameState
	for _, move := range moves {
		resp := doJSON(t, app, fiber.MethodPut, "/online/room1/move", move)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&last))
		resp.Body.Close()
	}
	assert.Equal(t, models.StatusWon, last.Status)
	require.NotNil(t, last.WinnerID)
	assert.Equal(t, 1, *last.WinnerID)

	fd.mu.Lock()
	defer fd.mu.Unlock()
	require.Len(t, fd.scorePosts, 1)
	assert.Equal(t, models.ScoreUpdateRequest{Name: "alice", Score: 1}, fd.scorePosts[0])

	require.Len(t, fd.historyPosts, 2)
	byName := map[string]models.HistoryCreateRequest{}
	for _, h := range fd.historyPosts {
		byName[h.Name] = h
	}
	assert.Equal(t, "win", byName["alice"].Result)
	assert.Equal(t, "loss", byName["bob"].Result)
	assert.Equal(t, "alice", byName["bob"].Winner)
	assert.Equal(t, "bob", byName["alice"].Opponent)
	assert.Equal(t, "online", byName["alice"].Mode)
	assert.Equal(t, 7, byName["alice"].MoveCount)
	assert.Equal(t, byName["alice"].GameID, byName["bob"].GameID)
	assert.NotEmpty(t, byName["alice"].GameID)

	// A won lobby resets to a clean active board.
	resp := doJSON(t, app, fiber.MethodPost, "/online/room1/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeLobby(t, resp)
	assert.Equal(t, models.StatusActive, out.State.Status)
	assert.Nil(t, out.State.WinnerID)
	assert.Len(t, out.State.Board, 6)
	for _, row := range out.State.Board {
		for _, cell := range row {
			assert.Zero(t, cell)
		}
	}
}

func TestOnlineMove_WrongTurn(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")
	joinLobby(t, app, "room1", "bob").Body.Close()

	resp := doJSON(t, app, fiber.MethodPut, "/online/room1/move", models.MoveRequest{Column: 0, PlayerID: 2})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestResetLobby_AlternatesStarter(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")
	joinLobby(t, app, "room1", "bob").Body.Close()

	// Put some tokens down, then reset.
	doJSON(t, app, fiber.MethodPut, "/online/room1/move", models.MoveRequest{Column: 0, PlayerID: 1}).Body.Close()
	doJSON(t, app, fiber.MethodPut, "/online/room1/move", models.MoveRequest{Column: 1, PlayerID: 2}).Body.Close()

	resp := doJSON(t, app, fiber.MethodPost, "/online/room1/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeLobby(t, resp)
	assert.Equal(t, models.StatusActive, out.State.Status)
	assert.Nil(t, out.State.WinnerID)
	assert.Equal(t, 1, out.State.CurrentPlayerIndex, "second round opens with player 2")
	for _, row := range out.State.Board {
		for _, cell := range row {
			assert.Zero(t, cell)
		}
	}

	resp = doJSON(t, app, fiber.MethodPost, "/online/room1/reset", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out = decodeLobby(t, resp)
	assert.Equal(t, 0, out.State.CurrentPlayerIndex, "third round opens with player 1 again")
}

func TestListLobbies(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")
	createLobby(t, app, "room2", "bob")
	joinLobby(t, app, "room2", "carol").Body.Close()

	resp := doJSON(t, app, fiber.MethodGet, "/online/lobbies", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	var summaries []models.LobbySummary
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&summaries))
	require.Len(t, summaries, 2)

	byCode := map[string]models.LobbySummary{}
	for _, s := range summaries {
		byCode[s.Code] = s
	}
	assert.Equal(t, []string{"alice"}, byCode["room1"].Players)
	assert.Equal(t, models.StatusWaiting, byCode["room1"].Status)
	assert.Equal(t, []string{"bob", "carol"}, byCode["room2"].Players)
	assert.Equal(t, models.StatusActive, byCode["room2"].Status)
}

func TestDestroyLobby(t *testing.T) {
	app := newLobbyApp("")
	createLobby(t, app, "room1", "alice")

	resp := doJSON(t, app, fiber.MethodDelete, "/online/room1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, fiber.MethodGet, "/online/room1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, fiber.MethodDelete, "/online/room1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
