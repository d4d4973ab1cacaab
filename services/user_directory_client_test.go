package services

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"connect-four-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/users/score/alice" {
			io.WriteString(w, "3")
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewUserDirectoryClient(server.URL)
	assert.True(t, client.UserExists("alice"))
	assert.False(t, client.UserExists("ghost"))
}

func TestUserExists_TransportFailureReadsAsAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewUserDirectoryClient(server.URL)
	assert.False(t, client.UserExists("alice"))
}

func TestLogin(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Name == "alice" && req.Password == "secret" {
			io.WriteString(w, `{"success": true}`)
			return
		}
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	client := NewUserDirectoryClient(server.URL)
	assert.True(t, client.Login("alice", "secret"))
	assert.False(t, client.Login("alice", "wrong"))
}

func TestAddScore(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req models.ScoreUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Name != "alice" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, `{"new_score": 4}`)
	}))
	defer server.Close()

	client := NewUserDirectoryClient(server.URL)

	res := client.AddScore("alice", 1)
	assert.Equal(t, ScoreApplied, res.Outcome)
	assert.Equal(t, 4, res.NewScore)

	res = client.AddScore("ghost", 1)
	assert.Equal(t, ScoreFailed, res.Outcome)
	assert.Error(t, res.Err)
}

func TestAddScore_NotAttemptedWithoutBaseURL(t *testing.T) {
	client := NewUserDirectoryClient("")
	res := client.AddScore("alice", 1)
	assert.Equal(t, ScoreNotAttempted, res.Outcome)
	assert.NoError(t, res.Err)
}

func TestReportHistory(t *testing.T) {
	var got models.HistoryCreateRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		if got.Name != "alice" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		io.WriteString(w, `{"message": "History added"}`)
	}))
	defer server.Close()

	client := NewUserDirectoryClient(server.URL)

	entry := models.HistoryCreateRequest{
		Name:         "alice",
		HistoryEntry: models.HistoryEntry{Mode: "online", Result: "win"},
	}
	require.NoError(t, client.ReportHistory(entry))
	assert.Equal(t, "win", got.Result)

	entry.Name = "ghost"
	assert.Error(t, client.ReportHistory(entry))
}
