package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"connect-four-system/models"
)

// UserDirectoryClient is the game service's thin client for the user
// service. Lookups fail closed: any transport failure or non-200 reads as
// "user does not exist", so an unreachable directory blocks online play
// rather than admitting unverified names.
type UserDirectoryClient struct {
	BaseURL string
	Client  *http.Client
}

func NewUserDirectoryClient(baseURL string) *UserDirectoryClient {
	return &UserDirectoryClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *UserDirectoryClient) url(path string) string {
	return c.BaseURL + path
}

// UserExists checks registration via the score-by-name endpoint, which
// returns 404 for unknown names. Never returns an error.
func (c *UserDirectoryClient) UserExists(name string) bool {
	resp, err := c.Client.Get(c.url("/users/score/" + url.PathEscape(name)))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Login forwards credentials to the auth endpoint; true iff it accepts.
func (c *UserDirectoryClient) Login(name, password string) bool {
	body, _ := json.Marshal(models.LoginRequest{Name: name, Password: password})
	resp, err := c.Client.Post(c.url("/auth/"), "application/json", bytes.NewReader(body))
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// ScoreOutcome classifies an AddScore attempt so callers can log or
// ignore failures instead of the failure being silently discarded.
type ScoreOutcome int

const (
	ScoreNotAttempted ScoreOutcome = iota
	ScoreApplied
	ScoreFailed
)

type ScoreResult struct {
	Outcome  ScoreOutcome
	NewScore int
	Err      error
}

// AddScore applies a score delta, best-effort. Gameplay never blocks on
// the outcome; the result only says what happened.
func (c *UserDirectoryClient) AddScore(name string, delta int) ScoreResult {
	if c.BaseURL == "" {
		return ScoreResult{Outcome: ScoreNotAttempted}
	}
	body, _ := json.Marshal(models.ScoreUpdateRequest{Name: name, Score: delta})
	resp, err := c.Client.Post(c.url("/users/score"), "application/json", bytes.NewReader(body))
	if err != nil {
		return ScoreResult{Outcome: ScoreFailed, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return ScoreResult{Outcome: ScoreFailed, Err: fmt.Errorf("user service returned %d", resp.StatusCode)}
	}
	var out struct {
		NewScore int `json:"new_score"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return ScoreResult{Outcome: ScoreFailed, Err: err}
	}
	return ScoreResult{Outcome: ScoreApplied, NewScore: out.NewScore}
}

// ReportHistory appends a match record to a user's history. The caller
// decides whether a failure is worth more than a log line.
func (c *UserDirectoryClient) ReportHistory(entry models.HistoryCreateRequest) error {
	body, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	resp, err := c.Client.Post(c.url("/users/history"), "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("user service returned %d", resp.StatusCode)
	}
	return nil
}
