package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// User is one document in the users collection. The hashed password never
// leaves the user service; responses go through PublicUser.
type User struct {
	ID             primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Name           string             `bson:"name" json:"name"`
	Email          string             `bson:"email" json:"email"`
	HashedPassword string             `bson:"hashed_password" json:"-"`
	Score          int                `bson:"score" json:"score"`
	History        []HistoryEntry     `bson:"history" json:"history"`
}

// PublicUser is the response shape for user listings and score boards.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Score int    `json:"score"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID.Hex(),
		Name:  u.Name,
		Email: u.Email,
		Score: u.Score,
	}
}

// HistoryEntry is one concluded match from a user's point of view.
// Entries are append-only: once pushed they are never edited or removed.
// Every field but EndedAt is optional.
type HistoryEntry struct {
	GameID    string `bson:"game_id,omitempty" json:"game_id,omitempty"`
	Mode      string `bson:"mode,omitempty" json:"mode,omitempty"`
	Result    string `bson:"result,omitempty" json:"result,omitempty"`
	Opponent  string `bson:"opponent,omitempty" json:"opponent,omitempty"`
	Winner    string `bson:"winner,omitempty" json:"winner,omitempty"`
	Rows      int    `bson:"rows,omitempty" json:"rows,omitempty"`
	Cols      int    `bson:"cols,omitempty" json:"cols,omitempty"`
	Connect   int    `bson:"connect,omitempty" json:"connect,omitempty"`
	MoveCount int    `bson:"move_count,omitempty" json:"move_count,omitempty"`
	DurationS int    `bson:"duration_s,omitempty" json:"duration_s,omitempty"`
	EndedAt   string `bson:"ended_at" json:"ended_at"`
}

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Score    int    `json:"score"`
}

type LoginRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ScoreUpdateRequest carries a delta, not an absolute value; the update is
// applied with an atomic increment.
type ScoreUpdateRequest struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// HistoryCreateRequest is HistoryEntry plus the target user's name.
type HistoryCreateRequest struct {
	Name string `json:"name"`
	HistoryEntry
}
