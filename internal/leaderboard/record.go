// Package leaderboard defines the persisted score record, the store contract
// every backend implements, and the ranking rules built on top of it.
package leaderboard

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxUsernameLen is the longest accepted username, in characters, after
// trimming.
const MaxUsernameLen = 20

// Record is one saved score. Records are immutable once stored.
type Record struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a score backend. Implementations assign ID and CreatedAt on
// Save and return records in canonical order.
type Store interface {
	// Save persists a validated record.
	Save(ctx context.Context, username string, score int) (Record, error)
	// Top returns at most n records in canonical order.
	Top(ctx context.Context, n int) ([]Record, error)
	// CountGreater counts records with a strictly higher score.
	// May fail with ErrIndexMissing.
	CountGreater(ctx context.Context, score int) (int, error)
	// CountEqualEarlier counts records with an equal score saved strictly
	// before the given time. May fail with ErrIndexMissing.
	CountEqualEarlier(ctx context.Context, score int, before time.Time) (int, error)
	// All returns every record in canonical order.
	All(ctx context.Context) ([]Record, error)
}

// Validate checks a username and score before any store call and returns
// the trimmed username.
func Validate(username string, score int) (string, error) {
	name := strings.TrimSpace(username)
	switch n := utf8.RuneCountInString(name); {
	case n == 0:
		return "", &ValidationError{Field: "username", Reason: "must not be empty"}
	case n > MaxUsernameLen:
		return "", &ValidationError{Field: "username", Reason: "must be at most 20 characters"}
	}
	if score < 0 {
		return "", &ValidationError{Field: "score", Reason: "must be non-negative"}
	}
	return name, nil
}
