package leaderboard

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks a username or score rejected before any I/O.
	ErrValidation = errors.New("leaderboard: invalid record")
	// ErrUnavailable means no backend is configured.
	ErrUnavailable = errors.New("leaderboard: store unavailable")
	// ErrIndexMissing means the store cannot answer count queries and the
	// caller should fall back to a full scan.
	ErrIndexMissing = errors.New("leaderboard: rank index missing")
	// ErrTransient marks a failed store or network call. Retrying is up to
	// the user.
	ErrTransient = errors.New("leaderboard: transient store failure")
)

// ValidationError describes which field was rejected.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("leaderboard: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
