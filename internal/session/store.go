// Package session persists conversation history keyed by session id.
package session

import (
	"context"
	"errors"

	"github.com/xhzhu1024/docqa/domain"
)

// ErrNotFound is returned when a session id has no record.
var ErrNotFound = errors.New("session not found")

// Store defines the interface for session persistence.
type Store interface {
	// Create generates a fresh session with an empty history and persists it.
	Create(ctx context.Context) (string, error)

	// Get returns the message sequence for a session, or ErrNotFound.
	Get(ctx context.Context, sessionID string) ([]domain.Message, error)

	// Save replaces the session's message sequence, creating the session if
	// absent. The durable record is replaced atomically.
	Save(ctx context.Context, sessionID string, messages []domain.Message) error

	// Delete removes a session and its durable record. Returns ErrNotFound if
	// the session does not exist.
	Delete(ctx context.Context, sessionID string) error

	// Clear empties a session's history without deleting the session.
	Clear(ctx context.Context, sessionID string) error

	// List returns summaries for all resident sessions, most recently
	// accessed first.
	List(ctx context.Context) ([]domain.SessionSummary, error)

	// Count returns the number of resident sessions.
	Count() int
}
