package domain

import "time"

// SessionSummary describes a session without its message bodies.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	MessageCount int       `json:"message_count"`
	LastAccess   time.Time `json:"last_access"`
	CreatedAt    time.Time `json:"created_at"`
}
