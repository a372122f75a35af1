package events

import "time"

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventAccountRegistered    EventType = "account_registered"
	EventSessionStarted       EventType = "session_started"
	EventSessionRevoked       EventType = "session_revoked"
	EventRefreshReuseDetected EventType = "refresh_reuse_detected"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	AccountID int64       `json:"account_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// AccountRegisteredPayload payload.
type AccountRegisteredPayload struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// SessionStartedPayload payload.
type SessionStartedPayload struct {
	Email string `json:"email"`
}

// SessionRevokedPayload payload.
type SessionRevokedPayload struct {
	Reason string `json:"reason"`
}

// RefreshReuseDetectedPayload carries what is known about a stale refresh
// attempt. The presented token itself is never included.
type RefreshReuseDetectedPayload struct {
	Email string `json:"email"`
}
