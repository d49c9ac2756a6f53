// Package queue carries account lifecycle events over RabbitMQ: the
// publisher used by the services and the consumer that appends each event
// to logs/account.log.
package queue

import (
	"fmt"
	"time"
)

// AccountEventsQueue is the durable queue both sides declare.
const AccountEventsQueue = "account.events"

// EventType names what happened to the account.
type EventType string

const (
	EventRegistered      EventType = "account.registered"
	EventOAuthRegistered EventType = "account.oauth_registered"
	EventPasswordChanged EventType = "account.password_changed"
	EventDeleted         EventType = "account.deleted"
)

// AccountEvent is published after an account changes. Email is the address
// at the time of the change; for EventDeleted it is the original address,
// not the rewritten one.
type AccountEvent struct {
	Type       EventType `json:"type"`
	UserID     int64     `json:"user_id"`
	Email      string    `json:"email"`
	OccurredAt string    `json:"occurred_at"` // RFC 3339, UTC
}

// NewAccountEvent stamps an event with at in UTC.
func NewAccountEvent(t EventType, userID int64, email string, at time.Time) AccountEvent {
	return AccountEvent{Type: t, UserID: userID, Email: email, OccurredAt: at.UTC().Format(time.RFC3339)}
}

// LogLine renders the event the way it is stored in logs/account.log.
func (e AccountEvent) LogLine() string {
	return fmt.Sprintf("[%s] %s | user_id=%d | email=%q\n", e.OccurredAt, e.Type, e.UserID, e.Email)
}
