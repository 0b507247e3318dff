package core

import "time"

// EventType names an authentication lifecycle event
type EventType string

const (
	EventLogin  EventType = "login"
	EventSignup EventType = "signup"
	EventLogout EventType = "logout"
)

// AuthEvent is published after a session is established or dropped
type AuthEvent struct {
	Type       EventType
	UserID     string
	Address    string
	Role       Role
	TokenID    string
	OccurredAt time.Time
}
