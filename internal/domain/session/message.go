package session

import (
	"fmt"
	"strings"
	"time"
)

// MaxHistory is the hard cap on per-session history length. Enforced after
// every append, oldest evicted first.
const MaxHistory = 5

// Role identifies the author of a message.
type Role string

const (
	// RoleUser marks a message written by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the model.
	RoleAssistant Role = "assistant"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

func (r Role) String() string { return string(r) }

// Message is a single conversation turn (immutable value object).
type Message struct {
	role      Role
	content   string
	timestamp time.Time
}

// NewMessage validates and creates a Message stamped with the current time.
func NewMessage(role Role, content string) (Message, error) {
	if !role.Valid() {
		return Message{}, fmt.Errorf("unknown role %q", role)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Message{}, fmt.Errorf("message content is required")
	}
	return Message{role: role, content: content, timestamp: time.Now().UTC()}, nil
}

// Reconstruct creates a Message without validation.
func Reconstruct(role Role, content string, timestamp time.Time) Message {
	return Message{role: role, content: content, timestamp: timestamp}
}

// Role returns the message author role.
func (m Message) Role() Role { return m.role }

// Content returns the message text.
func (m Message) Content() string { return m.content }

// Timestamp returns the message creation time.
func (m Message) Timestamp() time.Time { return m.timestamp }
