package testutil

import (
	"time"

	"github.com/hupe1980/planmesh/core"
)

// Epoch is the fixed timestamp builders use unless told otherwise.
var Epoch = time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)

// SessionBuilder helps construct sessions with fluent chaining for tests.
// Example:
//
//	sess := NewSessionBuilder("sess-1").User("u1").Metadata("k", "v").Say("hi", "hello").Build()
type SessionBuilder struct {
	id       string
	userID   string
	at       time.Time
	metadata map[string]any
	messages []core.Message
}

// NewSessionBuilder creates a new builder for a session with the given id.
func NewSessionBuilder(id string) *SessionBuilder {
	return &SessionBuilder{id: id, userID: "user-1", at: Epoch, metadata: map[string]any{}}
}

// User sets the owning user (chainable).
func (b *SessionBuilder) User(userID string) *SessionBuilder { b.userID = userID; return b }

// At sets the creation time (chainable).
func (b *SessionBuilder) At(t time.Time) *SessionBuilder { b.at = t; return b }

// Metadata sets or overwrites a metadata key/value pair (chainable).
func (b *SessionBuilder) Metadata(key string, val any) *SessionBuilder {
	b.metadata[key] = val
	return b
}

// Say appends a user message followed by an assistant reply (chainable).
func (b *SessionBuilder) Say(user, assistant string) *SessionBuilder {
	b.messages = append(b.messages,
		core.Message{Role: core.RoleUser, Content: user, Timestamp: b.at},
		core.Message{Role: core.RoleAssistant, Content: assistant, Timestamp: b.at},
	)
	return b
}

// Build returns a *core.Session with pre-populated metadata and messages.
func (b *SessionBuilder) Build() *core.Session {
	s := core.NewSession(b.id, b.userID, b.at)
	for k, v := range b.metadata {
		s.Metadata[k] = v
	}
	s.Messages = append(s.Messages, b.messages...)
	return s
}
