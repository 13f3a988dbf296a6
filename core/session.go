package core

import (
	"context"
	"time"
)

// Role identifies the author of a session message.
type Role string

const (
	// RoleUser marks messages written by the end user.
	RoleUser Role = "user"
	// RoleAssistant marks messages produced by the orchestrator.
	RoleAssistant Role = "assistant"
)

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool { return r == RoleUser || r == RoleAssistant }

// Message is a single entry in a session history. Messages are immutable once
// appended.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewMessage creates a message stamped with the current time.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content, Timestamp: time.Now().UTC()}
}

// Session represents one user interaction stream: an ordered message history
// plus free-form metadata.
//
// Contract:
//   - Messages are kept in insertion (chronological) order and never reordered
//   - UpdatedAt never moves backwards and is bumped on every mutation
//   - Clone performs deep copies of maps/slices for safe divergence.
type Session struct {
	ID        string         `json:"session_id"`
	UserID    string         `json:"user_id"`
	Messages  []Message      `json:"messages"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	Metadata  map[string]any `json:"metadata"`
}

// NewSession creates a new, empty session for the given user.
func NewSession(id, userID string, now time.Time) *Session {
	return &Session{
		ID:        id,
		UserID:    userID,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
		Metadata:  map[string]any{},
	}
}

// Append adds messages to the history and bumps UpdatedAt.
func (s *Session) Append(now time.Time, msgs ...Message) {
	s.Messages = append(s.Messages, msgs...)
	s.Touch(now)
}

// Touch advances UpdatedAt to now unless that would move it backwards.
func (s *Session) Touch(now time.Time) {
	if now.After(s.UpdatedAt) {
		s.UpdatedAt = now
	}
}

// Clone returns a deep copy of the session safe for independent mutation.
func (s *Session) Clone() *Session {
	clone := &Session{
		ID:        s.ID,
		UserID:    s.UserID,
		Messages:  make([]Message, len(s.Messages)),
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
		Metadata:  make(map[string]any, len(s.Metadata)),
	}
	copy(clone.Messages, s.Messages)
	for k, v := range s.Metadata {
		clone.Metadata[k] = v
	}
	return clone
}

// SessionStore persists sessions and their message history.
//
// Read paths report a missing session as (nil, nil). Update and SetMetadata
// return an error wrapping ErrSessionNotFound when the id is unknown. Delete
// is idempotent.
type SessionStore interface {
	Create(ctx context.Context, userID string, metadata map[string]any) (*Session, error)
	Get(ctx context.Context, sessionID string) (*Session, error)
	Update(ctx context.Context, sessionID string, msgs ...Message) error
	SetMetadata(ctx context.Context, sessionID, key string, value any) error
	Delete(ctx context.Context, sessionID string) error
	ListByUser(ctx context.Context, userID string) ([]*Session, error)
}
