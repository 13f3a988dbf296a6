package session

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// InMemoryStore is a volatile SessionStore implementation storing
// sessions in a process local map. It is safe for concurrent access and best
// suited for tests or ephemeral demo servers. Each returned session is cloned
// to prevent external mutation of internal state.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*core.Session
	now      func() time.Time
	newID    func() string
}

// Option configures an InMemoryStore or SQLiteStore.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides session id generation.
func WithIDGenerator(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }, newID: core.NewID}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// NewInMemoryStore constructs an empty in‑memory session store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	o := buildOptions(opts)
	return &InMemoryStore{sessions: make(map[string]*core.Session), now: o.now, newID: o.newID}
}

// Create allocates a new session with a fresh id and the given metadata.
func (s *InMemoryStore) Create(_ context.Context, userID string, metadata map[string]any) (*core.Session, error) {
	if userID == "" {
		return nil, core.NewValidationError("user_id", "required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, exists := s.sessions[id]; exists {
		return nil, fmt.Errorf("session %q already exists", id)
	}
	sess := core.NewSession(id, userID, s.now())
	for k, v := range metadata {
		sess.Metadata[k] = v
	}
	s.sessions[id] = sess
	return sess.Clone(), nil
}

// Get returns a clone of the session or (nil, nil) if it does not exist.
func (s *InMemoryStore) Get(_ context.Context, sessionID string) (*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[sessionID]; ok {
		return sess.Clone(), nil
	}
	return nil, nil
}

// Update appends messages to an existing session in the given order.
func (s *InMemoryStore) Update(_ context.Context, sessionID string, msgs ...core.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return core.SessionNotFound(sessionID)
	}
	sess.Append(s.now(), msgs...)
	return nil
}

// SetMetadata sets a single metadata key on an existing session.
func (s *InMemoryStore) SetMetadata(_ context.Context, sessionID, key string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return core.SessionNotFound(sessionID)
	}
	sess.Metadata[key] = value
	sess.Touch(s.now())
	return nil
}

// Delete removes the session; unknown ids are ignored.
func (s *InMemoryStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// ListByUser returns clones of the user's sessions ordered by creation time.
func (s *InMemoryStore) ListByUser(_ context.Context, userID string) ([]*core.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := []*core.Session{}
	for _, sess := range s.sessions {
		if sess.UserID == userID {
			result = append(result, sess.Clone())
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
