package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// InMemoryStore is a process-local ConversationStore.
//
// Concurrency: protected by RWMutex. Stored plans are never mutated after
// RememberMealPlan returns, so readers share the pointer.
type InMemoryStore struct {
	mu       sync.RWMutex
	contexts map[string]core.ConversationContext // sessionID -> context
	now      func() time.Time
}

// Option configures an InMemoryStore.
type Option func(*InMemoryStore)

// WithClock overrides the time source used for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *InMemoryStore) { s.now = now }
}

// NewInMemoryStore creates a new in-memory conversation store
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		contexts: make(map[string]core.ConversationContext),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the session's context, or an empty one carrying sessionID.
func (m *InMemoryStore) Get(_ context.Context, sessionID string) (core.ConversationContext, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contexts[sessionID]
	if !ok {
		return core.ConversationContext{SessionID: sessionID}, nil
	}
	return c, nil
}

// RememberMealPlan replaces the session's most recent meal plan.
func (m *InMemoryStore) RememberMealPlan(_ context.Context, sessionID string, plan *core.MealPlan) error {
	if sessionID == "" {
		return core.NewValidationError("session_id", "required")
	}
	if plan == nil {
		return core.NewValidationError("plan", "required")
	}
	cp := *plan
	cp.Meals = append([]core.Meal(nil), plan.Meals...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.contexts[sessionID] = core.ConversationContext{
		SessionID:    sessionID,
		LastMealPlan: &cp,
		UpdatedAt:    m.now(),
	}
	return nil
}

// Forget drops the session's context. Unknown sessions are ignored.
func (m *InMemoryStore) Forget(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.contexts, sessionID)
	return nil
}
