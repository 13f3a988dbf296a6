package core

import (
	"context"
	"time"
)

// ConversationContext is the typed cross-turn context of a session. It holds
// the most recently generated meal plan so a later shopping request can use it.
type ConversationContext struct {
	SessionID    string    `json:"session_id"`
	LastMealPlan *MealPlan `json:"last_meal_plan,omitempty"`
	UpdatedAt    time.Time `json:"updated_at,omitzero"`
}

// HasMealPlan reports whether a meal plan is available.
func (c ConversationContext) HasMealPlan() bool { return c.LastMealPlan != nil }

// ConversationStore persists ConversationContext values keyed by session id.
// Get returns the zero context (with SessionID set) for unknown sessions.
type ConversationStore interface {
	Get(ctx context.Context, sessionID string) (ConversationContext, error)
	RememberMealPlan(ctx context.Context, sessionID string, plan *MealPlan) error
	Forget(ctx context.Context, sessionID string) error
}
