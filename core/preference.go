package core

import (
	"context"
	"time"
)

// Feedback is a user rating of a generated item (recipe, trip, ...).
type Feedback struct {
	ItemID    string    `json:"item_id"`
	Rating    float64   `json:"rating"`
	Timestamp time.Time `json:"timestamp"`
}

// UserProfile is the persisted record behind a PreferenceStore.
type UserProfile struct {
	Preferences map[string]any `json:"preferences"`
	Feedback    []Feedback     `json:"feedback"`
	Pantry      []string       `json:"pantry"`
}

// NewUserProfile returns an empty profile.
func NewUserProfile() *UserProfile {
	return &UserProfile{Preferences: map[string]any{}, Feedback: []Feedback{}, Pantry: []string{}}
}

// PreferenceStore holds per-user preferences, feedback history and pantry
// inventory.
type PreferenceStore interface {
	SavePreference(ctx context.Context, userID, key string, value any) error
	GetPreference(ctx context.Context, userID, key string) (any, bool, error)
	GetAllPreferences(ctx context.Context, userID string) (map[string]any, error)
	AddFeedback(ctx context.Context, userID, itemID string, rating float64) error
	FeedbackHistory(ctx context.Context, userID string) ([]Feedback, error)
	SetPantry(ctx context.Context, userID string, items []string) error
	Pantry(ctx context.Context, userID string) ([]string, error)
	AddPantryItem(ctx context.Context, userID, item string) error
	RemovePantryItem(ctx context.Context, userID, item string) error
}
