package core

import "github.com/google/uuid"

// NewID generates a new unique identifier for sessions, tasks and plans.
func NewID() string { return uuid.NewString() }
