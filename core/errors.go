package core

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a referenced session does not exist.
	ErrSessionNotFound = errors.New("session not found")
	// ErrTaskNotFound is returned when a referenced task state does not exist.
	ErrTaskNotFound = errors.New("task not found")
)

// ValidationError reports a malformed entity detected at a boundary.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a referenced record that does not exist. It unwraps
// to the matching sentinel so callers can use errors.Is.
type NotFoundError struct {
	Kind string // "session" or "task"
	ID   string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// Unwrap returns the sentinel for the record kind.
func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "session":
		return ErrSessionNotFound
	case "task":
		return ErrTaskNotFound
	default:
		return nil
	}
}

// SessionNotFound builds a NotFoundError for a session id.
func SessionNotFound(id string) error { return &NotFoundError{Kind: "session", ID: id} }

// TaskNotFound builds a NotFoundError for a task id.
func TaskNotFound(id string) error { return &NotFoundError{Kind: "task", ID: id} }

// DomainAgentError wraps a failure raised by a domain agent while routing.
// It is downgraded to a failed RouteResult at the router boundary and never
// returned to orchestrator callers.
type DomainAgentError struct {
	Agent string
	Err   error
}

// Error implements the error interface.
func (e *DomainAgentError) Error() string {
	return fmt.Sprintf("%s agent: %v", e.Agent, e.Err)
}

// Unwrap exposes the underlying agent error.
func (e *DomainAgentError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
