package core

import (
	"context"
	"time"
)

// TaskStatus is the lifecycle status of a resumable task.
type TaskStatus string

const (
	TaskRunning   TaskStatus = "running"
	TaskPaused    TaskStatus = "paused"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
)

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskRunning, TaskPaused, TaskCompleted, TaskFailed:
		return true
	default:
		return false
	}
}

// DefaultAgentType is recorded in the user index when a state carries no agent type.
const DefaultAgentType = "unknown"

// TaskState is a persisted checkpoint enabling a long-running operation to be
// paused and resumed from CurrentStep.
type TaskState struct {
	TaskID      string         `json:"task_id"`
	UserID      string         `json:"user_id"`
	AgentType   string         `json:"agent_type,omitempty"`
	Status      TaskStatus     `json:"status,omitempty"`
	CurrentStep int            `json:"current_step"`
	TotalSteps  int            `json:"total_steps"`
	Context     map[string]any `json:"context,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitzero"`
	UpdatedAt   time.Time      `json:"updated_at,omitzero"`
	SavedAt     time.Time      `json:"saved_at,omitzero"`
}

// Validate checks the TaskState invariants. An empty Status is accepted and
// indexed as paused.
func (t *TaskState) Validate() error {
	if t.UserID == "" {
		return NewValidationError("user_id", "state must include user_id")
	}
	if t.Status != "" && !t.Status.IsValid() {
		return NewValidationError("status", "unknown status "+string(t.Status))
	}
	if t.TotalSteps <= 0 {
		return NewValidationError("total_steps", "must be positive")
	}
	if t.CurrentStep < 0 {
		return NewValidationError("current_step", "must be non-negative")
	}
	if t.CurrentStep > t.TotalSteps {
		return NewValidationError("current_step", "cannot exceed total_steps")
	}
	return nil
}

// Progress returns the completion percentage in [0, 100].
func (t *TaskState) Progress() float64 {
	if t.TotalSteps == 0 {
		return 0
	}
	return float64(t.CurrentStep) / float64(t.TotalSteps) * 100
}

// Clone returns a copy of the state with its own context map.
func (t *TaskState) Clone() *TaskState {
	c := *t
	if t.Context != nil {
		c.Context = make(map[string]any, len(t.Context))
		for k, v := range t.Context {
			c.Context[k] = v
		}
	}
	return &c
}

// IndexEntry is the lightweight per-user projection of a TaskState.
type IndexEntry struct {
	TaskID    string     `json:"task_id"`
	AgentType string     `json:"agent_type"`
	Status    TaskStatus `json:"status"`
	SavedAt   time.Time  `json:"saved_at"`
}

// NewIndexEntry projects a stored state into its index entry applying the
// agent type and status defaults.
func NewIndexEntry(t *TaskState) IndexEntry {
	e := IndexEntry{TaskID: t.TaskID, AgentType: t.AgentType, Status: t.Status, SavedAt: t.SavedAt}
	if e.AgentType == "" {
		e.AgentType = DefaultAgentType
	}
	if e.Status == "" {
		e.Status = TaskPaused
	}
	return e
}

// StateStore persists task checkpoints together with a per-user index that is
// always a consistent projection of that user's records.
//
// Contract:
//   - SaveState validates, stamps task_id and saved_at on a copy and upserts
//     the index entry; the caller's value is never mutated
//   - LoadState returns (nil, nil) for unknown ids
//   - DeleteState is idempotent and removes the index entry as well
//   - UpdateTaskStatus is a no-op for unknown ids
type StateStore interface {
	SaveState(ctx context.Context, taskID string, state TaskState) error
	LoadState(ctx context.Context, taskID string) (*TaskState, error)
	DeleteState(ctx context.Context, taskID string) error
	ListPausedTasks(ctx context.Context, userID string) ([]IndexEntry, error)
	UpdateTaskStatus(ctx context.Context, taskID string, status TaskStatus) error
	TaskExists(ctx context.Context, taskID string) (bool, error)
}
