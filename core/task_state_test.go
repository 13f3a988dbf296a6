package core

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskState_Validate(t *testing.T) {
	tests := []struct {
		name  string
		state TaskState
		field string
	}{
		{"valid", TaskState{UserID: "u", TotalSteps: 3, CurrentStep: 1}, ""},
		{"valid at end", TaskState{UserID: "u", TotalSteps: 3, CurrentStep: 3, Status: TaskCompleted}, ""},
		{"missing user", TaskState{TotalSteps: 3}, "user_id"},
		{"bad status", TaskState{UserID: "u", TotalSteps: 3, Status: "sleeping"}, "status"},
		{"zero total", TaskState{UserID: "u"}, "total_steps"},
		{"negative step", TaskState{UserID: "u", TotalSteps: 1, CurrentStep: -1}, "current_step"},
		{"step beyond total", TaskState{UserID: "u", TotalSteps: 2, CurrentStep: 3}, "current_step"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.state.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestNewIndexEntry_Defaults(t *testing.T) {
	e := NewIndexEntry(&TaskState{TaskID: "t1", UserID: "u"})
	assert.Equal(t, DefaultAgentType, e.AgentType)
	assert.Equal(t, TaskPaused, e.Status)

	e = NewIndexEntry(&TaskState{TaskID: "t1", UserID: "u", AgentType: "meal_planning", Status: TaskRunning})
	assert.Equal(t, "meal_planning", e.AgentType)
	assert.Equal(t, TaskRunning, e.Status)
}

func TestTaskState_CloneIsolatesContext(t *testing.T) {
	s := &TaskState{UserID: "u", TotalSteps: 2, Context: map[string]any{"k": "v"}}
	c := s.Clone()
	c.Context["k"] = "changed"
	assert.Equal(t, "v", s.Context["k"])
	assert.InDelta(t, 0.0, s.Progress(), 0.001)
}

func TestNotFoundError_Is(t *testing.T) {
	assert.ErrorIs(t, SessionNotFound("x"), ErrSessionNotFound)
	assert.ErrorIs(t, TaskNotFound("x"), ErrTaskNotFound)
	assert.NotErrorIs(t, SessionNotFound("x"), ErrTaskNotFound)
}

func TestDomainAgentError_Unwrap(t *testing.T) {
	base := errors.New("days must be at least 1")
	err := &DomainAgentError{Agent: "meal", Err: base}
	assert.ErrorIs(t, err, base)
	assert.Equal(t, "meal agent: days must be at least 1", err.Error())
}
