package state

import (
	"sort"
	"strings"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// Option configures a store.
type Option func(*options)

type options struct {
	now func() time.Time
}

// WithClock overrides the time source used for saved_at / updated_at.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{now: func() time.Time { return time.Now().UTC() }}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// prepare validates state and returns the record to store: a copy carrying
// taskID and a fresh saved_at. The caller's value is left untouched.
func prepare(taskID string, state *core.TaskState, now time.Time) (*core.TaskState, error) {
	if err := validateTaskID(taskID); err != nil {
		return nil, err
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	rec := state.Clone()
	rec.TaskID = taskID
	rec.SavedAt = now
	return rec, nil
}

func validateTaskID(taskID string) error {
	if strings.TrimSpace(taskID) == "" {
		return core.NewValidationError("task_id", "required")
	}
	return nil
}

func validateStatus(status core.TaskStatus) error {
	if !status.IsValid() {
		return core.NewValidationError("status", "unknown status "+string(status))
	}
	return nil
}

// withStatus returns a copy of rec moved to status at now.
func withStatus(rec *core.TaskState, status core.TaskStatus, now time.Time) *core.TaskState {
	next := rec.Clone()
	next.Status = status
	next.UpdatedAt = now
	return next
}

func sortEntries(entries []core.IndexEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SavedAt.Equal(entries[j].SavedAt) {
			return entries[i].TaskID < entries[j].TaskID
		}
		return entries[i].SavedAt.Before(entries[j].SavedAt)
	})
}
