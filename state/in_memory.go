package state

import (
	"context"
	"sync"
	"time"

	"github.com/hupe1980/planmesh/core"
)

// InMemoryStore is a volatile StateStore. Records and the per-user index are
// guarded by a single RWMutex so every write updates both atomically.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string]*core.TaskState            // taskID -> record
	index   map[string]map[string]core.IndexEntry // userID -> taskID -> entry
	now     func() time.Time
}

// NewInMemoryStore creates an empty in-memory state store.
func NewInMemoryStore(opts ...Option) *InMemoryStore {
	o := buildOptions(opts)
	return &InMemoryStore{
		records: make(map[string]*core.TaskState),
		index:   make(map[string]map[string]core.IndexEntry),
		now:     o.now,
	}
}

// SaveState stores a validated copy of state and upserts its index entry.
func (s *InMemoryStore) SaveState(_ context.Context, taskID string, state core.TaskState) error {
	rec, err := prepare(taskID, &state, s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.putLocked(rec)
	return nil
}

// putLocked writes rec and its index entry; caller must hold the write lock.
// A record that moved to another user is removed from the old user's index.
func (s *InMemoryStore) putLocked(rec *core.TaskState) {
	if prev, ok := s.records[rec.TaskID]; ok && prev.UserID != rec.UserID {
		s.unindexLocked(prev.UserID, rec.TaskID)
	}
	s.records[rec.TaskID] = rec
	if _, ok := s.index[rec.UserID]; !ok {
		s.index[rec.UserID] = make(map[string]core.IndexEntry)
	}
	s.index[rec.UserID][rec.TaskID] = core.NewIndexEntry(rec)
}

func (s *InMemoryStore) unindexLocked(userID, taskID string) {
	entries, ok := s.index[userID]
	if !ok {
		return
	}
	delete(entries, taskID)
	if len(entries) == 0 {
		delete(s.index, userID)
	}
}

// LoadState returns a copy of the stored record or (nil, nil).
func (s *InMemoryStore) LoadState(_ context.Context, taskID string) (*core.TaskState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[taskID]
	if !ok {
		return nil, nil
	}
	return rec.Clone(), nil
}

// DeleteState removes the record and its index entry. Unknown ids are ignored.
func (s *InMemoryStore) DeleteState(_ context.Context, taskID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[taskID]
	if !ok {
		return nil
	}
	delete(s.records, taskID)
	s.unindexLocked(rec.UserID, taskID)
	return nil
}

// ListPausedTasks returns the user's index entries ordered by saved_at.
func (s *InMemoryStore) ListPausedTasks(_ context.Context, userID string) ([]core.IndexEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.IndexEntry, 0, len(s.index[userID]))
	for _, e := range s.index[userID] {
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

// UpdateTaskStatus moves an existing task to status; unknown ids are a no-op.
func (s *InMemoryStore) UpdateTaskStatus(_ context.Context, taskID string, status core.TaskStatus) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[taskID]
	if !ok {
		return nil
	}
	now := s.now()
	next := withStatus(rec, status, now)
	next.SavedAt = now
	s.putLocked(next)
	return nil
}

// TaskExists reports whether a record is stored for taskID.
func (s *InMemoryStore) TaskExists(_ context.Context, taskID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.records[taskID]
	return ok, nil
}
