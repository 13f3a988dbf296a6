package state

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/jsonfile"
)

// FileStore persists one JSON document per task (tasks/<task_id>.json) and one
// index document per user (users/<user_id>.json) below a root directory.
// A store-wide mutex serialises writers within the process; documents are
// replaced atomically via rename.
type FileStore struct {
	mu  sync.Mutex
	dir string
	now func() time.Time
}

// NewFileStore creates the directory layout below dir if needed.
func NewFileStore(dir string, opts ...Option) (*FileStore, error) {
	for _, sub := range []string{"tasks", "users"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("create state directory: %w", err)
		}
	}
	o := buildOptions(opts)
	return &FileStore{dir: dir, now: o.now}, nil
}

// validateFileTaskID additionally rejects ids that name a path: document
// names are derived from task ids.
func validateFileTaskID(taskID string) error {
	if err := validateTaskID(taskID); err != nil {
		return err
	}
	if strings.ContainsAny(taskID, `/\`) || taskID == "." || taskID == ".." {
		return core.NewValidationError("task_id", "must not contain path separators")
	}
	return nil
}

func (s *FileStore) taskPath(taskID string) string {
	return jsonfile.Name(filepath.Join(s.dir, "tasks"), taskID)
}

func (s *FileStore) indexPath(userID string) string {
	return jsonfile.Name(filepath.Join(s.dir, "users"), userID)
}

// SaveState writes the task document then upserts the user's index document.
func (s *FileStore) SaveState(_ context.Context, taskID string, state core.TaskState) error {
	if err := validateFileTaskID(taskID); err != nil {
		return err
	}
	rec, err := prepare(taskID, &state, s.now())
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(rec)
}

func (s *FileStore) putLocked(rec *core.TaskState) error {
	prev, err := s.loadLocked(rec.TaskID)
	if err != nil {
		return err
	}
	if err := jsonfile.Write(s.taskPath(rec.TaskID), rec); err != nil {
		return fmt.Errorf("write task %s: %w", rec.TaskID, err)
	}
	if prev != nil && prev.UserID != rec.UserID {
		if err := s.unindexLocked(prev.UserID, rec.TaskID); err != nil {
			return err
		}
	}
	idx, err := s.loadIndexLocked(rec.UserID)
	if err != nil {
		return err
	}
	idx[rec.TaskID] = core.NewIndexEntry(rec)
	if err := jsonfile.Write(s.indexPath(rec.UserID), idx); err != nil {
		return fmt.Errorf("write index for %s: %w", rec.UserID, err)
	}
	return nil
}

// LoadState reads the task document or returns (nil, nil) if absent.
func (s *FileStore) LoadState(_ context.Context, taskID string) (*core.TaskState, error) {
	if err := validateFileTaskID(taskID); err != nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(taskID)
}

func (s *FileStore) loadLocked(taskID string) (*core.TaskState, error) {
	var rec core.TaskState
	found, err := jsonfile.Read(s.taskPath(taskID), &rec)
	if err != nil {
		return nil, fmt.Errorf("read task %s: %w", taskID, err)
	}
	if !found {
		return nil, nil
	}
	return &rec, nil
}

// DeleteState removes the task document and its index entry. Unknown ids are ignored.
func (s *FileStore) DeleteState(_ context.Context, taskID string) error {
	if err := validateFileTaskID(taskID); err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadLocked(taskID)
	if err != nil {
		return err
	}
	if err := jsonfile.Remove(s.taskPath(taskID)); err != nil {
		return fmt.Errorf("delete task %s: %w", taskID, err)
	}
	if rec == nil || rec.UserID == "" {
		return nil
	}
	return s.unindexLocked(rec.UserID, taskID)
}

func (s *FileStore) unindexLocked(userID, taskID string) error {
	idx, err := s.loadIndexLocked(userID)
	if err != nil {
		return err
	}
	if _, ok := idx[taskID]; !ok {
		return nil
	}
	delete(idx, taskID)
	if len(idx) == 0 {
		if err := jsonfile.Remove(s.indexPath(userID)); err != nil {
			return fmt.Errorf("delete index for %s: %w", userID, err)
		}
		return nil
	}
	if err := jsonfile.Write(s.indexPath(userID), idx); err != nil {
		return fmt.Errorf("write index for %s: %w", userID, err)
	}
	return nil
}

func (s *FileStore) loadIndexLocked(userID string) (map[string]core.IndexEntry, error) {
	idx := map[string]core.IndexEntry{}
	if _, err := jsonfile.Read(s.indexPath(userID), &idx); err != nil {
		return nil, fmt.Errorf("read index for %s: %w", userID, err)
	}
	return idx, nil
}

// ListPausedTasks returns the user's index entries ordered by saved_at.
func (s *FileStore) ListPausedTasks(_ context.Context, userID string) ([]core.IndexEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, err := s.loadIndexLocked(userID)
	if err != nil {
		return nil, err
	}
	out := make([]core.IndexEntry, 0, len(idx))
	for _, e := range idx {
		out = append(out, e)
	}
	sortEntries(out)
	return out, nil
}

// UpdateTaskStatus moves an existing task to status; unknown ids are a no-op.
func (s *FileStore) UpdateTaskStatus(_ context.Context, taskID string, status core.TaskStatus) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	if err := validateFileTaskID(taskID); err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, err := s.loadLocked(taskID)
	if err != nil || rec == nil {
		return err
	}
	now := s.now()
	next := withStatus(rec, status, now)
	next.SavedAt = now
	return s.putLocked(next)
}

// TaskExists reports whether a task document exists.
func (s *FileStore) TaskExists(_ context.Context, taskID string) (bool, error) {
	if err := validateFileTaskID(taskID); err != nil {
		return false, nil
	}
	_, err := os.Stat(s.taskPath(taskID))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat task %s: %w", taskID, err)
	}
	return true, nil
}
