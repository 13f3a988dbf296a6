package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hupe1980/planmesh/core"
	"github.com/hupe1980/planmesh/internal/sqlitedb"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS task_states (
		task_id  TEXT PRIMARY KEY,
		user_id  TEXT NOT NULL,
		document TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS task_index (
		user_id    TEXT NOT NULL,
		task_id    TEXT NOT NULL,
		agent_type TEXT NOT NULL,
		status     TEXT NOT NULL,
		saved_at   TEXT NOT NULL,
		PRIMARY KEY (user_id, task_id)
	)`,
}

// SQLiteStore is a durable StateStore. Each record is stored as a JSON
// document; the record and its index row are written in one transaction.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens the database at path (or sqlitedb.Memory) and migrates it.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	db, err := sqlitedb.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	s, err := NewSQLiteStore(ctx, db, opts...)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLiteStore wraps an existing database handle and ensures the schema.
func NewSQLiteStore(ctx context.Context, db *sql.DB, opts ...Option) (*SQLiteStore, error) {
	if err := sqlitedb.Migrate(ctx, db, schema); err != nil {
		return nil, err
	}
	o := buildOptions(opts)
	return &SQLiteStore{db: db, now: o.now}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveState upserts the record and its index row.
func (s *SQLiteStore) SaveState(ctx context.Context, taskID string, state core.TaskState) error {
	rec, err := prepare(taskID, &state, s.now())
	if err != nil {
		return err
	}
	return sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return put(ctx, tx, rec)
	})
}

func put(ctx context.Context, tx *sql.Tx, rec *core.TaskState) error {
	doc, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode task %s: %w", rec.TaskID, err)
	}
	var prevUser string
	err = tx.QueryRowContext(ctx, `SELECT user_id FROM task_states WHERE task_id = ?`, rec.TaskID).Scan(&prevUser)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("load task %s: %w", rec.TaskID, err)
	}
	if prevUser != "" && prevUser != rec.UserID {
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_index WHERE user_id = ? AND task_id = ?`, prevUser, rec.TaskID); err != nil {
			return fmt.Errorf("unindex task %s: %w", rec.TaskID, err)
		}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO task_states (task_id, user_id, document) VALUES (?, ?, ?)
		 ON CONFLICT(task_id) DO UPDATE SET user_id = excluded.user_id, document = excluded.document`,
		rec.TaskID, rec.UserID, string(doc)); err != nil {
		return fmt.Errorf("write task %s: %w", rec.TaskID, err)
	}
	e := core.NewIndexEntry(rec)
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO task_index (user_id, task_id, agent_type, status, saved_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, task_id) DO UPDATE SET agent_type = excluded.agent_type, status = excluded.status, saved_at = excluded.saved_at`,
		rec.UserID, e.TaskID, e.AgentType, string(e.Status), sqlitedb.FormatTime(e.SavedAt)); err != nil {
		return fmt.Errorf("index task %s: %w", rec.TaskID, err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func load(ctx context.Context, q queryer, taskID string) (*core.TaskState, error) {
	var doc string
	err := q.QueryRowContext(ctx, `SELECT document FROM task_states WHERE task_id = ?`, taskID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load task %s: %w", taskID, err)
	}
	var rec core.TaskState
	if err := json.Unmarshal([]byte(doc), &rec); err != nil {
		return nil, fmt.Errorf("decode task %s: %w", taskID, err)
	}
	return &rec, nil
}

// LoadState returns the stored record or (nil, nil).
func (s *SQLiteStore) LoadState(ctx context.Context, taskID string) (*core.TaskState, error) {
	return load(ctx, s.db, taskID)
}

// DeleteState removes the record and its index row. Unknown ids are ignored.
func (s *SQLiteStore) DeleteState(ctx context.Context, taskID string) error {
	return sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_index WHERE task_id = ?`, taskID); err != nil {
			return fmt.Errorf("unindex task %s: %w", taskID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM task_states WHERE task_id = ?`, taskID); err != nil {
			return fmt.Errorf("delete task %s: %w", taskID, err)
		}
		return nil
	})
}

// ListPausedTasks returns the user's index rows ordered by saved_at.
func (s *SQLiteStore) ListPausedTasks(ctx context.Context, userID string) ([]core.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT task_id, agent_type, status, saved_at FROM task_index WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", userID, err)
	}
	defer rows.Close()

	out := []core.IndexEntry{}
	for rows.Next() {
		var e core.IndexEntry
		var status, savedAt string
		if err := rows.Scan(&e.TaskID, &e.AgentType, &status, &savedAt); err != nil {
			return nil, fmt.Errorf("scan index row: %w", err)
		}
		e.Status = core.TaskStatus(status)
		if e.SavedAt, err = sqlitedb.ParseTime(savedAt); err != nil {
			return nil, fmt.Errorf("parse saved_at: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks for %s: %w", userID, err)
	}
	sortEntries(out)
	return out, nil
}

// UpdateTaskStatus moves an existing task to status; unknown ids are a no-op.
func (s *SQLiteStore) UpdateTaskStatus(ctx context.Context, taskID string, status core.TaskStatus) error {
	if err := validateStatus(status); err != nil {
		return err
	}
	return sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		rec, err := load(ctx, tx, taskID)
		if err != nil || rec == nil {
			return err
		}
		now := s.now()
		next := withStatus(rec, status, now)
		next.SavedAt = now
		return put(ctx, tx, next)
	})
}

// TaskExists reports whether a record is stored for taskID.
func (s *SQLiteStore) TaskExists(ctx context.Context, taskID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM task_states WHERE task_id = ?`, taskID).Scan(&n); err != nil {
		return false, fmt.Errorf("check task %s: %w", taskID, err)
	}
	return n > 0, nil
}
