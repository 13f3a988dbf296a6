package session

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
	`CREATE TABLE IF NOT EXISTS sessions (
		id         TEXT PRIMARY KEY,
		user_id    TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		metadata   TEXT NOT NULL DEFAULT '{}'
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS session_messages (
		session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
		seq        INTEGER NOT NULL,
		role       TEXT NOT NULL,
		content    TEXT NOT NULL,
		timestamp  TEXT NOT NULL,
		PRIMARY KEY (session_id, seq)
	)`,
}

// SQLiteStore is a durable SessionStore backed by SQLite. Message appends
// run in a single transaction so concurrent writers never interleave a batch.
type SQLiteStore struct {
	db    *sql.DB
	now   func() time.Time
	newID func() string
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
	return &SQLiteStore{db: db, now: o.now, newID: o.newID}, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Create inserts a new session row.
func (s *SQLiteStore) Create(ctx context.Context, userID string, metadata map[string]any) (*core.Session, error) {
	if userID == "" {
		return nil, core.NewValidationError("user_id", "required")
	}
	sess := core.NewSession(s.newID(), userID, s.now())
	for k, v := range metadata {
		sess.Metadata[k] = v
	}
	md, err := json.Marshal(sess.Metadata)
	if err != nil {
		return nil, fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, created_at, updated_at, metadata) VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.UserID, sqlitedb.FormatTime(sess.CreatedAt), sqlitedb.FormatTime(sess.UpdatedAt), string(md))
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	return sess, nil
}

// Get loads a session with its full history, or (nil, nil) if absent.
func (s *SQLiteStore) Get(ctx context.Context, sessionID string) (*core.Session, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, created_at, updated_at, metadata FROM sessions WHERE id = ?`, sessionID)
	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := s.loadMessages(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

// Update appends messages after the current tail of the history.
func (s *SQLiteStore) Update(ctx context.Context, sessionID string, msgs ...core.Message) error {
	return sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		updated, err := lockUpdatedAt(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		var next int64
		if err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(seq), -1) + 1 FROM session_messages WHERE session_id = ?`, sessionID).Scan(&next); err != nil {
			return fmt.Errorf("next message seq: %w", err)
		}
		for i, m := range msgs {
			ts := m.Timestamp
			if ts.IsZero() {
				ts = s.now()
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO session_messages (session_id, seq, role, content, timestamp) VALUES (?, ?, ?, ?, ?)`,
				sessionID, next+int64(i), string(m.Role), m.Content, sqlitedb.FormatTime(ts)); err != nil {
				return fmt.Errorf("insert message: %w", err)
			}
		}
		return touch(ctx, tx, sessionID, updated, s.now())
	})
}

// SetMetadata sets a single metadata key.
func (s *SQLiteStore) SetMetadata(ctx context.Context, sessionID, key string, value any) error {
	return sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		updated, err := lockUpdatedAt(ctx, tx, sessionID)
		if err != nil {
			return err
		}
		var raw string
		if err := tx.QueryRowContext(ctx, `SELECT metadata FROM sessions WHERE id = ?`, sessionID).Scan(&raw); err != nil {
			return fmt.Errorf("load metadata: %w", err)
		}
		md := map[string]any{}
		if err := json.Unmarshal([]byte(raw), &md); err != nil {
			return fmt.Errorf("decode metadata: %w", err)
		}
		md[key] = value
		enc, err := json.Marshal(md)
		if err != nil {
			return fmt.Errorf("encode metadata: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `UPDATE sessions SET metadata = ? WHERE id = ?`, string(enc), sessionID); err != nil {
			return fmt.Errorf("update metadata: %w", err)
		}
		return touch(ctx, tx, sessionID, updated, s.now())
	})
}

// Delete removes the session and its messages; unknown ids are ignored.
func (s *SQLiteStore) Delete(ctx context.Context, sessionID string) error {
	return sqlitedb.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM session_messages WHERE session_id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete messages: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, sessionID); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}

// ListByUser returns the user's sessions ordered by creation time.
func (s *SQLiteStore) ListByUser(ctx context.Context, userID string) ([]*core.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, created_at, updated_at, metadata FROM sessions WHERE user_id = ? ORDER BY created_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	out := []*core.Session{}
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for _, sess := range out {
		if err := s.loadMessages(ctx, sess); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *SQLiteStore) loadMessages(ctx context.Context, sess *core.Session) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content, timestamp FROM session_messages WHERE session_id = ? ORDER BY seq`, sess.ID)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var role, content, ts string
		if err := rows.Scan(&role, &content, &ts); err != nil {
			return fmt.Errorf("scan message: %w", err)
		}
		t, err := sqlitedb.ParseTime(ts)
		if err != nil {
			return fmt.Errorf("parse message timestamp: %w", err)
		}
		sess.Messages = append(sess.Messages, core.Message{Role: core.Role(role), Content: content, Timestamp: t})
	}
	return rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*core.Session, error) {
	var id, userID, created, updated, md string
	if err := row.Scan(&id, &userID, &created, &updated, &md); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan session: %w", err)
	}
	createdAt, err := sqlitedb.ParseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	updatedAt, err := sqlitedb.ParseTime(updated)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	sess := core.NewSession(id, userID, createdAt)
	sess.UpdatedAt = updatedAt
	if err := json.Unmarshal([]byte(md), &sess.Metadata); err != nil {
		return nil, fmt.Errorf("decode metadata: %w", err)
	}
	return sess, nil
}

func lockUpdatedAt(ctx context.Context, tx *sql.Tx, sessionID string) (time.Time, error) {
	var raw string
	err := tx.QueryRowContext(ctx, `SELECT updated_at FROM sessions WHERE id = ?`, sessionID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, core.SessionNotFound(sessionID)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load session: %w", err)
	}
	return sqlitedb.ParseTime(raw)
}

func touch(ctx context.Context, tx *sql.Tx, sessionID string, prev, now time.Time) error {
	if !now.After(prev) {
		return nil
	}
	if _, err := tx.ExecContext(ctx, `UPDATE sessions SET updated_at = ? WHERE id = ?`, sqlitedb.FormatTime(now), sessionID); err != nil {
		return fmt.Errorf("touch session: %w", err)
	}
	return nil
}
