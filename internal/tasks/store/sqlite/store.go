// Package sqlite implements the persistence port over a local SQLite
// database. Change notifications fan out in-process through a hub; an
// optional broker-backed broadcaster extends them to other processes.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/notify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         TEXT PRIMARY KEY,
	user_id    TEXT NOT NULL,
	title      TEXT NOT NULL,
	notes      TEXT,
	status     TEXT NOT NULL,
	completed  INTEGER NOT NULL DEFAULT 0,
	due_date   TEXT,
	category   TEXT NOT NULL,
	priority   TEXT NOT NULL,
	repeat     TEXT,
	tags       TEXT NOT NULL DEFAULT '[]',
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);

CREATE TABLE IF NOT EXISTS settings (
	user_id TEXT PRIMARY KEY,
	payload TEXT NOT NULL
);
`

// Store is a SQLite-backed task and settings store.
type Store struct {
	db          *sql.DB
	hub         *notify.Hub
	logger      *slog.Logger
	broadcaster notify.Broadcaster
	stopListen  context.CancelFunc
}

// DefaultPath returns the default database location.
func DefaultPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}
	return filepath.Join(homeDir, ".taskdeck", "data.db")
}

// Open opens (creating if needed) the database at path.
func Open(path string, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return New(db, logger)
}

// New wraps an already-open database handle, applying the schema.
func New(db *sql.DB, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{
		db:     db,
		hub:    notify.NewHub(),
		logger: logger,
	}, nil
}

// EnableBroadcast bridges change notifications through the given
// broadcaster so other processes on the same database see changes in
// real time. The listen loop runs until Close.
func (s *Store) EnableBroadcast(ctx context.Context, b notify.Broadcaster) {
	listenCtx, cancel := context.WithCancel(ctx)
	s.broadcaster = b
	s.stopListen = cancel

	go func() {
		err := b.Listen(listenCtx, func(userID uuid.UUID) {
			s.publishLocal(listenCtx, userID)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("change listener stopped", "error", err)
		}
	}()
}

// Create persists a new task and notifies subscribers.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, t *task.Task) error {
	rec := t.ToRecord()
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO tasks (id, user_id, title, notes, status, completed, due_date, category, priority, repeat, tags, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Title, nullString(rec.Notes), rec.Status,
		boolToInt(rec.Completed), nullTime(rec.DueDate), rec.Category,
		rec.Priority, nullString(rec.Repeat), string(tags),
		rec.CreatedAt.Format(time.RFC3339Nano), rec.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	s.notifyChanged(ctx, userID)
	return nil
}

// Update applies a partial update with a read-modify-write cycle and
// notifies subscribers.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch task.Patch) error {
	rec, err := s.loadRecord(ctx, id)
	if err != nil {
		return err
	}
	patch.Apply(&rec)

	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE tasks
		SET title = ?, notes = ?, status = ?, completed = ?, due_date = ?, category = ?, priority = ?, repeat = ?, tags = ?, updated_at = ?
		WHERE id = ?`,
		rec.Title, nullString(rec.Notes), rec.Status, boolToInt(rec.Completed),
		nullTime(rec.DueDate), rec.Category, rec.Priority, nullString(rec.Repeat),
		string(tags), rec.UpdatedAt.Format(time.RFC3339Nano), rec.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return err
	}
	s.notifyChanged(ctx, userID)
	return nil
}

// Delete removes a task. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	rec, err := s.loadRecord(ctx, id)
	if errors.Is(err, task.ErrTaskNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return err
	}
	s.notifyChanged(ctx, userID)
	return nil
}

// Subscribe opens a change feed, delivering the current snapshot
// immediately.
func (s *Store) Subscribe(ctx context.Context, userID uuid.UUID) (task.Subscription, error) {
	sub := s.hub.Subscribe(userID)
	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}
	sub.Push(snapshot)
	return sub, nil
}

// GetSettings implements settings.Store.
func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM settings WHERE user_id = ?`, userID.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, settings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var out settings.Settings
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %w", err)
	}
	return &out, nil
}

// PutSettings implements settings.Store.
func (s *Store) PutSettings(ctx context.Context, userID uuid.UUID, in *settings.Settings) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO settings (user_id, payload) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload`,
		userID.String(), string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

// Close tears down subscriptions, the broadcast bridge and the
// database handle.
func (s *Store) Close() error {
	if s.stopListen != nil {
		s.stopListen()
	}
	s.hub.Close()
	return s.db.Close()
}

// notifyChanged publishes a fresh snapshot locally and, when a
// broadcaster is attached, signals other processes.
func (s *Store) notifyChanged(ctx context.Context, userID uuid.UUID) {
	s.publishLocal(ctx, userID)
	if s.broadcaster != nil {
		if err := s.broadcaster.Broadcast(ctx, userID); err != nil {
			s.logger.Warn("change broadcast failed", "user_id", userID, "error", err)
		}
	}
}

func (s *Store) publishLocal(ctx context.Context, userID uuid.UUID) {
	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		s.logger.Error("failed to build change snapshot", "user_id", userID, "error", err)
		return
	}
	s.hub.Publish(userID, snapshot)
}

func (s *Store) loadRecord(ctx context.Context, id uuid.UUID) (task.Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, title, notes, status, completed, due_date, category, priority, repeat, tags, created_at, updated_at
		FROM tasks WHERE id = ?`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return task.Record{}, task.ErrTaskNotFound
	}
	return rec, err
}

func (s *Store) snapshot(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, title, notes, status, completed, due_date, category, priority, repeat, tags, created_at, updated_at
		FROM tasks WHERE user_id = ? ORDER BY created_at, id`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tasks := make([]*task.Task, 0)
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		t, err := task.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (task.Record, error) {
	var (
		rec       task.Record
		notes     sql.NullString
		completed int64
		dueDate   sql.NullString
		repeat    sql.NullString
		tags      string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &notes, &rec.Status,
		&completed, &dueDate, &rec.Category, &rec.Priority, &repeat, &tags,
		&createdAt, &updatedAt)
	if err != nil {
		return task.Record{}, err
	}

	rec.Completed = completed != 0
	if notes.Valid {
		rec.Notes = &notes.String
	}
	if repeat.Valid {
		rec.Repeat = &repeat.String
	}
	if dueDate.Valid {
		d, err := time.Parse(time.RFC3339Nano, dueDate.String)
		if err != nil {
			return task.Record{}, fmt.Errorf("invalid due_date: %w", err)
		}
		rec.DueDate = &d
	}
	if rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return task.Record{}, fmt.Errorf("invalid created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return task.Record{}, fmt.Errorf("invalid updated_at: %w", err)
	}
	if err := json.Unmarshal([]byte(tags), &rec.Tags); err != nil {
		return task.Record{}, fmt.Errorf("invalid tags: %w", err)
	}
	return rec, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(time.RFC3339Nano), Valid: true}
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
