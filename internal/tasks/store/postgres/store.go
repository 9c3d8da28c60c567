// Package postgres implements the persistence port over PostgreSQL.
// Cross-session real-time sync rides on LISTEN/NOTIFY: every mutation
// raises a notification carrying the user id, and subscriptions
// re-read the task set when one arrives.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const notifyChannel = "taskdeck_tasks_changed"

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         UUID PRIMARY KEY,
	user_id    UUID NOT NULL,
	title      TEXT NOT NULL,
	notes      TEXT,
	status     TEXT NOT NULL,
	completed  BOOLEAN NOT NULL DEFAULT FALSE,
	due_date   TIMESTAMPTZ,
	category   TEXT NOT NULL,
	priority   TEXT NOT NULL,
	repeat     TEXT,
	tags       JSONB NOT NULL DEFAULT '[]',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_tasks_user_id ON tasks(user_id);

CREATE TABLE IF NOT EXISTS settings (
	user_id UUID PRIMARY KEY,
	payload JSONB NOT NULL
);
`

// Store is a PostgreSQL-backed task and settings store.
type Store struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Connect opens a connection pool and applies the schema.
func Connect(ctx context.Context, url string, logger *slog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	s, err := New(ctx, pool, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing pool, applying the schema.
func New(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Store{pool: pool, logger: logger}, nil
}

// Create persists a new task and raises a change notification.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, t *task.Task) error {
	rec := t.ToRecord()
	tags, err := json.Marshal(rec.Tags)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO tasks (id, user_id, title, notes, status, completed, due_date, category, priority, repeat, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		rec.ID, rec.UserID, rec.Title, rec.Notes, rec.Status, rec.Completed,
		rec.DueDate, rec.Category, rec.Priority, rec.Repeat, tags,
		rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	s.notifyChanged(ctx, userID)
	return nil
}

// Update applies a partial update and raises a change notification.
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

	_, err = s.pool.Exec(ctx, `
		UPDATE tasks
		SET title = $1, notes = $2, status = $3, completed = $4, due_date = $5, category = $6, priority = $7, repeat = $8, tags = $9, updated_at = $10
		WHERE id = $11`,
		rec.Title, rec.Notes, rec.Status, rec.Completed, rec.DueDate,
		rec.Category, rec.Priority, rec.Repeat, tags, rec.UpdatedAt, rec.ID,
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

	if _, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return err
	}
	s.notifyChanged(ctx, userID)
	return nil
}

// Subscribe opens a change feed backed by a dedicated LISTEN
// connection. The current snapshot is delivered immediately.
func (s *Store) Subscribe(ctx context.Context, userID uuid.UUID) (task.Subscription, error) {
	snapshot, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	listenCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	sub := &subscription{
		ch:     make(chan []*task.Task, 1),
		cancel: cancel,
	}
	sub.ch <- snapshot

	go s.listen(listenCtx, userID, sub)
	return sub, nil
}

// listen owns the notification connection for one subscription.
func (s *Store) listen(ctx context.Context, userID uuid.UUID, sub *subscription) {
	defer close(sub.ch)

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logger.Error("failed to acquire listen connection", "user_id", userID, "error", err)
		}
		return
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		s.logger.Error("failed to listen for changes", "user_id", userID, "error", err)
		return
	}

	for {
		notification, err := conn.Conn().WaitForNotification(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				s.logger.Error("change listener stopped", "user_id", userID, "error", err)
			}
			return
		}
		if notification.Payload != userID.String() {
			continue
		}

		snapshot, err := s.snapshot(ctx, userID)
		if err != nil {
			s.logger.Error("failed to build change snapshot", "user_id", userID, "error", err)
			continue
		}
		sub.send(snapshot)
	}
}

// GetSettings implements settings.Store.
func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, `SELECT payload FROM settings WHERE user_id = $1`, userID.String()).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, settings.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	var out settings.Settings
	if err := json.Unmarshal(payload, &out); err != nil {
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
	_, err = s.pool.Exec(ctx, `
		INSERT INTO settings (user_id, payload) VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET payload = EXCLUDED.payload`,
		userID.String(), payload,
	)
	if err != nil {
		return fmt.Errorf("failed to store settings: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) notifyChanged(ctx context.Context, userID uuid.UUID) {
	if _, err := s.pool.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, userID.String()); err != nil {
		s.logger.Warn("change notification failed", "user_id", userID, "error", err)
	}
}

func (s *Store) loadRecord(ctx context.Context, id uuid.UUID) (task.Record, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id::text, user_id::text, title, notes, status, completed, due_date, category, priority, repeat, tags, created_at, updated_at
		FROM tasks WHERE id = $1`, id.String())
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return task.Record{}, task.ErrTaskNotFound
	}
	return rec, err
}

func (s *Store) snapshot(ctx context.Context, userID uuid.UUID) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, user_id::text, title, notes, status, completed, due_date, category, priority, repeat, tags, created_at, updated_at
		FROM tasks WHERE user_id = $1 ORDER BY created_at, id`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

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
		rec  task.Record
		tags []byte
	)
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Title, &rec.Notes, &rec.Status,
		&rec.Completed, &rec.DueDate, &rec.Category, &rec.Priority,
		&rec.Repeat, &tags, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return task.Record{}, err
	}
	if err := json.Unmarshal(tags, &rec.Tags); err != nil {
		return task.Record{}, fmt.Errorf("invalid tags: %w", err)
	}
	return rec, nil
}

// subscription implements task.Subscription over the listen loop.
type subscription struct {
	ch     chan []*task.Task
	cancel context.CancelFunc
	once   sync.Once
}

func (s *subscription) Changes() <-chan []*task.Task { return s.ch }

// send keeps latest-value semantics: an undrained snapshot is replaced
// rather than blocking the listen loop.
func (s *subscription) send(snapshot []*task.Task) {
	select {
	case s.ch <- snapshot:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snapshot:
		default:
		}
	}
}

// Close stops the listen loop and releases its connection. Safe to
// call more than once.
func (s *subscription) Close() error {
	s.once.Do(s.cancel)
	return nil
}
