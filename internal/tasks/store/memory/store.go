// Package memory provides an in-memory store implementation. It backs
// tests and demo mode; the data lives only as long as the process.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/notify"
	"github.com/google/uuid"
)

// Store keeps task records and settings in process memory and fans
// out change notifications through an in-process hub.
type Store struct {
	mu       sync.RWMutex
	records  map[uuid.UUID]task.Record
	settings map[uuid.UUID]settings.Settings
	hub      *notify.Hub
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		records:  make(map[uuid.UUID]task.Record),
		settings: make(map[uuid.UUID]settings.Settings),
		hub:      notify.NewHub(),
	}
}

// Create persists a new task and notifies subscribers.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, t *task.Task) error {
	s.mu.Lock()
	s.records[t.ID()] = t.ToRecord()
	s.mu.Unlock()

	s.publish(userID)
	return nil
}

// Update applies a partial update and notifies subscribers.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch task.Patch) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if !ok {
		s.mu.Unlock()
		return task.ErrTaskNotFound
	}
	patch.Apply(&rec)
	s.records[id] = rec
	userID, err := uuid.Parse(rec.UserID)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.publish(userID)
	return nil
}

// Delete removes a task. Unknown ids are a no-op.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	rec, ok := s.records[id]
	if ok {
		delete(s.records, id)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return err
	}
	s.publish(userID)
	return nil
}

// Subscribe opens a change feed, delivering the current snapshot
// immediately.
func (s *Store) Subscribe(ctx context.Context, userID uuid.UUID) (task.Subscription, error) {
	sub := s.hub.Subscribe(userID)
	snapshot, err := s.snapshot(userID)
	if err != nil {
		_ = sub.Close()
		return nil, err
	}
	sub.Push(snapshot)
	return sub, nil
}

// GetSettings implements settings.Store.
func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.settings[userID]
	if !ok {
		return nil, settings.ErrNotFound
	}
	out := stored
	return &out, nil
}

// PutSettings implements settings.Store.
func (s *Store) PutSettings(ctx context.Context, userID uuid.UUID, in *settings.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings[userID] = *in
	return nil
}

// Close tears down every open subscription.
func (s *Store) Close() error {
	s.hub.Close()
	return nil
}

func (s *Store) publish(userID uuid.UUID) {
	snapshot, err := s.snapshot(userID)
	if err != nil {
		return
	}
	s.hub.Publish(userID, snapshot)
}

func (s *Store) snapshot(userID uuid.UUID) ([]*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user := userID.String()
	tasks := make([]*task.Task, 0)
	for _, rec := range s.records {
		if rec.UserID != user {
			continue
		}
		t, err := task.FromRecord(rec)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}

	// Stable order keeps snapshots deterministic across map iteration.
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt().Equal(tasks[j].CreatedAt()) {
			return tasks[i].CreatedAt().Before(tasks[j].CreatedAt())
		}
		return tasks[i].ID().String() < tasks[j].ID().String()
	})
	return tasks, nil
}
