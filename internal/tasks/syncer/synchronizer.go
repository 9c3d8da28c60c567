// Package syncer holds the task store synchronizer: the single
// authoritative in-memory task list for the signed-in user, kept
// eventually consistent with a persistence backend.
//
// Commands write to the store and never touch the in-memory list;
// the list is only ever rewritten by the change-notification path.
// A background goroutine owns the store subscription and forwards
// snapshots; the run loop draining them is the single writer.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/parse"
	"github.com/google/uuid"
)

var (
	// ErrNotSignedIn is returned by commands issued without an active
	// session. The in-memory list is never touched in that case.
	ErrNotSignedIn = errors.New("no active session")

	// ErrSessionActive is returned by SignIn when a session already
	// exists; callers must sign out first.
	ErrSessionActive = errors.New("session already active")
)

// State is the synchronizer's session state.
type State int

const (
	StateSignedOut State = iota
	StateSubscribing
	StateSynchronized
)

func (s State) String() string {
	switch s {
	case StateSignedOut:
		return "signed-out"
	case StateSubscribing:
		return "subscribing"
	case StateSynchronized:
		return "synchronized"
	default:
		return "unknown"
	}
}

// Synchronizer mirrors the signed-in user's tasks from a store.
type Synchronizer struct {
	store  task.Store
	logger *slog.Logger
	now    func() time.Time

	mu     sync.RWMutex
	state  State
	userID uuid.UUID
	tasks  []*task.Task
	sub    task.Subscription
	synced chan struct{}
}

// Option configures a Synchronizer.
type Option func(*Synchronizer)

// WithClock overrides the time source. Tests use it to make relative
// dates and stats windows reproducible.
func WithClock(now func() time.Time) Option {
	return func(s *Synchronizer) { s.now = now }
}

// New creates a signed-out synchronizer over the given store.
func New(store task.Store, logger *slog.Logger, opts ...Option) *Synchronizer {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Synchronizer{
		store:  store,
		logger: logger,
		now:    time.Now,
		state:  StateSignedOut,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SignIn opens the user's session: it registers exactly one store
// subscription and starts the drain loop. The list becomes visible
// once the first snapshot arrives.
func (s *Synchronizer) SignIn(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	if s.state != StateSignedOut {
		s.mu.Unlock()
		return ErrSessionActive
	}
	s.state = StateSubscribing
	s.userID = userID
	s.synced = make(chan struct{})
	s.mu.Unlock()

	sub, err := s.store.Subscribe(ctx, userID)
	if err != nil {
		s.mu.Lock()
		s.state = StateSignedOut
		s.userID = uuid.Nil
		s.synced = nil
		s.mu.Unlock()
		s.logger.Error("subscription failed", "user_id", userID, "error", err)
		return fmt.Errorf("subscribe: %w", err)
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	go s.drain(sub)

	s.logger.Info("session started", "user_id", userID)
	return nil
}

// drain is the single writer of the in-memory list.
func (s *Synchronizer) drain(sub task.Subscription) {
	for snapshot := range sub.Changes() {
		s.mu.Lock()
		if s.sub != sub {
			// Stale subscription from a previous session.
			s.mu.Unlock()
			return
		}
		s.tasks = snapshot
		if s.state == StateSubscribing {
			s.state = StateSynchronized
			close(s.synced)
		}
		s.mu.Unlock()
	}
}

// SignOut ends the session: the subscription is released exactly once
// and the in-memory list is cleared atomically with the state change,
// so no stale-user tasks can leak into the next session.
func (s *Synchronizer) SignOut() {
	s.mu.Lock()
	if s.state == StateSignedOut {
		s.mu.Unlock()
		return
	}
	sub := s.sub
	userID := s.userID
	s.sub = nil
	s.tasks = nil
	s.userID = uuid.Nil
	s.state = StateSignedOut
	s.synced = nil
	s.mu.Unlock()

	if sub != nil {
		if err := sub.Close(); err != nil {
			s.logger.Warn("failed to close subscription", "error", err)
		}
	}
	s.logger.Info("session ended", "user_id", userID)
}

// WaitSynchronized blocks until the first snapshot of the current
// session has been applied, or ctx is done.
func (s *Synchronizer) WaitSynchronized(ctx context.Context) error {
	s.mu.RLock()
	state := s.state
	synced := s.synced
	s.mu.RUnlock()

	switch state {
	case StateSignedOut:
		return ErrNotSignedIn
	case StateSynchronized:
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-synced:
		return nil
	}
}

// State returns the current session state.
func (s *Synchronizer) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Tasks returns a snapshot copy of the authoritative list. Readers
// never observe (or cause) mutations of the shared state.
func (s *Synchronizer) Tasks() []*task.Task {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*task.Task, len(s.tasks))
	for i, t := range s.tasks {
		out[i] = t.Clone()
	}
	return out
}

func (s *Synchronizer) sessionUser() (uuid.UUID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state == StateSignedOut {
		return uuid.Nil, ErrNotSignedIn
	}
	return s.userID, nil
}

// Get returns a clone of the task with the given id from the
// authoritative list.
func (s *Synchronizer) Get(id uuid.UUID) (*task.Task, error) {
	return s.find(id)
}

func (s *Synchronizer) find(id uuid.UUID) (*task.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.tasks {
		if t.ID() == id {
			return t.Clone(), nil
		}
	}
	return nil, task.ErrTaskNotFound
}

// CreateOptions carries explicit field choices supplied through
// structured inputs (a date picker, a priority selector). Explicit
// values override whatever the parser auto-detected.
type CreateOptions struct {
	Priority *task.Priority
	DueDate  *time.Time
	Notes    string
}

// Create parses the raw input into a draft, builds a task and submits
// it to the store. The new task becomes visible in the authoritative
// list only through the subsequent change notification, never
// optimistically. The returned clone reflects what was submitted.
func (s *Synchronizer) Create(ctx context.Context, rawInput string, opts CreateOptions) (*task.Task, error) {
	userID, err := s.sessionUser()
	if err != nil {
		return nil, err
	}

	draft := parse.Parse(rawInput, s.now())
	t, err := task.NewTask(userID, draft.Title)
	if err != nil {
		return nil, err
	}
	t.SetCategory(draft.Category)
	if err := t.SetPriority(draft.Priority); err != nil {
		return nil, err
	}
	if err := t.SetRepeat(draft.Repeat); err != nil {
		return nil, err
	}
	if len(draft.Tags) > 0 {
		t.SetTags(draft.Tags)
	}
	if opts.Notes != "" {
		t.SetNotes(opts.Notes)
	}
	if opts.Priority != nil {
		if err := t.SetPriority(*opts.Priority); err != nil {
			return nil, err
		}
	}
	// An explicit date wins over the parser's auto-detected one.
	if opts.DueDate != nil {
		t.SetDueDate(opts.DueDate)
	} else if draft.DueDate != nil {
		t.SetDueDate(draft.DueDate)
	}

	if err := s.store.Create(ctx, userID, t); err != nil {
		s.logger.Error("task create failed", "user_id", userID, "error", err)
		return nil, fmt.Errorf("create task: %w", err)
	}
	return t.Clone(), nil
}

// UpdateStatus transitions a task's lifecycle state. The completed
// mirror is rewritten in the same persisted write.
func (s *Synchronizer) UpdateStatus(ctx context.Context, id uuid.UUID, status task.Status) error {
	if _, err := s.sessionUser(); err != nil {
		return err
	}
	if !status.IsValid() {
		return task.ErrInvalidStatus
	}
	if _, err := s.find(id); err != nil {
		return err
	}

	completed := status == task.StatusDone
	patch := task.Patch{
		Status:    &status,
		Completed: &completed,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Update(ctx, id, patch); err != nil {
		s.logger.Error("status update failed", "task_id", id, "error", err)
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}

// ToggleCompleted flips a task's completed flag. Un-completing a done
// task reverts its status to open, never in-progress; completing sets
// done regardless of the prior status.
func (s *Synchronizer) ToggleCompleted(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sessionUser(); err != nil {
		return err
	}
	cur, err := s.find(id)
	if err != nil {
		return err
	}

	status := task.StatusDone
	completed := true
	if cur.Completed() {
		status = task.StatusOpen
		completed = false
	}
	patch := task.Patch{
		Status:    &status,
		Completed: &completed,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Update(ctx, id, patch); err != nil {
		s.logger.Error("toggle completed failed", "task_id", id, "error", err)
		return fmt.Errorf("toggle completed: %w", err)
	}
	return nil
}

// ToggleImportant flips priority between high and medium. A low
// priority task becomes high; low is never a toggle target.
func (s *Synchronizer) ToggleImportant(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sessionUser(); err != nil {
		return err
	}
	cur, err := s.find(id)
	if err != nil {
		return err
	}

	priority := task.PriorityHigh
	if cur.Priority() == task.PriorityHigh {
		priority = task.PriorityMedium
	}
	patch := task.Patch{
		Priority:  &priority,
		UpdatedAt: s.now().UTC(),
	}
	if err := s.store.Update(ctx, id, patch); err != nil {
		s.logger.Error("toggle important failed", "task_id", id, "error", err)
		return fmt.Errorf("toggle important: %w", err)
	}
	return nil
}

// Update replaces every mutable field of the task and refreshes its
// updatedAt.
func (s *Synchronizer) Update(ctx context.Context, t *task.Task) error {
	if _, err := s.sessionUser(); err != nil {
		return err
	}
	if _, err := s.find(t.ID()); err != nil {
		return err
	}

	var patch task.Patch
	patch.FromTask(t)
	patch.UpdatedAt = s.now().UTC()
	if err := s.store.Update(ctx, t.ID(), patch); err != nil {
		s.logger.Error("task update failed", "task_id", t.ID(), "error", err)
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

// Delete removes a task permanently. Deleting an id that is already
// absent is not an error.
func (s *Synchronizer) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.sessionUser(); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.logger.Error("task delete failed", "task_id", id, "error", err)
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// FilteredView returns the task list filtered and sorted for display.
func (s *Synchronizer) FilteredView(mode ViewMode, searchTerm, selectedCategory string) []*task.Task {
	tasks := s.Tasks()
	tasks = ApplyFilters(tasks, mode, searchTerm, selectedCategory, s.now())
	SortTasks(tasks)
	return tasks
}

// BoardView is the overdue-first variant of FilteredView, used by
// board-style groupings.
func (s *Synchronizer) BoardView(mode ViewMode, searchTerm, selectedCategory string) []*task.Task {
	tasks := s.Tasks()
	tasks = ApplyFilters(tasks, mode, searchTerm, selectedCategory, s.now())
	SortTasksOverdueFirst(tasks, s.now())
	return tasks
}

// Stats recomputes derived statistics from the full unfiltered list.
func (s *Synchronizer) Stats() Stats {
	return ComputeStats(s.Tasks(), s.now())
}
