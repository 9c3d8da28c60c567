// Package breaker wraps a store with a circuit breaker so that a
// failing backend sheds load fast instead of timing out every command.
package breaker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("store temporarily unavailable")

// Config tunes the circuit breaker.
type Config struct {
	// FailureThreshold is the number of consecutive failures that
	// trips the breaker.
	FailureThreshold uint32

	// MaxRequests allowed through while half-open.
	MaxRequests uint32

	// Interval between closed-state count resets.
	Interval time.Duration

	// Timeout before an open breaker transitions to half-open.
	Timeout time.Duration
}

// DefaultConfig returns conservative defaults.
func DefaultConfig() Config {
	return Config{
		FailureThreshold: 5,
		MaxRequests:      1,
		Interval:         60 * time.Second,
		Timeout:          30 * time.Second,
	}
}

// Store decorates another store with circuit breaking. Subscriptions
// pass through unguarded: they are long-lived resources, not
// per-request calls.
type Store struct {
	next    store.Store
	breaker *gobreaker.CircuitBreaker[any]
	logger  *slog.Logger
}

// New wraps next with a circuit breaker.
func New(next store.Store, cfg Config, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FailureThreshold == 0 {
		cfg = DefaultConfig()
	}

	s := &Store{next: next, logger: logger}
	s.breaker = gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        "taskdeck-store",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		IsSuccessful: func(err error) bool {
			// Domain outcomes are not backend failures.
			return err == nil ||
				errors.Is(err, task.ErrTaskNotFound) ||
				errors.Is(err, settings.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("store circuit breaker state changed",
				"from", from.String(),
				"to", to.String(),
			)
		},
	})
	return s
}

func (s *Store) execute(fn func() error) error {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrUnavailable
	}
	return err
}

// Create implements task.Store.
func (s *Store) Create(ctx context.Context, userID uuid.UUID, t *task.Task) error {
	return s.execute(func() error { return s.next.Create(ctx, userID, t) })
}

// Update implements task.Store.
func (s *Store) Update(ctx context.Context, id uuid.UUID, patch task.Patch) error {
	return s.execute(func() error { return s.next.Update(ctx, id, patch) })
}

// Delete implements task.Store.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	return s.execute(func() error { return s.next.Delete(ctx, id) })
}

// Subscribe implements task.Store.
func (s *Store) Subscribe(ctx context.Context, userID uuid.UUID) (task.Subscription, error) {
	return s.next.Subscribe(ctx, userID)
}

// GetSettings implements settings.Store.
func (s *Store) GetSettings(ctx context.Context, userID uuid.UUID) (*settings.Settings, error) {
	var out *settings.Settings
	err := s.execute(func() error {
		var err error
		out, err = s.next.GetSettings(ctx, userID)
		return err
	})
	return out, err
}

// PutSettings implements settings.Store.
func (s *Store) PutSettings(ctx context.Context, userID uuid.UUID, in *settings.Settings) error {
	return s.execute(func() error { return s.next.PutSettings(ctx, userID, in) })
}

// Close releases the wrapped store.
func (s *Store) Close() error {
	return s.next.Close()
}
