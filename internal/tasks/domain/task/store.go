package task

import (
	"context"

	"github.com/google/uuid"
)

// Store is the persistence port for tasks. Implementations exist for
// in-memory, SQLite and PostgreSQL backends; the synchronizer treats
// the store as an opaque document store.
type Store interface {
	// Create persists a new task.
	Create(ctx context.Context, userID uuid.UUID, t *Task) error

	// Update applies a partial update to an existing task. Returns
	// ErrTaskNotFound when the id is unknown.
	Update(ctx context.Context, id uuid.UUID, patch Patch) error

	// Delete removes a task permanently. Deleting an absent id is not
	// an error.
	Delete(ctx context.Context, id uuid.UUID) error

	// Subscribe opens a change feed for a user. The subscription
	// delivers the full current task list immediately and again after
	// every change, until Close is called.
	Subscribe(ctx context.Context, userID uuid.UUID) (Subscription, error)
}

// Subscription is a live change feed of full task-list snapshots.
type Subscription interface {
	// Changes returns the snapshot channel. The channel is closed when
	// the subscription ends.
	Changes() <-chan []*Task

	// Close releases the subscription. Safe to call more than once.
	Close() error
}
