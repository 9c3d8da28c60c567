// Package store composes the persistence port surfaces implemented by
// every backend.
package store

import (
	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

// Store is the full persistence port: task CRUD with change
// subscriptions plus per-user settings documents.
type Store interface {
	task.Store
	settings.Store

	Close() error
}
