// Package settings holds per-user preferences persisted through the
// same port as tasks.
package settings

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a user has no stored settings.
var ErrNotFound = errors.New("settings not found")

// Settings are user preferences. They are persisted as a single
// document per user; unset fields fall back to defaults at read time.
type Settings struct {
	DefaultView string `json:"default_view"`
	Theme       string `json:"theme"`
	StartOfWeek int    `json:"start_of_week"`
}

// Default returns the settings applied to users who never saved any.
func Default() *Settings {
	return &Settings{
		DefaultView: "today",
		Theme:       "system",
		StartOfWeek: 1, // Monday
	}
}

// Store is the persistence port for settings.
type Store interface {
	// GetSettings returns the user's settings, or ErrNotFound when
	// none were ever stored.
	GetSettings(ctx context.Context, userID uuid.UUID) (*Settings, error)

	// PutSettings stores the user's settings, replacing any previous
	// document.
	PutSettings(ctx context.Context, userID uuid.UUID, s *Settings) error
}
