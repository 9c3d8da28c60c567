package task

import (
	"errors"
	"strings"
)

// ErrInvalidStatus is returned when a status string is not recognized.
var ErrInvalidStatus = errors.New("invalid status value")

// Status represents the task lifecycle state.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
)

var statusValues = map[string]Status{
	"open":        StatusOpen,
	"in-progress": StatusInProgress,
	"done":        StatusDone,
}

// ParseStatus creates a Status from a string.
func ParseStatus(s string) (Status, error) {
	st, ok := statusValues[strings.ToLower(s)]
	if !ok {
		return StatusOpen, ErrInvalidStatus
	}
	return st, nil
}

// String returns the string representation of the status.
func (s Status) String() string { return string(s) }

// IsValid returns true if the status is a known value.
func (s Status) IsValid() bool {
	_, ok := statusValues[string(s)]
	return ok
}
