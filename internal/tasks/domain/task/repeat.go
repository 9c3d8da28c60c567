package task

import (
	"errors"
	"strings"
)

// Repeat is an informational recurrence tag. Tasks carrying a repeat
// value are never expanded into future instances; the tag is stored
// and displayed as-is.
type Repeat string

const (
	RepeatNone    Repeat = ""
	RepeatDaily   Repeat = "daily"
	RepeatWeekly  Repeat = "weekly"
	RepeatMonthly Repeat = "monthly"
	RepeatYearly  Repeat = "yearly"
	RepeatCustom  Repeat = "custom"
)

// ErrInvalidRepeat is returned when a repeat string is not recognized.
var ErrInvalidRepeat = errors.New("invalid repeat value")

var repeatValues = map[string]Repeat{
	"daily":   RepeatDaily,
	"weekly":  RepeatWeekly,
	"monthly": RepeatMonthly,
	"yearly":  RepeatYearly,
	"custom":  RepeatCustom,
}

// ParseRepeat creates a Repeat from a string. The empty string parses
// to RepeatNone.
func ParseRepeat(s string) (Repeat, error) {
	if s == "" {
		return RepeatNone, nil
	}
	r, ok := repeatValues[strings.ToLower(s)]
	if !ok {
		return RepeatNone, ErrInvalidRepeat
	}
	return r, nil
}

// String returns the string representation of the repeat tag.
func (r Repeat) String() string { return string(r) }

// IsZero returns true when no recurrence tag is set.
func (r Repeat) IsZero() bool { return r == RepeatNone }
