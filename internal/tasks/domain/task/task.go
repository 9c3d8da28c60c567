package task

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle   = errors.New("task title cannot be empty")
	ErrTaskNotFound = errors.New("task not found")
)

// Task represents a single to-do item. The completed flag is a cached
// mirror of status == done; every mutation path keeps the two in step.
type Task struct {
	id        uuid.UUID
	userID    uuid.UUID
	title     string
	notes     string
	status    Status
	completed bool
	dueDate   *time.Time
	category  string
	priority  Priority
	repeat    Repeat
	tags      []string
	createdAt time.Time
	updatedAt time.Time
}

// NewTask creates a new open task with the given title.
func NewTask(userID uuid.UUID, title string) (*Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	return &Task{
		id:        uuid.New(),
		userID:    userID,
		title:     title,
		status:    StatusOpen,
		completed: false,
		category:  DefaultCategoryID,
		priority:  PriorityMedium,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Getters

func (t *Task) ID() uuid.UUID        { return t.id }
func (t *Task) UserID() uuid.UUID    { return t.userID }
func (t *Task) Title() string        { return t.title }
func (t *Task) Notes() string        { return t.notes }
func (t *Task) Status() Status       { return t.status }
func (t *Task) Completed() bool      { return t.completed }
func (t *Task) DueDate() *time.Time  { return t.dueDate }
func (t *Task) Category() string     { return t.category }
func (t *Task) Priority() Priority   { return t.priority }
func (t *Task) Repeat() Repeat       { return t.repeat }
func (t *Task) CreatedAt() time.Time { return t.createdAt }
func (t *Task) UpdatedAt() time.Time { return t.updatedAt }

// Tags returns the tags in entry order.
func (t *Task) Tags() []string {
	out := make([]string, len(t.tags))
	copy(out, t.tags)
	return out
}

func (t *Task) touch() {
	t.updatedAt = time.Now().UTC()
}

// SetTitle updates the task title.
func (t *Task) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyTitle
	}
	t.title = title
	t.touch()
	return nil
}

// SetNotes updates the free-text notes.
func (t *Task) SetNotes(notes string) {
	t.notes = strings.TrimSpace(notes)
	t.touch()
}

// SetCategory updates the category key. Unknown keys are tolerated;
// they display as uncategorized.
func (t *Task) SetCategory(category string) {
	t.category = category
	t.touch()
}

// SetPriority updates the task priority.
func (t *Task) SetPriority(priority Priority) error {
	if !priority.IsValid() {
		return ErrInvalidPriority
	}
	t.priority = priority
	t.touch()
	return nil
}

// SetDueDate updates the due date. A nil value clears the deadline.
func (t *Task) SetDueDate(dueDate *time.Time) {
	if dueDate != nil {
		d := dueDate.UTC()
		t.dueDate = &d
	} else {
		t.dueDate = nil
	}
	t.touch()
}

// SetRepeat updates the recurrence tag.
func (t *Task) SetRepeat(repeat Repeat) error {
	if !repeat.IsZero() {
		if _, err := ParseRepeat(repeat.String()); err != nil {
			return err
		}
	}
	t.repeat = repeat
	t.touch()
	return nil
}

// SetTags replaces the tag list, preserving the given order.
func (t *Task) SetTags(tags []string) {
	t.tags = make([]string, len(tags))
	copy(t.tags, tags)
	t.touch()
}

// SetStatus transitions the lifecycle state and rewrites the completed
// mirror in the same mutation.
func (t *Task) SetStatus(status Status) error {
	if !status.IsValid() {
		return ErrInvalidStatus
	}
	t.status = status
	t.completed = status == StatusDone
	t.touch()
	return nil
}

// ToggleCompleted flips the completed flag. Completing a task always
// sets status to done regardless of the prior state; un-completing a
// done task reverts status to open, never to in-progress.
func (t *Task) ToggleCompleted() {
	if t.completed {
		t.completed = false
		t.status = StatusOpen
	} else {
		t.completed = true
		t.status = StatusDone
	}
	t.touch()
}

// ToggleImportant flips priority between high and medium. A low
// priority task becomes high; low is never a toggle target.
func (t *Task) ToggleImportant() {
	if t.priority == PriorityHigh {
		t.priority = PriorityMedium
	} else {
		t.priority = PriorityHigh
	}
	t.touch()
}

// IsOverdue reports whether the task has a due date strictly before
// now and is not done.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.dueDate != nil && t.dueDate.Before(now) && t.status != StatusDone
}

// Clone returns a deep copy. Consumers of synchronizer snapshots
// receive clones so readers can never mutate the authoritative list.
func (t *Task) Clone() *Task {
	c := *t
	if t.dueDate != nil {
		d := *t.dueDate
		c.dueDate = &d
	}
	c.tags = make([]string, len(t.tags))
	copy(c.tags, t.tags)
	return &c
}
