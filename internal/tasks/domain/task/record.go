package task

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Record is the flat serialization form of a Task used by store
// implementations. Optional fields are pointers so that absence
// round-trips losslessly instead of degrading to empty strings or
// epoch dates.
type Record struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Notes     *string    `json:"notes,omitempty"`
	Status    string     `json:"status"`
	Completed bool       `json:"completed"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Category  string     `json:"category"`
	Priority  string     `json:"priority"`
	Repeat    *string    `json:"repeat,omitempty"`
	Tags      []string   `json:"tags"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// ToRecord converts the task to its serialization form.
func (t *Task) ToRecord() Record {
	rec := Record{
		ID:        t.id.String(),
		UserID:    t.userID.String(),
		Title:     t.title,
		Status:    t.status.String(),
		Completed: t.completed,
		Category:  t.category,
		Priority:  t.priority.String(),
		Tags:      t.Tags(),
		CreatedAt: t.createdAt,
		UpdatedAt: t.updatedAt,
	}
	if t.notes != "" {
		notes := t.notes
		rec.Notes = &notes
	}
	if t.dueDate != nil {
		d := *t.dueDate
		rec.DueDate = &d
	}
	if !t.repeat.IsZero() {
		repeat := t.repeat.String()
		rec.Repeat = &repeat
	}
	return rec
}

// FromRecord rehydrates a task from its serialization form.
func FromRecord(rec Record) (*Task, error) {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return nil, fmt.Errorf("invalid user id: %w", err)
	}
	status, err := ParseStatus(rec.Status)
	if err != nil {
		return nil, fmt.Errorf("invalid status %q: %w", rec.Status, err)
	}
	priority, err := ParsePriority(rec.Priority)
	if err != nil {
		return nil, fmt.Errorf("invalid priority %q: %w", rec.Priority, err)
	}

	t := &Task{
		id:        id,
		userID:    userID,
		title:     rec.Title,
		status:    status,
		completed: status == StatusDone,
		category:  rec.Category,
		priority:  priority,
		createdAt: rec.CreatedAt.UTC(),
		updatedAt: rec.UpdatedAt.UTC(),
	}
	if rec.Notes != nil {
		t.notes = *rec.Notes
	}
	if rec.DueDate != nil {
		d := rec.DueDate.UTC()
		t.dueDate = &d
	}
	if rec.Repeat != nil {
		repeat, err := ParseRepeat(*rec.Repeat)
		if err != nil {
			return nil, fmt.Errorf("invalid repeat %q: %w", *rec.Repeat, err)
		}
		t.repeat = repeat
	}
	t.tags = make([]string, len(rec.Tags))
	copy(t.tags, rec.Tags)
	return t, nil
}
