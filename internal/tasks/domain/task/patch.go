package task

import "time"

// Patch is a partial update applied by a store's Update operation.
// Nil fields are left unchanged. Clearing the due date needs the
// explicit flag because a nil DueDate already means "no change".
type Patch struct {
	Title        *string
	Notes        *string
	Status       *Status
	Completed    *bool
	DueDate      *time.Time
	ClearDueDate bool
	Category     *string
	Priority     *Priority
	Repeat       *Repeat
	Tags         []string
	HasTags      bool
	UpdatedAt    time.Time
}

// Apply merges the patch into a record. UpdatedAt is always rewritten;
// callers set it transactionally with the field changes.
func (p Patch) Apply(rec *Record) {
	if p.Title != nil {
		rec.Title = *p.Title
	}
	if p.Notes != nil {
		if *p.Notes == "" {
			rec.Notes = nil
		} else {
			notes := *p.Notes
			rec.Notes = &notes
		}
	}
	if p.Status != nil {
		rec.Status = p.Status.String()
	}
	if p.Completed != nil {
		rec.Completed = *p.Completed
	}
	if p.ClearDueDate {
		rec.DueDate = nil
	} else if p.DueDate != nil {
		d := p.DueDate.UTC()
		rec.DueDate = &d
	}
	if p.Category != nil {
		rec.Category = *p.Category
	}
	if p.Priority != nil {
		rec.Priority = p.Priority.String()
	}
	if p.Repeat != nil {
		if p.Repeat.IsZero() {
			rec.Repeat = nil
		} else {
			repeat := p.Repeat.String()
			rec.Repeat = &repeat
		}
	}
	if p.HasTags {
		rec.Tags = make([]string, len(p.Tags))
		copy(rec.Tags, p.Tags)
	}
	if !p.UpdatedAt.IsZero() {
		rec.UpdatedAt = p.UpdatedAt.UTC()
	}
}

// FromTask builds a full-replace patch covering every mutable field.
func (p *Patch) FromTask(t *Task) {
	title := t.Title()
	notes := t.Notes()
	status := t.Status()
	completed := t.Completed()
	category := t.Category()
	priority := t.Priority()
	repeat := t.Repeat()

	p.Title = &title
	p.Notes = &notes
	p.Status = &status
	p.Completed = &completed
	p.Category = &category
	p.Priority = &priority
	p.Repeat = &repeat
	p.Tags = t.Tags()
	p.HasTags = true
	if t.DueDate() != nil {
		d := *t.DueDate()
		p.DueDate = &d
	} else {
		p.ClearDueDate = true
	}
	p.UpdatedAt = t.UpdatedAt()
}
