package syncer

import (
	"sort"
	"strings"
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

// ViewMode is the top-level display filter.
type ViewMode string

const (
	ViewToday     ViewMode = "today"
	ViewUpcoming  ViewMode = "upcoming"
	ViewImportant ViewMode = "important"
	ViewAll       ViewMode = "all"
	ViewCalendar  ViewMode = "calendar"
	ViewStats     ViewMode = "stats"
)

// ApplyFilters narrows the list for display. Exactly one filter is
// active at a time: a selected category suppresses view-mode and
// search filtering entirely, and clearing it restores them. That
// single-active-filter behavior is a deliberate contract, not a bug.
func ApplyFilters(tasks []*task.Task, mode ViewMode, searchTerm, selectedCategory string, now time.Time) []*task.Task {
	if selectedCategory != "" {
		out := tasks[:0]
		for _, t := range tasks {
			if t.Category() == selectedCategory {
				out = append(out, t)
			}
		}
		return out
	}

	out := tasks[:0]
	for _, t := range tasks {
		if matchesView(t, mode, now) && matchesSearch(t, searchTerm) {
			out = append(out, t)
		}
	}
	return out
}

func matchesView(t *task.Task, mode ViewMode, now time.Time) bool {
	switch mode {
	case ViewToday:
		// Due today, or strictly overdue: a task three days late
		// still belongs on today's list.
		due := t.DueDate()
		if due == nil {
			return false
		}
		return sameDay(*due, now) || t.IsOverdue(now)
	case ViewUpcoming:
		due := t.DueDate()
		return due != nil && due.After(now)
	case ViewImportant:
		return t.Priority() == task.PriorityHigh
	default:
		return true
	}
}

func matchesSearch(t *task.Task, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	if strings.Contains(strings.ToLower(t.Title()), term) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Notes()), term) {
		return true
	}
	if strings.Contains(strings.ToLower(t.Category()), term) {
		return true
	}
	for _, tag := range t.Tags() {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func sameDay(a, b time.Time) bool {
	a = a.In(b.Location())
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// SortTasks orders for display: priority descending, then soonest due
// date first, tasks without a due date last, then newest created as
// the final tie-break.
func SortTasks(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return displayLess(tasks[i], tasks[j])
	})
}

// SortTasksOverdueFirst partitions overdue tasks before all others,
// preserving the display order within each partition.
func SortTasksOverdueFirst(tasks []*task.Task, now time.Time) {
	sort.SliceStable(tasks, func(i, j int) bool {
		oi, oj := tasks[i].IsOverdue(now), tasks[j].IsOverdue(now)
		if oi != oj {
			return oi
		}
		return displayLess(tasks[i], tasks[j])
	})
}

func displayLess(a, b *task.Task) bool {
	if a.Priority() != b.Priority() {
		return a.Priority().Weight() > b.Priority().Weight()
	}
	ad, bd := a.DueDate(), b.DueDate()
	switch {
	case ad != nil && bd != nil:
		if !ad.Equal(*bd) {
			return ad.Before(*bd)
		}
	case ad != nil:
		return true
	case bd != nil:
		return false
	}
	return a.CreatedAt().After(b.CreatedAt())
}
