package syncer

import (
	"time"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

// Stats are derived counts over the full unfiltered task list. They
// are recomputed synchronously whenever the list changes and never
// persisted or cached across revisions.
type Stats struct {
	Total     int
	Completed int
	Pending   int
	Overdue   int

	// Weekly buckets completions per weekday (index time.Weekday),
	// counting only tasks completed within the trailing seven days.
	Weekly [7]int

	// ByCategory maps category key to task count.
	ByCategory map[string]int
}

// ComputeStats derives statistics from a task list.
func ComputeStats(tasks []*task.Task, now time.Time) Stats {
	stats := Stats{
		ByCategory: make(map[string]int),
	}

	for _, t := range tasks {
		stats.Total++
		if t.Completed() {
			stats.Completed++
			age := now.Sub(t.UpdatedAt())
			if age >= 0 && age < 7*24*time.Hour {
				stats.Weekly[t.UpdatedAt().In(now.Location()).Weekday()]++
			}
		}
		if t.IsOverdue(now) {
			stats.Overdue++
		}
		stats.ByCategory[t.Category()]++
	}
	stats.Pending = stats.Total - stats.Completed
	return stats
}
