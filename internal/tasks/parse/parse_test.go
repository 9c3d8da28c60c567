package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

// Monday morning, so every weekday phrase has a deterministic target.
var now = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParse_QuickAdd(t *testing.T) {
	t.Run("buy milk tomorrow", func(t *testing.T) {
		d := Parse("Buy milk tomorrow", now)

		assert.Equal(t, "Buy milk", d.Title)
		assert.Equal(t, "shopping", d.Category)
		require.NotNil(t, d.DueDate)
		assert.True(t, d.DueDate.Equal(date(2024, 6, 11)))
		assert.Equal(t, task.PriorityMedium, d.Priority)
		assert.Empty(t, d.Tags)
		assert.True(t, d.Repeat.IsZero())
	})

	t.Run("call mom urgent with tag", func(t *testing.T) {
		d := Parse("Call mom urgent #family", now)

		assert.Equal(t, "Call mom", d.Title)
		assert.Equal(t, "personal", d.Category)
		assert.Equal(t, task.PriorityHigh, d.Priority)
		assert.Equal(t, []string{"family"}, d.Tags)
		assert.Nil(t, d.DueDate)
	})
}

func TestParse_Category(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Buy groceries", "shopping"},
		{"Prepare presentation for client", "work"},
		{"Book dentist appointment", "health"},
		{"Fix the garden fence", "home"},
		{"Pay electricity bill", "finance"},
		{"Read a book", "personal"},
		{"BUY MILK", "shopping"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input, now).Category)
		})
	}

	t.Run("first catalog match wins", func(t *testing.T) {
		// "call" (personal) and "boss" (work) both match; personal
		// comes first in the catalog.
		assert.Equal(t, "personal", Parse("Call the boss", now).Category)
	})
}

func TestParse_Priority(t *testing.T) {
	tests := []struct {
		input string
		want  task.Priority
		title string
	}{
		{"Submit report asap", task.PriorityHigh, "Submit report"},
		{"Fix critical leak", task.PriorityHigh, "Fix leak"},
		{"Review budget high priority", task.PriorityHigh, "Review budget"},
		{"Sort photos someday", task.PriorityLow, "Sort photos"},
		{"Clean garage whenever", task.PriorityLow, "Clean garage"},
		{"Water plants", task.PriorityMedium, "Water plants"},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			d := Parse(tt.input, now)
			assert.Equal(t, tt.want, d.Priority)
			assert.Equal(t, tt.title, d.Title)
		})
	}
}

func TestParse_Tags(t *testing.T) {
	d := Parse("Plan trip #travel #2024 #travel", now)
	assert.Equal(t, []string{"travel", "2024", "travel"}, d.Tags, "duplicates pass through in input order")
	assert.Equal(t, "Plan trip", d.Title)

	assert.Empty(t, Parse("No tags here", now).Tags)
}

func TestParse_Repeat(t *testing.T) {
	d := Parse("Pay rent repeat:monthly", now)
	assert.Equal(t, task.RepeatMonthly, d.Repeat)
	assert.Equal(t, "finance", d.Category)
	assert.Equal(t, "Pay rent", d.Title)

	d = Parse("Water plants repeat:unknown", now)
	assert.True(t, d.Repeat.IsZero())
	assert.Contains(t, d.Title, "repeat:unknown", "unrecognized values are left in the title")
}

func TestParse_DueDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
		title string
	}{
		{"today", "File expenses today", date(2024, 6, 10), "File expenses"},
		{"tonight", "Take out trash tonight", date(2024, 6, 10), "Take out trash"},
		{"tomorrow", "Gym session tomorrow", date(2024, 6, 11), "Gym session"},
		{"next week", "Plan sprint next week", date(2024, 6, 17), "Plan sprint"},
		{"this weekend", "Mow lawn this weekend", date(2024, 6, 15), "Mow lawn"},
		{"by weekday", "Finish draft by friday", date(2024, 6, 14), "Finish draft"},
		{"next weekday", "Standup next monday", date(2024, 6, 17), "Standup"},
		{"bare weekday", "Dinner wednesday", date(2024, 6, 12), "Dinner"},
		{"month day upcoming", "Renew passport Dec 5", date(2024, 12, 5), "Renew passport"},
		{"month day rolls over", "Ski trip Jan 3rd", date(2025, 1, 3), "Ski trip"},
		{"iso date", "Submit form 2024-09-15", date(2024, 9, 15), "Submit form"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Parse(tt.input, now)
			require.NotNil(t, d.DueDate)
			assert.True(t, d.DueDate.Equal(tt.want), "got %v want %v", d.DueDate, tt.want)
			assert.Equal(t, tt.title, d.Title)
		})
	}

	t.Run("no date phrase", func(t *testing.T) {
		assert.Nil(t, Parse("Write thank-you note", now).DueDate)
	})

	t.Run("date-only resolution", func(t *testing.T) {
		d := Parse("Gym tomorrow", now)
		require.NotNil(t, d.DueDate)
		assert.Equal(t, 0, d.DueDate.Hour())
		assert.Equal(t, 0, d.DueDate.Minute())
	})
}

func TestParse_TitleCleanup(t *testing.T) {
	t.Run("boundary fillers removed after extraction", func(t *testing.T) {
		d := Parse("Call mom on friday", now)
		assert.Equal(t, "Call mom", d.Title)

		d = Parse("Buy gift for tomorrow", now)
		assert.Equal(t, "Buy gift", d.Title)
	})

	t.Run("fillers kept when nothing was extracted", func(t *testing.T) {
		d := Parse("Go for a walk", now)
		assert.Equal(t, "Go for a walk", d.Title)
		assert.Nil(t, d.DueDate)
	})

	t.Run("whitespace collapsed", func(t *testing.T) {
		d := Parse("  Buy   milk   tomorrow  ", now)
		assert.Equal(t, "Buy milk", d.Title)
	})

	t.Run("input that is all tokens yields empty title", func(t *testing.T) {
		d := Parse("tomorrow urgent", now)
		assert.Empty(t, d.Title)
		require.NotNil(t, d.DueDate)
		assert.Equal(t, task.PriorityHigh, d.Priority)
	})
}

func TestParse_Stable(t *testing.T) {
	// Reparsing a cleaned title extracts nothing further.
	inputs := []string{
		"Buy milk tomorrow urgent #errand",
		"Call mom by friday",
		"Pay rent repeat:monthly 2024-09-01",
	}
	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			first := Parse(input, now)
			second := Parse(first.Title, now)

			assert.Equal(t, first.Title, second.Title)
			assert.Nil(t, second.DueDate)
			assert.Empty(t, second.Tags)
			assert.Equal(t, task.PriorityMedium, second.Priority)
			assert.True(t, second.Repeat.IsZero())
		})
	}
}
