package task

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordRoundTrip(t *testing.T) {
	t.Run("absent optionals stay absent", func(t *testing.T) {
		tk, err := NewTask(uuid.New(), "Task")
		require.NoError(t, err)

		rec := tk.ToRecord()
		assert.Nil(t, rec.Notes)
		assert.Nil(t, rec.DueDate)
		assert.Nil(t, rec.Repeat)

		back, err := FromRecord(rec)
		require.NoError(t, err)
		assert.Empty(t, back.Notes())
		assert.Nil(t, back.DueDate())
		assert.True(t, back.Repeat().IsZero())
	})

	t.Run("populated fields survive", func(t *testing.T) {
		tk, err := NewTask(uuid.New(), "Pay rent")
		require.NoError(t, err)
		due := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
		tk.SetNotes("transfer before noon")
		tk.SetDueDate(&due)
		tk.SetCategory("finance")
		require.NoError(t, tk.SetPriority(PriorityHigh))
		require.NoError(t, tk.SetRepeat(RepeatMonthly))
		tk.SetTags([]string{"bills", "bills"})
		require.NoError(t, tk.SetStatus(StatusDone))

		back, err := FromRecord(tk.ToRecord())
		require.NoError(t, err)

		assert.Equal(t, tk.ID(), back.ID())
		assert.Equal(t, "Pay rent", back.Title())
		assert.Equal(t, "transfer before noon", back.Notes())
		assert.Equal(t, StatusDone, back.Status())
		assert.True(t, back.Completed(), "completed is derived from status, not trusted from the record")
		require.NotNil(t, back.DueDate())
		assert.True(t, back.DueDate().Equal(due))
		assert.Equal(t, "finance", back.Category())
		assert.Equal(t, PriorityHigh, back.Priority())
		assert.Equal(t, RepeatMonthly, back.Repeat())
		assert.Equal(t, []string{"bills", "bills"}, back.Tags(), "duplicate tags are preserved")
	})

	t.Run("completed flag is recomputed from status", func(t *testing.T) {
		tk, err := NewTask(uuid.New(), "Task")
		require.NoError(t, err)

		rec := tk.ToRecord()
		rec.Completed = true // stale mirror from a corrupt row

		back, err := FromRecord(rec)
		require.NoError(t, err)
		assert.False(t, back.Completed())
	})
}

func TestFromRecord_Invalid(t *testing.T) {
	base := func() Record {
		tk, err := NewTask(uuid.New(), "Task")
		require.NoError(t, err)
		return tk.ToRecord()
	}

	t.Run("bad id", func(t *testing.T) {
		rec := base()
		rec.ID = "not-a-uuid"
		_, err := FromRecord(rec)
		assert.Error(t, err)
	})

	t.Run("bad status", func(t *testing.T) {
		rec := base()
		rec.Status = "archived"
		_, err := FromRecord(rec)
		assert.ErrorIs(t, err, ErrInvalidStatus)
	})

	t.Run("bad priority", func(t *testing.T) {
		rec := base()
		rec.Priority = "urgent"
		_, err := FromRecord(rec)
		assert.ErrorIs(t, err, ErrInvalidPriority)
	})
}

func TestCategoryCatalog(t *testing.T) {
	cats := Catalog()
	require.NotEmpty(t, cats)
	assert.Equal(t, DefaultCategoryID, cats[0].ID, "personal must stay first; parser match order depends on it")

	ids := make([]string, 0, len(cats))
	for _, c := range cats {
		ids = append(ids, c.ID)
		assert.NotEmpty(t, c.Name)
		assert.NotEmpty(t, c.Keywords)
	}
	assert.Equal(t, []string{"personal", "work", "shopping", "health", "home", "finance"}, ids)
}

func TestCategoryDisplayName(t *testing.T) {
	assert.Equal(t, "Shopping", CategoryDisplayName("shopping"))
	assert.Equal(t, "Uncategorized", CategoryDisplayName("misc"))
	assert.Equal(t, "Uncategorized", CategoryDisplayName(""))
}
