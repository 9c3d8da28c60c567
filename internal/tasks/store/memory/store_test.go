package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

func newTask(t *testing.T, userID uuid.UUID, title string) *task.Task {
	t.Helper()
	tk, err := task.NewTask(userID, title)
	require.NoError(t, err)
	return tk
}

func receive(t *testing.T, ch <-chan []*task.Task) []*task.Task {
	t.Helper()
	select {
	case snapshot, ok := <-ch:
		require.True(t, ok, "subscription closed unexpectedly")
		return snapshot
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for snapshot")
		return nil
	}
}

func TestStore_SubscribeDeliversInitialSnapshot(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	require.NoError(t, s.Create(ctx, userID, newTask(t, userID, "Existing")))

	sub, err := s.Subscribe(ctx, userID)
	require.NoError(t, err)
	defer sub.Close()

	snapshot := receive(t, sub.Changes())
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Existing", snapshot[0].Title())
}

func TestStore_CreateNotifiesSubscribers(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	sub, err := s.Subscribe(ctx, userID)
	require.NoError(t, err)
	defer sub.Close()
	assert.Empty(t, receive(t, sub.Changes()))

	tk := newTask(t, userID, "New task")
	require.NoError(t, s.Create(ctx, userID, tk))

	snapshot := receive(t, sub.Changes())
	require.Len(t, snapshot, 1)
	assert.Equal(t, tk.ID(), snapshot[0].ID())
}

func TestStore_UpdateAppliesPatch(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	tk := newTask(t, userID, "Task")
	due := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	tk.SetDueDate(&due)
	tk.SetNotes("keep me")
	require.NoError(t, s.Create(ctx, userID, tk))

	sub, err := s.Subscribe(ctx, userID)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub.Changes())

	status := task.StatusDone
	completed := true
	updatedAt := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)
	require.NoError(t, s.Update(ctx, tk.ID(), task.Patch{
		Status:    &status,
		Completed: &completed,
		UpdatedAt: updatedAt,
	}))

	snapshot := receive(t, sub.Changes())
	require.Len(t, snapshot, 1)
	got := snapshot[0]
	assert.Equal(t, task.StatusDone, got.Status())
	assert.True(t, got.Completed())
	assert.True(t, got.UpdatedAt().Equal(updatedAt))
	// Untouched fields survive the partial update.
	assert.Equal(t, "keep me", got.Notes())
	require.NotNil(t, got.DueDate())
	assert.True(t, got.DueDate().Equal(due))
}

func TestStore_UpdateClearsDueDate(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	tk := newTask(t, userID, "Task")
	due := time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC)
	tk.SetDueDate(&due)
	require.NoError(t, s.Create(ctx, userID, tk))

	sub, err := s.Subscribe(ctx, userID)
	require.NoError(t, err)
	defer sub.Close()
	receive(t, sub.Changes())

	require.NoError(t, s.Update(ctx, tk.ID(), task.Patch{
		ClearDueDate: true,
		UpdatedAt:    time.Now().UTC(),
	}))

	snapshot := receive(t, sub.Changes())
	require.Len(t, snapshot, 1)
	assert.Nil(t, snapshot[0].DueDate())
}

func TestStore_UpdateUnknownID(t *testing.T) {
	s := NewStore()
	defer s.Close()

	err := s.Update(context.Background(), uuid.New(), task.Patch{UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, task.ErrTaskNotFound)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	tk := newTask(t, userID, "Task")
	require.NoError(t, s.Create(ctx, userID, tk))

	require.NoError(t, s.Delete(ctx, tk.ID()))
	require.NoError(t, s.Delete(ctx, tk.ID()))
	require.NoError(t, s.Delete(ctx, uuid.New()))
}

func TestStore_SnapshotScopedToUser(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	require.NoError(t, s.Create(ctx, alice, newTask(t, alice, "Alice's")))
	require.NoError(t, s.Create(ctx, bob, newTask(t, bob, "Bob's")))

	sub, err := s.Subscribe(ctx, alice)
	require.NoError(t, err)
	defer sub.Close()

	snapshot := receive(t, sub.Changes())
	require.Len(t, snapshot, 1)
	assert.Equal(t, "Alice's", snapshot[0].Title())
}

func TestStore_SnapshotOrderIsStable(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	first := newTask(t, userID, "First")
	time.Sleep(time.Millisecond)
	second := newTask(t, userID, "Second")
	require.NoError(t, s.Create(ctx, userID, second))
	require.NoError(t, s.Create(ctx, userID, first))

	sub, err := s.Subscribe(ctx, userID)
	require.NoError(t, err)
	defer sub.Close()

	snapshot := receive(t, sub.Changes())
	require.Len(t, snapshot, 2)
	assert.Equal(t, "First", snapshot[0].Title(), "snapshots order by creation time, not insertion")
	assert.Equal(t, "Second", snapshot[1].Title())
}

func TestStore_Settings(t *testing.T) {
	s := NewStore()
	defer s.Close()
	ctx := context.Background()
	userID := uuid.New()

	_, err := s.GetSettings(ctx, userID)
	assert.ErrorIs(t, err, settings.ErrNotFound)

	in := settings.Settings{DefaultView: "upcoming", Theme: "dark", StartOfWeek: 0}
	require.NoError(t, s.PutSettings(ctx, userID, &in))

	got, err := s.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, in, *got)
}
