package breaker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskdeck/internal/settings"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/felixgeelhaar/taskdeck/internal/tasks/store/memory"
)

var errBackend = errors.New("backend unreachable")

// flakyStore fails writes while err is set, and counts how often the
// backend is actually reached.
type flakyStore struct {
	*memory.Store
	err   error
	calls int
}

func (f *flakyStore) Delete(ctx context.Context, id uuid.UUID) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	return f.Store.Delete(ctx, id)
}

func newBreaker(t *testing.T, threshold uint32) (*Store, *flakyStore) {
	t.Helper()
	backend := &flakyStore{Store: memory.NewStore()}
	t.Cleanup(func() { _ = backend.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := New(backend, Config{
		FailureThreshold: threshold,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
	}, logger)
	return s, backend
}

func TestStore_PassesThroughWhenClosed(t *testing.T) {
	s, backend := newBreaker(t, 3)
	ctx := context.Background()
	userID := uuid.New()

	tk, err := task.NewTask(userID, "Task")
	require.NoError(t, err)
	require.NoError(t, s.Create(ctx, userID, tk))
	require.NoError(t, s.Delete(ctx, tk.ID()))
	assert.Equal(t, 1, backend.calls)
}

func TestStore_TripsAfterConsecutiveFailures(t *testing.T) {
	s, backend := newBreaker(t, 2)
	ctx := context.Background()
	backend.err = errBackend

	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), errBackend)
	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), errBackend)

	// Open now: calls are rejected without reaching the backend.
	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), ErrUnavailable)
	assert.Equal(t, 2, backend.calls)
}

func TestStore_DomainOutcomesDoNotTrip(t *testing.T) {
	s, backend := newBreaker(t, 2)
	ctx := context.Background()

	// Not-found results are domain answers, not backend failures;
	// they must never open the breaker.
	for i := 0; i < 5; i++ {
		_, err := s.GetSettings(ctx, uuid.New())
		assert.ErrorIs(t, err, settings.ErrNotFound)

		err = s.Update(ctx, uuid.New(), task.Patch{UpdatedAt: time.Now()})
		assert.ErrorIs(t, err, task.ErrTaskNotFound)
	}

	// The breaker is still closed, so a real failure reaches the
	// backend instead of being shed.
	backend.err = errBackend
	assert.ErrorIs(t, s.Delete(ctx, uuid.New()), errBackend)
	assert.Equal(t, 1, backend.calls)
}

func TestStore_SettingsWriteThrough(t *testing.T) {
	s, _ := newBreaker(t, 3)
	ctx := context.Background()
	userID := uuid.New()

	in := settings.Settings{DefaultView: "today", Theme: "dark", StartOfWeek: 1}
	require.NoError(t, s.PutSettings(ctx, userID, &in))

	got, err := s.GetSettings(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, in, *got)
}
