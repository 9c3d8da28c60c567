package notify

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
)

func snapshot(t *testing.T, titles ...string) []*task.Task {
	t.Helper()
	userID := uuid.New()
	out := make([]*task.Task, 0, len(titles))
	for _, title := range titles {
		tk, err := task.NewTask(userID, title)
		require.NoError(t, err)
		out = append(out, tk)
	}
	return out
}

func TestHub_PublishReachesEverySubscriber(t *testing.T) {
	h := NewHub()
	defer h.Close()
	userID := uuid.New()

	a := h.Subscribe(userID)
	b := h.Subscribe(userID)

	h.Publish(userID, snapshot(t, "one"))

	for _, sub := range []*HubSubscription{a, b} {
		got := <-sub.Changes()
		require.Len(t, got, 1)
		assert.Equal(t, "one", got[0].Title())
	}
}

func TestHub_PublishScopedToUser(t *testing.T) {
	h := NewHub()
	defer h.Close()

	alice := h.Subscribe(uuid.New())
	bobID := uuid.New()
	bob := h.Subscribe(bobID)

	h.Publish(bobID, snapshot(t, "bob's"))

	select {
	case got := <-alice.Changes():
		t.Fatalf("snapshot leaked across users: %v", got)
	default:
	}
	assert.Len(t, <-bob.Changes(), 1)
}

func TestHubSubscription_LatestValueWins(t *testing.T) {
	h := NewHub()
	defer h.Close()
	userID := uuid.New()
	sub := h.Subscribe(userID)

	// Three publishes with no reader in between: the undrained
	// snapshot is replaced, never queued.
	h.Publish(userID, snapshot(t, "first"))
	h.Publish(userID, snapshot(t, "first", "second"))
	h.Publish(userID, snapshot(t, "first", "second", "third"))

	got := <-sub.Changes()
	assert.Len(t, got, 3)

	select {
	case stale := <-sub.Changes():
		t.Fatalf("stale snapshot queued: %v", stale)
	default:
	}
}

func TestHubSubscription_Push(t *testing.T) {
	h := NewHub()
	defer h.Close()
	userID := uuid.New()

	a := h.Subscribe(userID)
	b := h.Subscribe(userID)

	a.Push(snapshot(t, "only for a"))

	assert.Len(t, <-a.Changes(), 1)
	select {
	case <-b.Changes():
		t.Fatal("push must target a single subscriber")
	default:
	}
}

func TestHubSubscription_Close(t *testing.T) {
	h := NewHub()
	defer h.Close()
	userID := uuid.New()
	sub := h.Subscribe(userID)

	require.NoError(t, sub.Close())
	require.NoError(t, sub.Close(), "closing twice is safe")

	_, open := <-sub.Changes()
	assert.False(t, open)

	// Publishing after close must not panic or deliver.
	h.Publish(userID, snapshot(t, "late"))
}

func TestHub_Close(t *testing.T) {
	h := NewHub()
	userID := uuid.New()
	sub := h.Subscribe(userID)

	h.Close()
	h.Close()

	_, open := <-sub.Changes()
	assert.False(t, open)

	// New subscriptions on a closed hub come back already closed.
	late := h.Subscribe(userID)
	_, open = <-late.Changes()
	assert.False(t, open)

	require.NoError(t, sub.Close())
}
