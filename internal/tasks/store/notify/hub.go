// Package notify carries change notifications from store backends to
// their subscribers: an in-process hub for single-process fan-out and
// a broker-backed broadcaster for cross-process sync.
package notify

import (
	"sync"

	"github.com/felixgeelhaar/taskdeck/internal/tasks/domain/task"
	"github.com/google/uuid"
)

// Hub fans out task-list snapshots to per-user subscribers. Each
// subscriber channel holds at most the latest snapshot: when a slow
// consumer has not drained the previous one, it is replaced. Snapshots
// are full state, so intermediate ones can always be skipped.
type Hub struct {
	mu     sync.Mutex
	nextID int
	subs   map[uuid.UUID]map[int]*HubSubscription
	closed bool
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[uuid.UUID]map[int]*HubSubscription)}
}

// Subscribe registers a new subscriber for the user's change feed.
func (h *Hub) Subscribe(userID uuid.UUID) *HubSubscription {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	sub := &HubSubscription{
		hub:    h,
		userID: userID,
		id:     h.nextID,
		ch:     make(chan []*task.Task, 1),
	}
	if h.closed {
		close(sub.ch)
		sub.detached = true
		return sub
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]*HubSubscription)
	}
	h.subs[userID][sub.id] = sub
	return sub
}

// Publish delivers a snapshot to every subscriber of the user.
func (h *Hub) Publish(userID uuid.UUID, snapshot []*task.Task) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, sub := range h.subs[userID] {
		sub.send(snapshot)
	}
}

// Close terminates every subscription. Subsequent Subscribe calls
// return already-closed feeds.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for _, userSubs := range h.subs {
		for _, sub := range userSubs {
			if !sub.detached {
				sub.detached = true
				close(sub.ch)
			}
		}
	}
	h.subs = make(map[uuid.UUID]map[int]*HubSubscription)
}

// HubSubscription implements task.Subscription over a hub channel.
type HubSubscription struct {
	hub      *Hub
	userID   uuid.UUID
	id       int
	ch       chan []*task.Task
	detached bool // guarded by hub.mu
}

// Changes returns the snapshot channel.
func (s *HubSubscription) Changes() <-chan []*task.Task {
	return s.ch
}

// Push delivers a snapshot to this subscriber only. Stores use it for
// the initial snapshot right after Subscribe.
func (s *HubSubscription) Push(snapshot []*task.Task) {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.detached {
		return
	}
	s.send(snapshot)
}

// send assumes hub.mu is held. Latest-value semantics: replace an
// undrained snapshot instead of blocking.
func (s *HubSubscription) send(snapshot []*task.Task) {
	select {
	case s.ch <- snapshot:
	default:
		select {
		case <-s.ch:
		default:
		}
		select {
		case s.ch <- snapshot:
		default:
		}
	}
}

// Close deregisters the subscription and closes its channel. Safe to
// call more than once.
func (s *HubSubscription) Close() error {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if s.detached {
		return nil
	}
	s.detached = true
	if userSubs := s.hub.subs[s.userID]; userSubs != nil {
		delete(userSubs, s.id)
		if len(userSubs) == 0 {
			delete(s.hub.subs, s.userID)
		}
	}
	close(s.ch)
	return nil
}
