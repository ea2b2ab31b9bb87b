package server

import (
	"sync"

	"github.com/jonathan/interview-simulator/internal/types"
)

// subscriberBuffer bounds a subscriber's pending events. A subscriber that
// falls this far behind is dropped rather than blocking the session.
const subscriberBuffer = 64

// Hub fans session events out to stream subscribers. Events are also kept
// per session so a client that connects mid-interview receives the full
// history first.
type Hub struct {
	mu      sync.Mutex
	history map[string][]types.Event
	subs    map[string]map[chan types.Event]struct{}
	closed  map[string]bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		history: make(map[string][]types.Event),
		subs:    make(map[string]map[chan types.Event]struct{}),
		closed:  make(map[string]bool),
	}
}

// Publish records an event and delivers it to the session's subscribers.
// Safe to use as a session.EventSink.
func (h *Hub) Publish(e types.Event) {
	h.mu.Lock()
	h.history[e.SessionID] = append(h.history[e.SessionID], e)
	for ch := range h.subs[e.SessionID] {
		select {
		case ch <- e:
		default:
			// slow subscriber: drop it
			delete(h.subs[e.SessionID], ch)
			close(ch)
		}
	}
	terminal := e.Type == types.EventSessionComplete || e.Type == types.EventSessionEnded
	if terminal {
		h.closed[e.SessionID] = true
		for ch := range h.subs[e.SessionID] {
			close(ch)
		}
		delete(h.subs, e.SessionID)
	}
	h.mu.Unlock()
}

// Subscribe returns the session's event history so far and a channel of
// subsequent events. The channel is closed when the session reaches a
// terminal event or the subscriber is cancelled. When the session has
// already finished, the returned channel is nil.
func (h *Hub) Subscribe(sessionID string) ([]types.Event, chan types.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	history := make([]types.Event, len(h.history[sessionID]))
	copy(history, h.history[sessionID])

	if h.closed[sessionID] {
		return history, nil
	}

	ch := make(chan types.Event, subscriberBuffer)
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan types.Event]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	return history, ch
}

// historyFor returns the events recorded for a session so far.
func (h *Hub) historyFor(sessionID string) []types.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	history := make([]types.Event, len(h.history[sessionID]))
	copy(history, h.history[sessionID])
	return history
}

// Unsubscribe removes a live subscription. Closing is the hub's job; the
// caller just stops reading.
func (h *Hub) Unsubscribe(sessionID string, ch chan types.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if set, ok := h.subs[sessionID]; ok {
		if _, ok := set[ch]; ok {
			delete(set, ch)
			close(ch)
		}
	}
}

// Forget drops a finished session's history.
func (h *Hub) Forget(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.history, sessionID)
	delete(h.closed, sessionID)
	if set, ok := h.subs[sessionID]; ok {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, sessionID)
	}
}
