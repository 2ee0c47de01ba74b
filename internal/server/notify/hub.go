// Package notify fans new direct messages out to open subscriber streams.
// Delivery is best effort: a subscriber that falls behind loses messages and
// catches up by fetching the thread.
package notify

import (
	"sync"

	"github.com/ISTE-SCTCE/Admin/internal/server/models"
)

const defaultBuffer = 16

type subscriber struct {
	ch chan models.Message
}

// Hub is a per-user publish/subscribe registry. The zero value is not usable;
// call NewHub.
type Hub struct {
	mu     sync.Mutex
	subs   map[int64]map[*subscriber]struct{}
	buffer int
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[*subscriber]struct{}), buffer: defaultBuffer}
}

// Subscribe registers interest in messages addressed to userID. The returned
// cancel func unregisters and closes the channel; it is safe to call twice.
func (h *Hub) Subscribe(userID int64) (<-chan models.Message, func()) {
	s := &subscriber{ch: make(chan models.Message, h.buffer)}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(s.ch)
		return s.ch, func() {}
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[userID]; ok {
				if _, ok := set[s]; ok {
					delete(set, s)
					close(s.ch)
				}
				if len(set) == 0 {
					delete(h.subs, userID)
				}
			}
		})
	}

	return s.ch, cancel
}

// Publish delivers msg to every subscriber of its recipient without blocking.
// It returns how many subscribers received it.
func (h *Hub) Publish(msg models.Message) int {
	to, ok := msg.To.UserID()
	if !ok {
		return 0
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for s := range h.subs[to] {
		select {
		case s.ch <- msg:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers returns the number of open subscriptions for userID.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[userID])
}

// Close ends every subscription. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for s := range set {
			close(s.ch)
		}
		delete(h.subs, id)
	}
}
