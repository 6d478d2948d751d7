package app

import (
	"sync"

	"trivia-admin-service/internal/domain"
)

// Broadcaster publishes events to all connected observers. Publishing is
// fire-and-forget: it never blocks the caller and delivery failures are not
// surfaced to the mutating request.
type Broadcaster interface {
	Publish(event domain.Event)
}

// Hub fans events out to subscribed observers. It is constructed once at
// startup and handed to every component that publishes.
type Hub struct {
	mu          sync.Mutex
	subscribers map[chan domain.Event]struct{}
}

func NewHub() *Hub {
	return &Hub{subscribers: make(map[chan domain.Event]struct{})}
}

// Subscribe registers an observer. The caller must invoke the returned
// cancel function to avoid leaks.
func (h *Hub) Subscribe() (<-chan domain.Event, func()) {
	ch := make(chan domain.Event, 8)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every subscriber. A slow observer loses its
// oldest pending event rather than blocking the publisher.
func (h *Hub) Publish(event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers {
		select {
		case ch <- event:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- event
		}
	}
}

// NopBroadcaster discards every event; used where no observers exist.
type NopBroadcaster struct{}

func (NopBroadcaster) Publish(domain.Event) {}
