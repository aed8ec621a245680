package notify

import (
	"sync"

	"clinichat/pkg/logger"
)

// Event signals that some stored entry changed. Key identifies the touched
// namespace (e.g. "records:staff", "conv:dr-1"); consumers must not read
// anything else into it and should rebuild from the store on any event.
type Event struct {
	Key string `json:"key"`
	// Remote marks events injected by the AMQP bridge so they are not
	// forwarded back out again.
	Remote bool `json:"-"`
}

// Hub fans out change events to local subscribers. Delivery is best-effort
// and unordered: a subscriber with a full buffer misses the event, which is
// safe because handling is an idempotent full rebuild.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: map[int]chan Event{}}
}

// Subscribe registers a listener. The returned cancel func must be called
// to release the subscription.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan Event, 16)
	h.subs[id] = ch
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if c, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(c)
		}
	}
}

// Publish delivers ev to every subscriber without blocking.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			logger.Debug("notify_subscriber_full", "key", ev.Key)
		}
	}
}
