package realtime

import (
	"sync"
	"time"
)

type Topic string

const (
	TopicEventCreated  Topic = "EVENT_CREATED"
	TopicEventApproved Topic = "EVENT_APPROVED"
	TopicRSVPCreated   Topic = "RSVP_CREATED"
)

// Event is a state transition announcement. Payload is the domain object
// that transitioned.
type Event struct {
	Topic   Topic       `json:"type"`
	Payload interface{} `json:"data"`
	At      time.Time   `json:"timestamp"`
}

// Hub is the in-process publish hook for event lifecycle transitions.
// The workflow publishes; delivery layers (WebSocket, SSE) subscribe.
// Publishing never blocks: a subscriber that falls behind loses events.
type Hub struct {
	mu   sync.RWMutex
	subs map[int]chan Event
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan Event)}
}

func (h *Hub) Publish(topic Topic, payload interface{}) {
	event := Event{Topic: topic, Payload: payload, At: time.Now().UTC()}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a buffered subscription. The returned cancel function
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Event, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// SubscriberCount reports active subscriptions.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}
