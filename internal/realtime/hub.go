// Package realtime fans order events out to connected dashboards.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/ariefcatur/go-juice-pos/internal/kafka"
	"github.com/ariefcatur/go-juice-pos/internal/orders"
	kafkago "github.com/segmentio/kafka-go"
)

const DefaultBuffer = 32

// Event is what subscribers receive.
type Event struct {
	ID         string          `json:"id"`
	Type       string          `json:"type"`
	OrderID    string          `json:"order_id"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Hub delivers each published event to every subscriber. Delivery never
// blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
	buffer int
	log    *slog.Logger

	dropped int64
}

func NewHub(buffer int, log *slog.Logger) *Hub {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if log == nil {
		log = slog.Default()
	}
	return &Hub{subs: map[int]chan Event{}, buffer: buffer, log: log.With("component", "realtime-hub")}
}

// Subscribe returns a channel of events and a cancel func that closes it.
// On a closed hub the channel is already closed.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.buffer)
	if h.closed {
		close(ch)
		return ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if c, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(c)
			}
		})
	}
}

func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- ev:
		default:
			h.dropped++
		}
	}
}

// Dropped counts deliveries skipped because a subscriber was full.
func (h *Hub) Dropped() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.dropped
}

func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close ends every subscription.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}

// HandleMessage is a kafka.Handler feeding order events into the hub.
// Undecodable messages are logged and skipped so they do not block the
// partition.
func (h *Hub) HandleMessage(_ context.Context, m kafkago.Message) error {
	if t := kafka.Header(m.Headers, orders.HeaderEventType); t != "" && !known(t) {
		return nil
	}

	var env orders.Envelope
	if err := kafka.UnmarshalEnvelope(m.Value, &env); err != nil {
		h.log.Warn("skip message", "topic", m.Topic, "offset", m.Offset, "error", err)
		return nil
	}

	if !known(env.EventType) {
		return nil
	}

	h.Publish(Event{
		ID:         env.EventID,
		Type:       env.EventType,
		OrderID:    env.CorrelationID,
		OccurredAt: env.OccurredAt,
		Payload:    env.Payload,
	})
	return nil
}

func known(eventType string) bool {
	return eventType == orders.EventOrderCreated || eventType == orders.EventOrderStatusChanged
}
