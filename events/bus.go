// Package events is the change-propagation bus between the mutating
// services and everything that reacts to them: the WebSocket hub, the
// notification sender and the Redis bridge. Delivery is at-least-once and
// unordered across topics; payloads are hints to refetch, never the
// authoritative state.
package events

import (
	"context"
	"log"
	"sync"

	"github.com/google/uuid"
)

type Topic string

const (
	TopicAvailabilityChanged  Topic = "availability:changed"
	TopicRequestStatusChanged Topic = "request:statusChanged"
	TopicMessageNew           Topic = "message:new"
	TopicBookingCreated       Topic = "booking:created"
)

// Event is a change notification. Audience limits WebSocket fan-out to the
// listed users; an empty audience means broadcast. Origin identifies the
// process that first published the event so the Redis bridge can break
// republish loops; local publishers leave it empty.
type Event struct {
	Topic    Topic             `json:"topic"`
	Audience []uuid.UUID       `json:"audience,omitempty"`
	Payload  map[string]string `json:"payload,omitempty"`
	Origin   string            `json:"origin,omitempty"`
}

// Bus is injected into every mutating service. Publish must be called only
// after the underlying state change has committed.
type Bus interface {
	Publish(ctx context.Context, ev Event)
	// Subscribe registers a listener for the given topics (all topics when
	// none are named). The cancel func deregisters the listener and closes
	// the channel; callers must invoke it when done.
	Subscribe(topics ...Topic) (<-chan Event, func())
}

const subscriberBuffer = 64

type subscriber struct {
	topics map[Topic]bool // empty = all topics
	ch     chan Event
}

func (s *subscriber) wants(t Topic) bool {
	return len(s.topics) == 0 || s.topics[t]
}

// MemoryBus is the in-process Bus. Publish never blocks: a subscriber whose
// buffer is full loses the event, which is safe because consumers refetch
// state rather than replay payloads.
type MemoryBus struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

func NewMemoryBus() *MemoryBus {
	return &MemoryBus{subs: make(map[int]*subscriber)}
}

func (b *MemoryBus) Publish(_ context.Context, ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if !sub.wants(ev.Topic) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			log.Printf("⚠️  events: dropping %s for slow subscriber", ev.Topic)
		}
	}
}

func (b *MemoryBus) Subscribe(topics ...Topic) (<-chan Event, func()) {
	sub := &subscriber{ch: make(chan Event, subscriberBuffer)}
	if len(topics) > 0 {
		sub.topics = make(map[Topic]bool, len(topics))
		for _, t := range topics {
			sub.topics[t] = true
		}
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
			// Safe to close now: Publish holds the lock while sending, so no
			// send can race the close once the subscriber is deregistered.
			close(sub.ch)
		})
	}
	return sub.ch, cancel
}
