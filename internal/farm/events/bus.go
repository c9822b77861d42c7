// Package events is the in-process change feed the workflow layer publishes
// to and UI consumers (SSE clients, pollers) subscribe to.
package events

import (
	"encoding/json"
	"sync"
	"time"
)

// Kind identifies what happened.
type Kind string

const (
	KindLogSaved        Kind = "log_saved"
	KindItemsGenerated  Kind = "items_generated"
	KindItemsUpdated    Kind = "items_updated"
	KindObservationDone Kind = "observation_recorded"
	KindDeliveryCreated Kind = "delivery_created"
	KindDeliveryMoved   Kind = "delivery_moved"
	KindAlertRaised     Kind = "alert_raised"
	KindHarvestRecorded Kind = "harvest_recorded"
)

// Event is a single farm event. Payload must be JSON-serializable.
type Event struct {
	Kind    Kind      `json:"event"`
	BatchID string    `json:"batch_id,omitempty"`
	Payload any       `json:"payload,omitempty"`
	At      time.Time `json:"at"`
}

// Data renders the event body for SSE transport.
func (e Event) Data() string {
	b, err := json.Marshal(e)
	if err != nil {
		return "{}"
	}
	return string(b)
}

// Subscriber is a registered consumer.
type Subscriber struct {
	ID     string
	Events chan Event
}

// Bus fans events out to all subscribers. Slow consumers are skipped rather
// than blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]*Subscriber
}

func NewBus() *Bus {
	return &Bus{subs: make(map[string]*Subscriber)}
}

// Subscribe registers a consumer with a buffered channel.
func (b *Bus) Subscribe(id string) *Subscriber {
	sub := &Subscriber{ID: id, Events: make(chan Event, 32)}
	b.mu.Lock()
	b.subs[id] = sub
	b.mu.Unlock()
	return sub
}

// Unsubscribe removes a consumer and closes its channel.
func (b *Bus) Unsubscribe(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subs[id]; ok {
		close(sub.Events)
		delete(b.subs, id)
	}
}

// Publish sends the event to every subscriber without blocking.
func (b *Bus) Publish(event Event) {
	if event.At.IsZero() {
		event.At = time.Now()
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		select {
		case sub.Events <- event:
		default:
			// buffer full, drop for this subscriber
		}
	}
}

// SubscriberCount is used by the SSE handler for diagnostics.
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
