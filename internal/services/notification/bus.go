// Package notification fans committed order events out to every connected
// kitchen display. Delivery is best effort: nothing is persisted or replayed.
package notification

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
)

var (
	ErrBusClosed        = errors.New("notification bus is closed")
	ErrDuplicateID      = errors.New("subscriber id already registered")
	ErrSubscriberBusy   = errors.New("subscriber queue is full")
	ErrSubscriberClosed = errors.New("subscriber is closed")
)

// Subscriber receives broadcast events. Send must not block.
type Subscriber interface {
	ID() string
	Send(event models.Event) error
	Close()
}

// Stats counts deliveries since the bus was created
type Stats struct {
	Subscribers int   `json:"subscribers"`
	Delivered   int64 `json:"delivered"`
	Dropped     int64 `json:"dropped"`
}

// Bus holds the set of connected subscribers
type Bus struct {
	mu          sync.RWMutex
	subscribers map[string]Subscriber
	closed      bool

	// broadcastMu serializes broadcasts so every subscriber sees events in
	// the same order the bus emitted them.
	broadcastMu sync.Mutex

	delivered atomic.Int64
	dropped   atomic.Int64

	logger *logger.Logger
}

func NewBus(log *logger.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]Subscriber),
		logger:      log,
	}
}

// Subscribe registers s. It receives only events broadcast after this call returns.
func (b *Bus) Subscribe(s Subscriber) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBusClosed
	}
	if _, exists := b.subscribers[s.ID()]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, s.ID())
	}

	b.subscribers[s.ID()] = s
	b.logger.Debug("subscriber_joined", "Display subscriber connected", "", map[string]interface{}{
		"subscriber_id": s.ID(),
		"subscribers":   len(b.subscribers),
	})
	return nil
}

// Unsubscribe removes the subscriber with the given id. It does not close it.
func (b *Bus) Unsubscribe(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.subscribers[id]; !exists {
		return false
	}
	delete(b.subscribers, id)

	b.logger.Debug("subscriber_left", "Display subscriber disconnected", "", map[string]interface{}{
		"subscriber_id": id,
		"subscribers":   len(b.subscribers),
	})
	return true
}

// Broadcast hands event to every subscriber registered at the moment of the
// call and returns how many accepted it. A subscriber that fails is logged
// and skipped; it never affects the others or the caller.
func (b *Bus) Broadcast(event models.Event) int {
	b.broadcastMu.Lock()
	defer b.broadcastMu.Unlock()

	targets := b.snapshot()

	accepted := 0
	for _, s := range targets {
		if err := s.Send(event); err != nil {
			b.dropped.Add(1)
			deliveryErr := &models.DeliveryError{SubscriberID: s.ID(), Err: err}
			b.logger.Error("notification_dropped", "Failed to deliver event to subscriber", "", deliveryErr, map[string]interface{}{
				"event":         event.Name,
				"subscriber_id": s.ID(),
			})
			continue
		}
		accepted++
	}
	b.delivered.Add(int64(accepted))

	b.logger.Debug("event_broadcast", fmt.Sprintf("Broadcast %s", event.Name), "", map[string]interface{}{
		"event":       event.Name,
		"subscribers": len(targets),
		"accepted":    accepted,
	})
	return accepted
}

func (b *Bus) snapshot() []Subscriber {
	b.mu.RLock()
	defer b.mu.RUnlock()

	targets := make([]Subscriber, 0, len(b.subscribers))
	for _, s := range b.subscribers {
		targets = append(targets, s)
	}
	return targets
}

// Len returns the number of registered subscribers
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// SubscriberIDs returns the registered ids in sorted order
func (b *Bus) SubscriberIDs() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	ids := make([]string, 0, len(b.subscribers))
	for id := range b.subscribers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *Bus) Stats() Stats {
	return Stats{
		Subscribers: b.Len(),
		Delivered:   b.delivered.Load(),
		Dropped:     b.dropped.Load(),
	}
}

// Close closes and removes every subscriber. Later Subscribe calls fail.
func (b *Bus) Close() {
	b.mu.Lock()
	subscribers := b.subscribers
	b.subscribers = make(map[string]Subscriber)
	b.closed = true
	b.mu.Unlock()

	for _, s := range subscribers {
		s.Close()
	}
}
