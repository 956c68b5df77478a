package notification

import (
	"sync"

	"restaurant-kds/internal/models"
)

// Queue is a Subscriber backed by a bounded channel. Send never blocks; a
// full queue drops the event for this subscriber only.
type Queue struct {
	id string
	ch chan models.Event

	mu     sync.RWMutex
	closed bool
}

func NewQueue(id string, size int) *Queue {
	return &Queue{id: id, ch: make(chan models.Event, size)}
}

func (q *Queue) ID() string { return q.id }

func (q *Queue) Send(event models.Event) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrSubscriberClosed
	}

	select {
	case q.ch <- event:
		return nil
	default:
		return ErrSubscriberBusy
	}
}

// Events is closed once the queue is closed and drained
func (q *Queue) Events() <-chan models.Event {
	return q.ch
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.ch)
	}
}
