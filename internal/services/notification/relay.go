package notification

import (
	"context"

	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
)

const relayID = "amqp-relay"

// EventPublisher sends one event to the message broker
type EventPublisher interface {
	Publish(ctx context.Context, message interface{}) error
}

// Relay is a bus subscriber that mirrors every event to the broker so
// out-of-process displays can follow along. Publishing happens on Run's
// goroutine; the bus only ever touches the queue.
type Relay struct {
	bus       *Bus
	queue     *Queue
	publisher EventPublisher
	logger    *logger.Logger
}

func NewRelay(bus *Bus, publisher EventPublisher, buffer int, log *logger.Logger) *Relay {
	return &Relay{
		bus:       bus,
		queue:     NewQueue(relayID, buffer),
		publisher: publisher,
		logger:    log,
	}
}

func (r *Relay) ID() string { return r.queue.ID() }

func (r *Relay) Send(event models.Event) error { return r.queue.Send(event) }

func (r *Relay) Close() { r.queue.Close() }

// Run publishes queued events until ctx is done or the relay is closed.
// A failed publish is logged and the event is dropped. On return the relay
// is off the bus and its queue is closed.
func (r *Relay) Run(ctx context.Context) error {
	r.logger.Info("relay_started", "Relaying display events to broker", "", nil)
	defer func() {
		r.bus.Unsubscribe(r.ID())
		r.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-r.queue.Events():
			if !ok {
				r.logger.Info("relay_stopped", "Relay closed", "", nil)
				return nil
			}

			if err := r.publisher.Publish(ctx, event); err != nil {
				r.logger.Error("relay_publish_failed", "Failed to relay event to broker", "", err, map[string]interface{}{
					"event": event.Name,
				})
			}
		}
	}
}
