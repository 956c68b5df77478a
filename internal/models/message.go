package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventName is the name a display client dispatches on
type EventName string

const (
	EventNewOrder          EventName = "new_order"
	EventOrderStatusUpdate EventName = "order_status_update"
)

// Event is the envelope pushed to every display subscriber
type Event struct {
	Name EventName   `json:"event"`
	Data interface{} `json:"data"`
}

// RawEvent is an Event whose payload has not been decoded yet
type RawEvent struct {
	Name EventName       `json:"event"`
	Data json.RawMessage `json:"data"`
}

// OrderLineMessage is one line as shown on a kitchen display
type OrderLineMessage struct {
	ItemID   int64       `json:"item_id"`
	ItemName string      `json:"item_name"`
	Quantity int         `json:"quantity"`
	Notes    string      `json:"notes"`
	Subtotal json.Number `json:"subtotal"`
}

// OrderMessage is the hydrated order carried by new_order and returned by
// the tracking endpoints
type OrderMessage struct {
	OrderID     int64              `json:"order_id"`
	TableNumber int                `json:"table_number"`
	TotalAmount json.Number        `json:"total_amount"`
	Items       []OrderLineMessage `json:"items"`
	Status      OrderStatus        `json:"status"`
	OrderTime   time.Time          `json:"order_time"`
}

// StatusUpdateMessage represents a status update notification
type StatusUpdateMessage struct {
	OrderID        int64       `json:"order_id"`
	Status         OrderStatus `json:"status"`
	PreviousStatus OrderStatus `json:"previous_status,omitempty"`
	UpdatedAt      time.Time   `json:"updated_at"`
}

// NewOrderMessage builds the display view of a committed order
func NewOrderMessage(order *Order) *OrderMessage {
	items := make([]OrderLineMessage, 0, len(order.Lines))
	for _, line := range order.Lines {
		items = append(items, OrderLineMessage{
			ItemID:   line.ItemID,
			ItemName: line.ItemName,
			Quantity: line.Quantity,
			Notes:    line.Notes,
			Subtotal: Amount(line.Subtotal),
		})
	}

	return &OrderMessage{
		OrderID:     order.ID,
		TableNumber: order.TableNumber,
		TotalAmount: Amount(order.TotalAmount),
		Items:       items,
		Status:      order.Status,
		OrderTime:   order.CreatedAt.UTC(),
	}
}

// NewOrderCreatedEvent wraps a committed order as a new_order event
func NewOrderCreatedEvent(order *Order) Event {
	return Event{Name: EventNewOrder, Data: NewOrderMessage(order)}
}

// NewStatusChangedEvent wraps a status change as an order_status_update event
func NewStatusChangedEvent(orderID int64, previous, status OrderStatus, at time.Time) Event {
	return Event{
		Name: EventOrderStatusUpdate,
		Data: &StatusUpdateMessage{
			OrderID:        orderID,
			Status:         status,
			PreviousStatus: previous,
			UpdatedAt:      at.UTC(),
		},
	}
}

// DecodeEvent parses an envelope and its payload into the matching message type
func DecodeEvent(body []byte) (Event, error) {
	var raw RawEvent
	if err := json.Unmarshal(body, &raw); err != nil {
		return Event{}, fmt.Errorf("failed to parse event envelope: %w", err)
	}

	var data interface{}
	switch raw.Name {
	case EventNewOrder:
		data = &OrderMessage{}
	case EventOrderStatusUpdate:
		data = &StatusUpdateMessage{}
	default:
		return Event{}, fmt.Errorf("unknown event %q", raw.Name)
	}

	if err := json.Unmarshal(raw.Data, data); err != nil {
		return Event{}, fmt.Errorf("failed to parse %s payload: %w", raw.Name, err)
	}
	return Event{Name: raw.Name, Data: data}, nil
}
