package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending    OrderStatus = "PENDING"
	StatusInProgress OrderStatus = "IN_PROGRESS"
	StatusReady      OrderStatus = "READY"
	StatusCompleted  OrderStatus = "COMPLETED"
	StatusCancelled  OrderStatus = "CANCELLED"
)

// transitions lists, for each status, the statuses it may move to.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:    {StatusInProgress, StatusReady, StatusCompleted, StatusCancelled},
	StatusInProgress: {StatusReady, StatusCompleted, StatusCancelled},
	StatusReady:      {StatusCompleted, StatusCancelled},
	StatusCompleted:  nil,
	StatusCancelled:  nil,
}

func (s OrderStatus) String() string { return string(s) }

func (s OrderStatus) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

// IsTerminal reports whether no further transition is allowed from s
func (s OrderStatus) IsTerminal() bool {
	return s.IsValid() && len(transitions[s]) == 0
}

// CanTransitionTo reports whether s -> next is in the transition table
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// SourcesFor returns every status from which next is reachable in one step.
func SourcesFor(next OrderStatus) []OrderStatus {
	var sources []OrderStatus
	for _, from := range AllStatuses() {
		if from.CanTransitionTo(next) {
			sources = append(sources, from)
		}
	}
	return sources
}

// AllStatuses returns the enumeration in lifecycle order
func AllStatuses() []OrderStatus {
	return []OrderStatus{StatusPending, StatusInProgress, StatusReady, StatusCompleted, StatusCancelled}
}

// ParseOrderStatus accepts any casing and surrounding whitespace
func ParseOrderStatus(raw string) (OrderStatus, error) {
	status := OrderStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if !status.IsValid() {
		return "", &ValidationError{
			Kind:    KindInvalidStatus,
			Field:   "status",
			Message: fmt.Sprintf("unknown status %q", raw),
		}
	}
	return status, nil
}

// MenuItem is a catalog entry. Its price is the only price the service trusts.
type MenuItem struct {
	ItemID      int64
	Name        string
	Description string
	Price       decimal.Decimal
	IsAvailable bool
}

// OrderLine is one item/quantity/note entry belonging to exactly one order
type OrderLine struct {
	ID       int64
	OrderID  int64
	ItemID   int64
	ItemName string
	Quantity int
	Notes    string
	Subtotal decimal.Decimal
}

// Order represents a committed order with its lines
type Order struct {
	ID          int64
	TableNumber int
	Status      OrderStatus
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Lines       []OrderLine
}

// LinesTotal sums the subtotals of o's lines
func (o *Order) LinesTotal() decimal.Decimal {
	total := decimal.Zero
	for _, line := range o.Lines {
		total = total.Add(line.Subtotal)
	}
	return total
}

// CreateOrderItem is one requested line. Any price sent by the client is
// ignored because the struct has nowhere to put it.
type CreateOrderItem struct {
	ItemID   int64  `json:"item_id"`
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes,omitempty"`
}

// CreateOrderRequest represents the request to create a new order
type CreateOrderRequest struct {
	TableNumber int               `json:"table_number"`
	Items       []CreateOrderItem `json:"items"`
}

// CreateOrderResponse represents the response after creating an order
type CreateOrderResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message"`
	OrderID     int64       `json:"order_id"`
	TotalAmount json.Number `json:"total_amount"`
}

// UpdateStatusRequest represents a status change sent by a kitchen display
type UpdateStatusRequest struct {
	OrderID int64  `json:"order_id"`
	Status  string `json:"status"`
}

// PricedLine is a validated request line with its catalog-derived subtotal
type PricedLine struct {
	ItemID    int64
	ItemName  string
	Quantity  int
	Notes     string
	UnitPrice decimal.Decimal
	Subtotal  decimal.Decimal
}

// PricedOrder is the output of validation: what will be written
type PricedOrder struct {
	TableNumber int
	Lines       []PricedLine
	Total       decimal.Decimal
}

// Amount renders a monetary value as a JSON number with two decimals
func Amount(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
