package order

import (
	"context"
	"fmt"

	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
)

// Broadcaster publishes committed events to connected displays and reports
// how many accepted them.
type Broadcaster interface {
	Broadcast(event models.Event) int
}

// Service records orders and applies status changes
type Service struct {
	txm    *TxManager
	store  Store
	bus    Broadcaster
	logger *logger.Logger
}

func NewService(store Store, bus Broadcaster, log *logger.Logger) *Service {
	return &Service{
		txm:    NewTxManager(store),
		store:  store,
		bus:    bus,
		logger: log,
	}
}

// CreateOrder validates, prices and stores req, then announces the new order.
// The event goes out only after commit.
func (s *Service) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	requestID := logger.RequestID(ctx)

	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	order, err := s.txm.Record(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to record order: %w", err)
	}

	s.logger.Info("order_created", fmt.Sprintf("Order %d recorded", order.ID), requestID, map[string]interface{}{
		"order_id":     order.ID,
		"table_number": order.TableNumber,
		"total_amount": order.TotalAmount.StringFixed(2),
		"lines":        len(order.Lines),
	})

	delivered := s.bus.Broadcast(models.NewOrderCreatedEvent(order))
	s.logger.Debug("order_broadcast", "New order sent to displays", requestID, map[string]interface{}{
		"order_id":  order.ID,
		"delivered": delivered,
	})

	return order, nil
}

// UpdateStatus moves an order to status if the transition table allows it
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, status string) (*models.StatusUpdateMessage, error) {
	requestID := logger.RequestID(ctx)

	if orderID <= 0 {
		return nil, &models.ValidationError{
			Kind:    models.KindMalformed,
			Field:   "order_id",
			Message: "order id must be a positive integer",
		}
	}

	next, err := models.ParseOrderStatus(status)
	if err != nil {
		return nil, err
	}

	previous, updatedAt, err := s.store.UpdateStatus(ctx, orderID, next, models.SourcesFor(next))
	if err != nil {
		return nil, fmt.Errorf("failed to update status of order %d: %w", orderID, err)
	}

	s.logger.Info("status_updated", fmt.Sprintf("Order %d moved to %s", orderID, next), requestID, map[string]interface{}{
		"order_id":        orderID,
		"previous_status": previous,
		"status":          next,
	})

	event := models.NewStatusChangedEvent(orderID, previous, next, updatedAt)
	delivered := s.bus.Broadcast(event)
	s.logger.Debug("status_broadcast", "Status change sent to displays", requestID, map[string]interface{}{
		"order_id":  orderID,
		"delivered": delivered,
	})

	return event.Data.(*models.StatusUpdateMessage), nil
}
