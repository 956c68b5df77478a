package tracking

import (
	"context"
	"fmt"

	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/models"
)

// activeLimit caps the bootstrap list a display loads on connect
const activeLimit = 200

// Service provides tracking functionality
type Service struct {
	orders OrderReader
	logger *logger.Logger
}

// NewService creates a new tracking service
func NewService(orders OrderReader, log *logger.Logger) *Service {
	return &Service{
		orders: orders,
		logger: log,
	}
}

// GetOrder returns one order in the same shape a new_order event carries
func (s *Service) GetOrder(ctx context.Context, orderID int64) (*models.OrderMessage, error) {
	order, err := s.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to load order %d: %w", orderID, err)
	}
	return models.NewOrderMessage(order), nil
}

// ListActive returns every order that is not yet COMPLETED or CANCELLED,
// oldest first. A display calls this after connecting to catch up.
func (s *Service) ListActive(ctx context.Context) ([]*models.OrderMessage, error) {
	var active []models.OrderStatus
	for _, status := range models.AllStatuses() {
		if !status.IsTerminal() {
			active = append(active, status)
		}
	}

	orders, err := s.orders.ListByStatus(ctx, active, activeLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list active orders: %w", err)
	}

	if len(orders) == activeLimit {
		s.logger.Info("active_orders_truncated", "Active order list hit its limit", logger.RequestID(ctx), map[string]interface{}{
			"limit": activeLimit,
		})
	}

	messages := make([]*models.OrderMessage, 0, len(orders))
	for _, order := range orders {
		messages = append(messages, models.NewOrderMessage(order))
	}
	return messages, nil
}
