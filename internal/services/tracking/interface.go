package tracking

import (
	"context"

	"restaurant-kds/internal/models"
)

// OrderReader loads committed orders with their lines
type OrderReader interface {
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListByStatus(ctx context.Context, statuses []models.OrderStatus, limit int) ([]*models.Order, error)
}
