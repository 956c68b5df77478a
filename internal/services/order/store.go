package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"restaurant-kds/internal/models"
)

// Tx is the unit of work handed to a transaction body. Everything done
// through it commits or rolls back together.
type Tx interface {
	ItemLookup
	InsertOrder(ctx context.Context, tableNumber int, status models.OrderStatus, total decimal.Decimal) (*models.Order, error)
	InsertLines(ctx context.Context, orderID int64, lines []models.PricedLine) error
	GetLines(ctx context.Context, orderID int64) ([]models.OrderLine, error)
}

// Store is the order store as seen by the order service
type Store interface {
	// InTx runs fn on one connection inside one transaction. The transaction
	// commits if fn returns nil and rolls back otherwise.
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error

	// UpdateStatus moves the order to next if its current status is one of
	// from, in a single statement. It returns the previous status.
	UpdateStatus(ctx context.Context, orderID int64, next models.OrderStatus, from []models.OrderStatus) (models.OrderStatus, time.Time, error)
}
