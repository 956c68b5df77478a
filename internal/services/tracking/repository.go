package tracking

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"restaurant-kds/internal/database"
	"restaurant-kds/internal/models"
	"restaurant-kds/internal/services/order"
)

// Querier is satisfied by *database.DB and pgx.Tx
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repository reads orders for display bootstrap and lookup
type Repository struct {
	q Querier
}

func NewRepository(q Querier) *Repository {
	return &Repository{q: q}
}

// GetOrder returns the order with its lines, or a NotFoundError
func (r *Repository) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := scanOrder(r.q.QueryRow(ctx, database.GetOrderByIDSQL, orderID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, &models.NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return nil, &models.StorageError{Op: "get_order", Err: err}
	}

	rows, err := r.q.Query(ctx, database.GetOrderLinesSQL, orderID)
	if err != nil {
		return nil, &models.StorageError{Op: "get_order_lines", Err: err}
	}
	o.Lines, err = pgx.CollectRows(rows, order.ScanOrderLine)
	if err != nil {
		return nil, &models.StorageError{Op: "get_order_lines", Err: err}
	}
	return o, nil
}

// ListByStatus returns up to limit orders in any of statuses, oldest first,
// with lines loaded in one extra query.
func (r *Repository) ListByStatus(ctx context.Context, statuses []models.OrderStatus, limit int) ([]*models.Order, error) {
	names := make([]string, 0, len(statuses))
	for _, s := range statuses {
		names = append(names, string(s))
	}

	rows, err := r.q.Query(ctx, database.ListOrdersByStatusSQL, names, limit)
	if err != nil {
		return nil, &models.StorageError{Op: "list_orders", Err: err}
	}
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*models.Order, error) {
		return scanOrder(row)
	})
	if err != nil {
		return nil, &models.StorageError{Op: "list_orders", Err: err}
	}
	if len(orders) == 0 {
		return orders, nil
	}

	byID := make(map[int64]*models.Order, len(orders))
	ids := make([]int64, 0, len(orders))
	for _, o := range orders {
		byID[o.ID] = o
		ids = append(ids, o.ID)
	}

	rows, err = r.q.Query(ctx, database.GetLinesForOrdersSQL, ids)
	if err != nil {
		return nil, &models.StorageError{Op: "list_order_lines", Err: err}
	}
	lines, err := pgx.CollectRows(rows, order.ScanOrderLine)
	if err != nil {
		return nil, &models.StorageError{Op: "list_order_lines", Err: err}
	}
	for _, line := range lines {
		if o, ok := byID[line.OrderID]; ok {
			o.Lines = append(o.Lines, line)
		}
	}
	return orders, nil
}

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.TableNumber, &o.Status, &o.TotalAmount, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
