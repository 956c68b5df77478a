package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"restaurant-kds/internal/database"
	"restaurant-kds/internal/models"
	"restaurant-kds/internal/services/catalog"
)

// Repository is the PostgreSQL order store
type Repository struct {
	db *database.DB
}

func NewRepository(db *database.DB) *Repository {
	return &Repository{db: db}
}

// InTx implements Store. The pooled connection is held for the whole of fn
// and returned on commit or rollback.
func (r *Repository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return &models.StorageError{Op: "begin", Err: err}
	}
	defer tx.Rollback(ctx)

	if err := fn(ctx, &pgTx{tx: tx, catalog: catalog.NewRepository(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return &models.StorageError{Op: "commit", Err: err}
	}
	return nil
}

// UpdateStatus implements Store
func (r *Repository) UpdateStatus(ctx context.Context, orderID int64, next models.OrderStatus, from []models.OrderStatus) (models.OrderStatus, time.Time, error) {
	var (
		previous  models.OrderStatus
		updatedAt time.Time
	)

	err := r.db.QueryRow(ctx, database.UpdateOrderStatusSQL, orderID, string(next), statusStrings(from)).Scan(&previous, &updatedAt)
	if err == nil {
		return previous, updatedAt, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, &models.StorageError{Op: "update_status", Err: err}
	}

	// Nothing matched: either the order does not exist or its current
	// status does not allow the move.
	var current models.OrderStatus
	err = r.db.QueryRow(ctx, database.GetOrderStatusSQL, orderID).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", time.Time{}, &models.NotFoundError{Resource: "order", ID: orderID}
	}
	if err != nil {
		return "", time.Time{}, &models.StorageError{Op: "get_status", Err: err}
	}

	return "", time.Time{}, &models.ValidationError{
		Kind:    models.KindInvalidTransition,
		Field:   "status",
		Message: fmt.Sprintf("order %d cannot move from %s to %s", orderID, current, next),
	}
}

func statusStrings(statuses []models.OrderStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// pgTx implements Tx on top of a pgx transaction
type pgTx struct {
	tx      pgx.Tx
	catalog *catalog.Repository
}

func (t *pgTx) GetItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	return t.catalog.GetItems(ctx, ids)
}

func (t *pgTx) InsertOrder(ctx context.Context, tableNumber int, status models.OrderStatus, total decimal.Decimal) (*models.Order, error) {
	order := &models.Order{
		TableNumber: tableNumber,
		Status:      status,
		TotalAmount: total,
	}

	err := t.tx.QueryRow(ctx, database.InsertOrderSQL, tableNumber, string(status), total).
		Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return nil, &models.StorageError{Op: "insert_order", Err: err}
	}
	return order, nil
}

// InsertLines sends every line insert in a single batch round trip
func (t *pgTx) InsertLines(ctx context.Context, orderID int64, lines []models.PricedLine) error {
	batch := &pgx.Batch{}
	for _, line := range lines {
		batch.Queue(database.InsertOrderLineSQL, orderID, line.ItemID, line.Quantity, line.Notes, line.Subtotal)
	}

	results := t.tx.SendBatch(ctx, batch)
	for i := range lines {
		if _, err := results.Exec(); err != nil {
			results.Close()
			return &models.StorageError{Op: "insert_order_line", Err: fmt.Errorf("line %d: %w", i, err)}
		}
	}

	if err := results.Close(); err != nil {
		return &models.StorageError{Op: "insert_order_line", Err: err}
	}
	return nil
}

func (t *pgTx) GetLines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	rows, err := t.tx.Query(ctx, database.GetOrderLinesSQL, orderID)
	if err != nil {
		return nil, &models.StorageError{Op: "get_order_lines", Err: err}
	}

	lines, err := pgx.CollectRows(rows, ScanOrderLine)
	if err != nil {
		return nil, &models.StorageError{Op: "get_order_lines", Err: err}
	}
	return lines, nil
}

// ScanOrderLine scans one row shaped like database.GetOrderLinesSQL
func ScanOrderLine(row pgx.CollectableRow) (models.OrderLine, error) {
	var line models.OrderLine
	err := row.Scan(&line.ID, &line.OrderID, &line.ItemID, &line.ItemName, &line.Quantity, &line.Notes, &line.Subtotal)
	return line, err
}

var _ Store = (*Repository)(nil)
