package order

import (
	"context"
	"fmt"

	"restaurant-kds/internal/models"
)

// TxManager records an order as one atomic unit: price, insert header,
// insert lines, read the lines back. Nothing is visible unless all of it is.
type TxManager struct {
	store Store
}

func NewTxManager(store Store) *TxManager {
	return &TxManager{store: store}
}

// Record persists req and returns the committed order hydrated from what
// the store actually holds. Order ids burned by a rollback are not reused.
func (m *TxManager) Record(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	var recorded *models.Order

	err := m.store.InTx(ctx, func(ctx context.Context, tx Tx) error {
		priced, err := PriceOrder(ctx, tx, req)
		if err != nil {
			return err
		}

		order, err := tx.InsertOrder(ctx, priced.TableNumber, models.StatusPending, priced.Total)
		if err != nil {
			return fmt.Errorf("failed to insert order header: %w", err)
		}

		if err := tx.InsertLines(ctx, order.ID, priced.Lines); err != nil {
			return fmt.Errorf("failed to insert order lines for order %d: %w", order.ID, err)
		}

		lines, err := tx.GetLines(ctx, order.ID)
		if err != nil {
			return fmt.Errorf("failed to read back order lines for order %d: %w", order.ID, err)
		}
		order.Lines = lines

		if err := checkConsistency(order, len(priced.Lines)); err != nil {
			return err
		}

		recorded = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recorded, nil
}

// checkConsistency guards the header/lines invariant before commit
func checkConsistency(order *models.Order, wantLines int) error {
	if len(order.Lines) != wantLines {
		return &models.StorageError{
			Op:  "verify_order",
			Err: fmt.Errorf("order %d has %d lines after insert, expected %d", order.ID, len(order.Lines), wantLines),
		}
	}

	for _, line := range order.Lines {
		if line.OrderID != order.ID {
			return &models.StorageError{
				Op:  "verify_order",
				Err: fmt.Errorf("line %d belongs to order %d, expected %d", line.ID, line.OrderID, order.ID),
			}
		}
	}

	if sum := order.LinesTotal(); !sum.Equal(order.TotalAmount) {
		return &models.StorageError{
			Op:  "verify_order",
			Err: fmt.Errorf("order %d total %s does not match line sum %s", order.ID, order.TotalAmount, sum),
		}
	}
	return nil
}
