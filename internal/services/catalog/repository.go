// Package catalog reads menu items. Prices read here are the only prices the
// order pipeline trusts.
package catalog

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"restaurant-kds/internal/database"
	"restaurant-kds/internal/models"
)

// Querier is satisfied by *pgxpool.Pool, *database.DB and pgx.Tx, so the same
// repository reads either from the pool or from inside an order transaction.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Repository struct {
	q Querier
}

func NewRepository(q Querier) *Repository {
	return &Repository{q: q}
}

// ListAvailable returns every item currently offered, ordered by id
func (r *Repository) ListAvailable(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := r.q.Query(ctx, database.ListAvailableItemsSQL)
	if err != nil {
		return nil, &models.StorageError{Op: "list_items", Err: err}
	}

	items, err := pgx.CollectRows(rows, scanMenuItem)
	if err != nil {
		return nil, &models.StorageError{Op: "list_items", Err: err}
	}
	return items, nil
}

// GetItems returns the catalog entries for ids, keyed by id. Unknown ids are
// simply absent from the map.
func (r *Repository) GetItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	result := make(map[int64]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	rows, err := r.q.Query(ctx, database.GetItemsByIDsSQL, ids)
	if err != nil {
		return nil, &models.StorageError{Op: "get_items", Err: err}
	}

	items, err := pgx.CollectRows(rows, scanMenuItem)
	if err != nil {
		return nil, &models.StorageError{Op: "get_items", Err: err}
	}

	for _, item := range items {
		result[item.ItemID] = item
	}
	return result, nil
}

func scanMenuItem(row pgx.CollectableRow) (models.MenuItem, error) {
	var item models.MenuItem
	err := row.Scan(&item.ItemID, &item.Name, &item.Description, &item.Price, &item.IsAvailable)
	if err != nil {
		return models.MenuItem{}, fmt.Errorf("failed to scan menu item: %w", err)
	}
	return item, nil
}
