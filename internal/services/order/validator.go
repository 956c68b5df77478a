package order

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"restaurant-kds/internal/models"
)

const (
	maxLines       = 50
	maxQuantity    = 99
	maxNotesLength = 200
)

// maxOrderTotal is the largest value orders.total_amount NUMERIC(12,2) can hold
var maxOrderTotal = decimal.RequireFromString("9999999999.99")

// ItemLookup returns catalog entries by id; unknown ids are absent from the map
type ItemLookup interface {
	GetItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error)
}

// ValidateRequest checks the shape of a submission without touching the
// catalog, so malformed requests never take a database connection.
func ValidateRequest(req *models.CreateOrderRequest) error {
	if req == nil {
		return malformed("", "request body is required")
	}

	if req.TableNumber < 1 {
		return malformed("table_number", "table number must be a positive integer")
	}

	if len(req.Items) == 0 {
		return malformed("items", "items cannot be empty")
	}

	if len(req.Items) > maxLines {
		return malformed("items", fmt.Sprintf("a maximum of %d items is allowed", maxLines))
	}

	for i, item := range req.Items {
		if err := validateItem(item, i); err != nil {
			return err
		}
	}
	return nil
}

func validateItem(item models.CreateOrderItem, index int) error {
	prefix := fmt.Sprintf("items[%d]", index)

	if item.ItemID <= 0 {
		return malformed(prefix+".item_id", "item id must be a positive integer")
	}

	if item.Quantity < 1 || item.Quantity > maxQuantity {
		return malformed(prefix+".quantity", fmt.Sprintf("quantity must be between 1 and %d", maxQuantity))
	}

	if utf8.RuneCountInString(item.Notes) > maxNotesLength {
		return malformed(prefix+".notes", fmt.Sprintf("notes must not exceed %d characters", maxNotesLength))
	}
	return nil
}

// PriceOrder prices every requested line from the catalog in one lookup and
// returns the per-line subtotals and their total. Prices never come from the
// request. Any unknown or unavailable item fails the whole order.
func PriceOrder(ctx context.Context, catalog ItemLookup, req *models.CreateOrderRequest) (*models.PricedOrder, error) {
	if err := ValidateRequest(req); err != nil {
		return nil, err
	}

	ids := distinctItemIDs(req.Items)
	items, err := catalog.GetItems(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to look up catalog prices: %w", err)
	}

	priced := &models.PricedOrder{
		TableNumber: req.TableNumber,
		Lines:       make([]models.PricedLine, 0, len(req.Items)),
		Total:       decimal.Zero,
	}

	for i, requested := range req.Items {
		item, ok := items[requested.ItemID]
		if !ok {
			return nil, &models.ValidationError{
				Kind:    models.KindUnknownItem,
				Field:   fmt.Sprintf("items[%d].item_id", i),
				Message: fmt.Sprintf("item %d not found", requested.ItemID),
			}
		}
		if !item.IsAvailable {
			return nil, &models.ValidationError{
				Kind:    models.KindUnavailableItem,
				Field:   fmt.Sprintf("items[%d].item_id", i),
				Message: fmt.Sprintf("item %d is not available", requested.ItemID),
			}
		}

		subtotal := item.Price.Mul(decimal.NewFromInt(int64(requested.Quantity)))
		priced.Lines = append(priced.Lines, models.PricedLine{
			ItemID:    item.ItemID,
			ItemName:  item.Name,
			Quantity:  requested.Quantity,
			Notes:     requested.Notes,
			UnitPrice: item.Price,
			Subtotal:  subtotal,
		})
		priced.Total = priced.Total.Add(subtotal)
	}

	if priced.Total.GreaterThan(maxOrderTotal) {
		return nil, malformed("items", fmt.Sprintf("order total must not exceed %s", maxOrderTotal.StringFixed(2)))
	}

	return priced, nil
}

func distinctItemIDs(items []models.CreateOrderItem) []int64 {
	seen := make(map[int64]bool, len(items))
	ids := make([]int64, 0, len(items))
	for _, item := range items {
		if !seen[item.ItemID] {
			seen[item.ItemID] = true
			ids = append(ids, item.ItemID)
		}
	}
	return ids
}

func malformed(field, message string) error {
	return &models.ValidationError{Kind: models.KindMalformed, Field: field, Message: message}
}
