package order

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"restaurant-kds/internal/models"
)

func TestValidateRequest(t *testing.T) {
	items := func(n int) []models.CreateOrderItem {
		out := make([]models.CreateOrderItem, n)
		for i := range out {
			out[i] = models.CreateOrderItem{ItemID: 3, Quantity: 1}
		}
		return out
	}

	tests := []struct {
		name      string
		req       *models.CreateOrderRequest
		wantField string
	}{
		{
			name: "valid request",
			req:  scenarioRequest(),
		},
		{
			name:      "nil request",
			req:       nil,
			wantField: "",
		},
		{
			name:      "zero table number",
			req:       &models.CreateOrderRequest{TableNumber: 0, Items: items(1)},
			wantField: "table_number",
		},
		{
			name:      "no items",
			req:       &models.CreateOrderRequest{TableNumber: 1},
			wantField: "items",
		},
		{
			name:      "too many lines",
			req:       &models.CreateOrderRequest{TableNumber: 1, Items: items(51)},
			wantField: "items",
		},
		{
			name: "zero quantity",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 1},
				{ItemID: 7, Quantity: 1},
				{ItemID: 7, Quantity: 0},
			}},
			wantField: "items[2].quantity",
		},
		{
			name: "quantity above limit",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 100},
			}},
			wantField: "items[0].quantity",
		},
		{
			name: "non-positive item id",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: -4, Quantity: 1},
			}},
			wantField: "items[0].item_id",
		},
		{
			name: "notes too long",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 1, Notes: strings.Repeat("x", 201)},
			}},
			wantField: "items[0].notes",
		},
		{
			name: "thai notes within limit",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 1, Notes: strings.Repeat("ไม่", 30)},
			}},
		},
		{
			name: "thai notes at limit",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 1, Notes: strings.Repeat("ก", 200)},
			}},
		},
		{
			name: "thai notes too long",
			req: &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 1, Notes: strings.Repeat("ก", 201)},
			}},
			wantField: "items[0].notes",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if tt.req != nil && tt.wantField == "" {
				require.NoError(t, err)
				return
			}

			require.Error(t, err)
			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, models.KindMalformed, validationErr.Kind)
			assert.Equal(t, tt.wantField, validationErr.Field)
		})
	}
}

type countingLookup struct {
	items map[int64]models.MenuItem
	calls int
	ids   []int64
}

func (c *countingLookup) GetItems(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	c.calls++
	c.ids = ids
	found := make(map[int64]models.MenuItem)
	for _, id := range ids {
		if item, ok := c.items[id]; ok {
			found[id] = item
		}
	}
	return found, nil
}

func TestPriceOrder_UsesCatalogPricesOnly(t *testing.T) {
	lookup := &countingLookup{items: menuFixture()}

	priced, err := PriceOrder(context.Background(), lookup, scenarioRequest())
	require.NoError(t, err)

	assert.Equal(t, 1, lookup.calls, "one catalog round trip for the whole order")
	assert.Equal(t, 5, priced.TableNumber)
	require.Len(t, priced.Lines, 2)

	assert.True(t, decimal.RequireFromString("240.00").Equal(priced.Lines[0].Subtotal))
	assert.Equal(t, "Pad Thai", priced.Lines[0].ItemName)
	assert.Equal(t, "no peanuts", priced.Lines[0].Notes)
	assert.True(t, decimal.RequireFromString("45.00").Equal(priced.Lines[1].Subtotal))
	assert.True(t, decimal.RequireFromString("285.00").Equal(priced.Total))
}

func TestPriceOrder_RepeatedItemsAreLookedUpOnce(t *testing.T) {
	lookup := &countingLookup{items: menuFixture()}
	req := &models.CreateOrderRequest{TableNumber: 2, Items: []models.CreateOrderItem{
		{ItemID: 7, Quantity: 1},
		{ItemID: 7, Quantity: 3, Notes: "less ice"},
	}}

	priced, err := PriceOrder(context.Background(), lookup, req)
	require.NoError(t, err)

	assert.Equal(t, []int64{7}, lookup.ids)
	require.Len(t, priced.Lines, 2)
	assert.True(t, decimal.RequireFromString("180.00").Equal(priced.Total))
}

func TestPriceOrder_DecimalArithmeticIsExact(t *testing.T) {
	lookup := &countingLookup{items: map[int64]models.MenuItem{
		1: {ItemID: 1, Name: "Spring Roll", Price: decimal.RequireFromString("0.10"), IsAvailable: true},
		2: {ItemID: 2, Name: "Sticky Rice", Price: decimal.RequireFromString("0.20"), IsAvailable: true},
	}}
	req := &models.CreateOrderRequest{TableNumber: 1, Items: []models.CreateOrderItem{
		{ItemID: 1, Quantity: 1},
		{ItemID: 2, Quantity: 1},
	}}

	priced, err := PriceOrder(context.Background(), lookup, req)
	require.NoError(t, err)
	assert.Equal(t, "0.30", priced.Total.StringFixed(2))
	assert.True(t, decimal.RequireFromString("0.3").Equal(priced.Total))
}

func TestPriceOrder_RejectsUnknownAndUnavailableItems(t *testing.T) {
	tests := []struct {
		name      string
		itemID    int64
		wantKind  string
		wantField string
	}{
		{name: "unknown item", itemID: 999, wantKind: models.KindUnknownItem, wantField: "items[1].item_id"},
		{name: "unavailable item", itemID: 5, wantKind: models.KindUnavailableItem, wantField: "items[1].item_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &models.CreateOrderRequest{TableNumber: 5, Items: []models.CreateOrderItem{
				{ItemID: 3, Quantity: 1},
				{ItemID: tt.itemID, Quantity: 1},
			}}

			priced, err := PriceOrder(context.Background(), &countingLookup{items: menuFixture()}, req)
			assert.Nil(t, priced)

			var validationErr *models.ValidationError
			require.ErrorAs(t, err, &validationErr)
			assert.Equal(t, tt.wantKind, validationErr.Kind)
			assert.Equal(t, tt.wantField, validationErr.Field)
			assert.True(t, models.IsValidation(err))
		})
	}
}

func TestPriceOrder_RejectsTotalsTooLargeToStore(t *testing.T) {
	lookup := &countingLookup{items: map[int64]models.MenuItem{
		1: {ItemID: 1, Name: "Banquet", Price: decimal.RequireFromString("99999999.99"), IsAvailable: true},
	}}

	lines := make([]models.CreateOrderItem, maxLines)
	for i := range lines {
		lines[i] = models.CreateOrderItem{ItemID: 1, Quantity: maxQuantity}
	}

	priced, err := PriceOrder(context.Background(), lookup, &models.CreateOrderRequest{TableNumber: 1, Items: lines})
	assert.Nil(t, priced)

	var validationErr *models.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, models.KindMalformed, validationErr.Kind)
	assert.Equal(t, "items", validationErr.Field)

	// one line of the same size still fits
	priced, err = PriceOrder(context.Background(), lookup, &models.CreateOrderRequest{TableNumber: 1, Items: lines[:1]})
	require.NoError(t, err)
	assert.Equal(t, "9899999999.01", priced.Total.StringFixed(2))
}
