package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleOrder() *Order {
	return &Order{
		ID:          1,
		TableNumber: 5,
		Status:      StatusPending,
		TotalAmount: decimal.RequireFromString("285"),
		CreatedAt:   time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC),
		UpdatedAt:   time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC),
		Lines: []OrderLine{
			{ID: 1, OrderID: 1, ItemID: 3, ItemName: "Pad Thai", Quantity: 2, Notes: "no peanuts", Subtotal: decimal.RequireFromString("240")},
			{ID: 2, OrderID: 1, ItemID: 7, ItemName: "Thai Iced Tea", Quantity: 1, Subtotal: decimal.RequireFromString("45")},
		},
	}
}

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestNewOrderCreatedEvent_WireFormat(t *testing.T) {
	body, err := json.MarshalIndent(NewOrderCreatedEvent(sampleOrder()), "", "  ")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "new_order_event", body)
}

func TestNewStatusChangedEvent_WireFormat(t *testing.T) {
	at := time.Date(2026, 1, 2, 12, 45, 0, 0, time.UTC)
	body, err := json.MarshalIndent(NewStatusChangedEvent(1, StatusPending, StatusCompleted, at), "", "  ")
	require.NoError(t, err)

	newGoldie(t).Assert(t, "order_status_update_event", body)
}

func TestDecodeEvent_RoundTripsKnownEvents(t *testing.T) {
	body, err := json.Marshal(NewOrderCreatedEvent(sampleOrder()))
	require.NoError(t, err)

	event, err := DecodeEvent(body)
	require.NoError(t, err)
	assert.Equal(t, EventNewOrder, event.Name)

	msg, ok := event.Data.(*OrderMessage)
	require.True(t, ok)
	assert.Equal(t, 5, msg.TableNumber)
	assert.Equal(t, StatusPending, msg.Status)
	assert.Len(t, msg.Items, 2)
	assert.Equal(t, "285.00", msg.TotalAmount.String())
}

func TestDecodeEvent_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: "{"},
		{name: "unknown event", body: `{"event":"menu_changed","data":{}}`},
		{name: "bad payload", body: `{"event":"order_status_update","data":{"order_id":"x"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.body))
			assert.Error(t, err)
		})
	}
}
