package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/messaging"
	"restaurant-kds/internal/models"
)

// replaySource hands fixed bodies to the handler, then waits for cancel
type replaySource struct {
	bodies  [][]byte
	errs    []error
	handled chan struct{}
	closed  bool
}

func (s *replaySource) StartConsuming(ctx context.Context, handler messaging.MessageHandler) error {
	for _, body := range s.bodies {
		s.errs = append(s.errs, handler(ctx, body))
	}
	close(s.handled)
	<-ctx.Done()
	return ctx.Err()
}

func (s *replaySource) Close() error {
	s.closed = true
	return nil
}

func sampleOrder() *models.Order {
	created := time.Date(2026, 1, 2, 12, 30, 0, 0, time.UTC)
	return &models.Order{
		ID:          1,
		TableNumber: 5,
		Status:      models.StatusPending,
		TotalAmount: decimal.RequireFromString("285"),
		CreatedAt:   created,
		Lines: []models.OrderLine{
			{ID: 1, OrderID: 1, ItemID: 3, ItemName: "Pad Thai", Quantity: 2, Notes: "no peanuts", Subtotal: decimal.RequireFromString("240")},
			{ID: 2, OrderID: 1, ItemID: 7, ItemName: "Thai Iced Tea", Quantity: 1, Subtotal: decimal.RequireFromString("45")},
		},
	}
}

func TestFormatEvent(t *testing.T) {
	at := time.Date(2026, 1, 2, 12, 45, 0, 0, time.UTC)

	tests := []struct {
		name  string
		event models.Event
		want  string
	}{
		{
			name:  "new order",
			event: models.NewOrderCreatedEvent(sampleOrder()),
			want:  "🧾 [2026-01-02 12:30:00] New order #1 for table 5: 2x Pad Thai (no peanuts), 1x Thai Iced Tea. Total 285.00",
		},
		{
			name:  "in progress",
			event: models.NewStatusChangedEvent(1, models.StatusPending, models.StatusInProgress, at),
			want:  "🍳 [2026-01-02 12:45:00] Order #1 is now being prepared.",
		},
		{
			name:  "ready",
			event: models.NewStatusChangedEvent(1, models.StatusInProgress, models.StatusReady, at),
			want:  "✅ [2026-01-02 12:45:00] Order #1 is ready to serve!",
		},
		{
			name:  "completed",
			event: models.NewStatusChangedEvent(1, models.StatusReady, models.StatusCompleted, at),
			want:  "🎉 [2026-01-02 12:45:00] Order #1 has been completed.",
		},
		{
			name:  "cancelled",
			event: models.NewStatusChangedEvent(1, models.StatusPending, models.StatusCancelled, at),
			want:  "❌ [2026-01-02 12:45:00] Order #1 has been cancelled.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatEvent(tt.event))
		})
	}
}

func TestConsoleSubscriber_PrintsRelayedEvents(t *testing.T) {
	newOrder, err := json.Marshal(models.NewOrderCreatedEvent(sampleOrder()))
	require.NoError(t, err)
	ready, err := json.Marshal(models.NewStatusChangedEvent(1, models.StatusPending, models.StatusReady,
		time.Date(2026, 1, 2, 12, 45, 0, 0, time.UTC)))
	require.NoError(t, err)

	source := &replaySource{
		bodies:  [][]byte{newOrder, []byte(`{"event":"mystery","data":{}}`), ready},
		handled: make(chan struct{}),
	}
	var out bytes.Buffer

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewConsoleSubscriber(source, &out, logger.Discard()).Run(ctx) }()

	select {
	case <-source.handled:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not consumed")
	}
	cancel()
	require.NoError(t, <-done)

	assert.True(t, source.closed)
	assert.NoError(t, source.errs[0])
	assert.Error(t, source.errs[1], "unknown events are rejected")
	assert.NoError(t, source.errs[2])
	assert.Equal(t,
		"🧾 [2026-01-02 12:30:00] New order #1 for table 5: 2x Pad Thai (no peanuts), 1x Thai Iced Tea. Total 285.00\n"+
			"✅ [2026-01-02 12:45:00] Order #1 is ready to serve!\n",
		out.String())
}
