package notification

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"restaurant-kds/internal/logger"
	"restaurant-kds/internal/messaging"
	"restaurant-kds/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// EventSource delivers raw event bodies from the broker
type EventSource interface {
	StartConsuming(ctx context.Context, handler messaging.MessageHandler) error
	Close() error
}

// ConsoleSubscriber prints relayed display events as human-readable lines
type ConsoleSubscriber struct {
	source EventSource
	out    io.Writer
	logger *logger.Logger
}

// NewConsoleSubscriber creates a new notification subscriber
func NewConsoleSubscriber(source EventSource, out io.Writer, log *logger.Logger) *ConsoleSubscriber {
	return &ConsoleSubscriber{
		source: source,
		out:    out,
		logger: log,
	}
}

// Run consumes until ctx is cancelled
func (s *ConsoleSubscriber) Run(ctx context.Context) error {
	s.logger.Info("service_started", "Notification subscriber started", "", nil)

	err := s.source.StartConsuming(ctx, s.handleEvent)

	if closeErr := s.source.Close(); closeErr != nil {
		s.logger.Error("consumer_close_failed", "Failed to close consumer", "", closeErr, nil)
	}
	s.logger.Info("graceful_shutdown", "Notification subscriber stopped", "", nil)

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *ConsoleSubscriber) handleEvent(ctx context.Context, body []byte) error {
	event, err := models.DecodeEvent(body)
	if err != nil {
		return fmt.Errorf("failed to parse notification: %w", err)
	}

	if _, err := fmt.Fprintln(s.out, FormatEvent(event)); err != nil {
		return fmt.Errorf("failed to print notification: %w", err)
	}

	s.logger.Debug("notification_displayed", "Notification displayed to user", "", map[string]interface{}{
		"event": event.Name,
	})
	return nil
}

// FormatEvent renders one event as a single console line
func FormatEvent(event models.Event) string {
	switch data := event.Data.(type) {
	case *models.OrderMessage:
		return formatNewOrder(data)
	case *models.StatusUpdateMessage:
		return formatStatusUpdate(data)
	default:
		return fmt.Sprintf("📋 Unrecognised event %s", event.Name)
	}
}

func formatNewOrder(msg *models.OrderMessage) string {
	items := make([]string, 0, len(msg.Items))
	for _, item := range msg.Items {
		line := fmt.Sprintf("%dx %s", item.Quantity, item.ItemName)
		if item.Notes != "" {
			line += fmt.Sprintf(" (%s)", item.Notes)
		}
		items = append(items, line)
	}

	return fmt.Sprintf("🧾 [%s] New order #%d for table %d: %s. Total %s",
		msg.OrderTime.Format(timestampLayout),
		msg.OrderID,
		msg.TableNumber,
		strings.Join(items, ", "),
		msg.TotalAmount,
	)
}

func formatStatusUpdate(msg *models.StatusUpdateMessage) string {
	timestamp := msg.UpdatedAt.Format(timestampLayout)

	switch msg.Status {
	case models.StatusInProgress:
		return fmt.Sprintf("🍳 [%s] Order #%d is now being prepared.", timestamp, msg.OrderID)
	case models.StatusReady:
		return fmt.Sprintf("✅ [%s] Order #%d is ready to serve!", timestamp, msg.OrderID)
	case models.StatusCompleted:
		return fmt.Sprintf("🎉 [%s] Order #%d has been completed.", timestamp, msg.OrderID)
	case models.StatusCancelled:
		return fmt.Sprintf("❌ [%s] Order #%d has been cancelled.", timestamp, msg.OrderID)
	default:
		return fmt.Sprintf("📋 [%s] Order #%d status changed from '%s' to '%s'.",
			timestamp, msg.OrderID, msg.PreviousStatus, msg.Status)
	}
}
