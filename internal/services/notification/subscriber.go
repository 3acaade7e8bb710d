package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/messaging"
	"restaurant-pos/internal/models"
)

const timestampLayout = "2006-01-02 15:04:05"

// Consumer delivers message bodies until ctx is done.
type Consumer interface {
	Run(ctx context.Context, handler messaging.MessageHandler) error
}

// Subscriber prints a line for every placed order.
type Subscriber struct {
	consumer Consumer
	logger   *logger.Logger
	out      io.Writer
}

func NewSubscriber(consumer Consumer, log *logger.Logger, out io.Writer) *Subscriber {
	return &Subscriber{
		consumer: consumer,
		logger:   log,
		out:      out,
	}
}

// Start consumes order notifications until ctx is cancelled.
func (s *Subscriber) Start(ctx context.Context) error {
	requestID := logger.GenerateRequestID()
	s.logger.Info("service_started", "Notification subscriber started", requestID, nil)

	err := s.consumer.Run(ctx, s.HandleOrderPlaced)
	if ctx.Err() != nil {
		s.logger.Info("graceful_shutdown", "Notification subscriber stopped", requestID, nil)
		return nil
	}
	return err
}

// HandleOrderPlaced parses and announces one order notification.
func (s *Subscriber) HandleOrderPlaced(ctx context.Context, body []byte) error {
	var msg models.OrderPlacedMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("failed to parse notification: %w: %v", messaging.ErrMalformed, err)
	}
	if msg.OrderID <= 0 {
		return fmt.Errorf("notification without order id: %w", messaging.ErrMalformed)
	}

	if _, err := fmt.Fprintln(s.out, FormatOrderPlaced(&msg)); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	s.logger.Info("notification_displayed", "Order notification displayed", msg.MessageID, map[string]any{
		"order_id":  msg.OrderID,
		"table":     msg.Table,
		"total":     msg.Total.StringFixed(2),
		"items":     len(msg.Items),
		"timestamp": msg.CreatedAt.Format(timestampLayout),
	})
	return nil
}

// FormatOrderPlaced renders a notification as one human readable line.
func FormatOrderPlaced(msg *models.OrderPlacedMessage) string {
	table := msg.Table
	if table == "" {
		table = "takeaway"
	}

	var units int
	for _, item := range msg.Items {
		units += item.Quantity
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] Order %d for table %s: %d item(s), total %s",
		msg.CreatedAt.Format(timestampLayout), msg.OrderID, table, units, msg.Total.StringFixed(2))
	if msg.PaymentMethod != "" {
		fmt.Fprintf(&b, ", paid by %s", msg.PaymentMethod)
	}
	return b.String()
}
