package messaging

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/logger"
)

// ErrMalformed marks a message that can never be processed. It is dropped
// instead of requeued.
var ErrMalformed = errors.New("malformed message")

const processTimeout = 30 * time.Second

// MessageHandler processes one message body.
type MessageHandler func(ctx context.Context, body []byte) error

// Consumer handles message consumption from RabbitMQ
type Consumer struct {
	conn        *Connection
	logger      *logger.Logger
	queueName   string
	consumerTag string
	prefetch    int
}

func NewConsumer(conn *Connection, log *logger.Logger, queueName, consumerTag string, prefetch int) *Consumer {
	return &Consumer{
		conn:        conn,
		logger:      log,
		queueName:   queueName,
		consumerTag: consumerTag,
		prefetch:    prefetch,
	}
}

// Run consumes from the queue until ctx is done.
func (c *Consumer) Run(ctx context.Context, handler MessageHandler) error {
	if c.conn.IsClosed() {
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect: %w", err)
		}
	}

	for {
		msgs, err := c.subscribe()
		if err != nil {
			return err
		}

		c.logger.Info("consumer_started",
			fmt.Sprintf("Started consuming from queue %s", c.queueName),
			"", map[string]any{
				"queue":    c.queueName,
				"consumer": c.consumerTag,
				"prefetch": c.prefetch,
			})

		if err := c.drain(ctx, msgs, handler); err != nil {
			return err
		}
		c.logger.Error("consumer_channel_closed", "Message channel closed, attempting to reconnect", "", nil, nil)
		if err := c.conn.Reconnect(ctx); err != nil {
			return fmt.Errorf("failed to reconnect after channel closed: %w", err)
		}
	}
}

func (c *Consumer) subscribe() (<-chan amqp091.Delivery, error) {
	ch := c.conn.Channel()
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		c.queueName,   // queue
		c.consumerTag, // consumer
		false,         // auto-ack
		false,         // exclusive
		false,         // no-local
		false,         // no-wait
		nil,           // args
	)
	if err != nil {
		return nil, fmt.Errorf("failed to register consumer: %w", err)
	}
	return msgs, nil
}

// drain processes deliveries until ctx is done or msgs is closed. It returns
// nil only in the latter case.
func (c *Consumer) drain(ctx context.Context, msgs <-chan amqp091.Delivery, handler MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer_stopped", "Consumer stopped by context", "", nil)
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			c.process(ctx, d, handler)
		}
	}
}

// process runs handler on one delivery and settles it. A failed message is
// requeued once; a redelivered or malformed one is dropped.
func (c *Consumer) process(ctx context.Context, d amqp091.Delivery, handler MessageHandler) {
	start := time.Now()
	fields := map[string]any{
		"queue":        c.queueName,
		"routing_key":  d.RoutingKey,
		"message_id":   d.MessageId,
		"delivery_tag": d.DeliveryTag,
	}

	c.logger.Debug("message_received", "Processing message", d.MessageId, fields)

	processCtx, cancel := context.WithTimeout(ctx, processTimeout)
	defer cancel()

	err := handler(processCtx, d.Body)
	fields["duration_ms"] = time.Since(start).Milliseconds()

	if err == nil {
		c.logger.Debug("message_processed", "Successfully processed message", d.MessageId, fields)
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.Error("message_ack_failed", "Failed to ack message", d.MessageId, ackErr, nil)
		}
		return
	}

	requeue := !d.Redelivered && !errors.Is(err, ErrMalformed)
	fields["requeue"] = requeue
	c.logger.Error("message_processing_failed", "Failed to process message", d.MessageId, err, fields)

	if nackErr := d.Nack(false, requeue); nackErr != nil {
		c.logger.Error("message_nack_failed", "Failed to nack message", d.MessageId, nackErr, nil)
	}
}

// Close cancels the consumer and closes its connection.
func (c *Consumer) Close() error {
	if c.conn == nil || c.conn.IsClosed() {
		return nil
	}
	if err := c.conn.Channel().Cancel(c.consumerTag, false); err != nil {
		c.logger.Error("consumer_cancel_failed", "Failed to cancel consumer", "", err, nil)
	}
	return c.conn.Close()
}
