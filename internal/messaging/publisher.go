package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/logger"
	"restaurant-pos/internal/models"
)

const publishTimeout = 5 * time.Second

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// channelSource hands out an open channel, reconnecting when needed.
type channelSource interface {
	publishChannel(ctx context.Context) (publishChannel, error)
	Close() error
}

// Publisher handles message publishing to RabbitMQ. One Publisher is shared
// by all request handlers.
type Publisher struct {
	source channelSource
	logger *logger.Logger
}

// NewPublisher creates a new message publisher
func NewPublisher(conn *Connection, log *logger.Logger) *Publisher {
	return &Publisher{
		source: conn,
		logger: log,
	}
}

// PublishOrderPlaced announces a committed order on the orders exchange.
func (p *Publisher) PublishOrderPlaced(ctx context.Context, msg *models.OrderPlacedMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	publishing := amqp091.Publishing{
		ContentType:  "application/json",
		MessageId:    msg.MessageID,
		DeliveryMode: amqp091.Persistent,
		Timestamp:    msg.CreatedAt,
		Body:         body,
	}
	return p.publish(ctx, OrdersExchange, models.OrderPlacedRoutingKey, publishing)
}

func (p *Publisher) publish(ctx context.Context, exchange, routingKey string, publishing amqp091.Publishing) error {
	ch, err := p.source.publishChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to reconnect: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = ch.PublishWithContext(ctx, exchange, routingKey, false, false, publishing)
	if err != nil {
		p.logger.Error("message_publish_failed",
			fmt.Sprintf("Failed to publish message to exchange %s", exchange),
			logger.RequestID(ctx), err, map[string]any{
				"exchange":    exchange,
				"routing_key": routingKey,
			})
		return fmt.Errorf("failed to publish message: %w", err)
	}

	p.logger.Debug("message_published",
		fmt.Sprintf("Published message to exchange %s", exchange),
		logger.RequestID(ctx), map[string]any{
			"exchange":     exchange,
			"routing_key":  routingKey,
			"message_id":   publishing.MessageId,
			"message_size": len(publishing.Body),
		})

	return nil
}

func (p *Publisher) Close() error {
	return p.source.Close()
}
