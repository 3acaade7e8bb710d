package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"restaurant-pos/internal/logger"
)

const (
	// OrdersExchange carries order events, routed by OrderPlacedRoutingKey
	// and friends.
	OrdersExchange = "orders_topic"
	// NotificationsQueue receives every order event.
	NotificationsQueue = "notifications_queue"

	notificationsBinding = "order.*"
	maxDialAttempts      = 5
)

// Connection wraps RabbitMQ connection with reconnection logic. It is safe
// for concurrent use; at most one reconnect runs at a time.
type Connection struct {
	mu      sync.Mutex
	conn    *amqp091.Connection
	channel *amqp091.Channel
	logger  *logger.Logger
	url     string
	open    func() error
}

// Dial connects to RabbitMQ and declares the order topology.
func Dial(ctx context.Context, url string, log *logger.Logger) (*Connection, error) {
	conn := &Connection{
		logger: log,
		url:    url,
	}
	conn.open = conn.dial

	if err := conn.connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to establish initial connection: %w", err)
	}

	return conn, nil
}

// connect establishes connection to RabbitMQ with retry logic
func (c *Connection) connect(ctx context.Context) error {
	var err error

	for i := 0; i < maxDialAttempts; i++ {
		if err = c.open(); err == nil {
			return nil
		}

		if i < maxDialAttempts-1 {
			wait := time.Duration(i+1) * 2 * time.Second
			c.logger.Error("rabbitmq_connection_failed",
				fmt.Sprintf("Failed to connect to RabbitMQ, retrying in %v", wait),
				"startup", err, map[string]any{"attempt": i + 1})

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
		}
	}

	return fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxDialAttempts, err)
}

// dial opens a connection and channel and declares the topology.
func (c *Connection) dial() error {
	conn, err := amqp091.Dial(c.url)
	if err != nil {
		return err
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return err
	}
	c.conn, c.channel = conn, ch

	if err := declareTopology(ch); err != nil {
		c.logger.Error("rabbitmq_setup_failed", "Failed to set up topology", "startup", err, nil)
		c.close()
		return err
	}
	return nil
}

// declareTopology creates the orders exchange and the notifications queue.
func declareTopology(ch *amqp091.Channel) error {
	err := ch.ExchangeDeclare(
		OrdersExchange, // name
		"topic",        // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", OrdersExchange, err)
	}

	_, err = ch.QueueDeclare(
		NotificationsQueue, // name
		true,               // durable
		false,              // delete when unused
		false,              // exclusive
		false,              // no-wait
		nil,                // arguments
	)
	if err != nil {
		return fmt.Errorf("failed to declare notifications queue: %w", err)
	}

	err = ch.QueueBind(NotificationsQueue, notificationsBinding, OrdersExchange, false, nil)
	if err != nil {
		return fmt.Errorf("failed to bind notifications queue: %w", err)
	}

	return nil
}

// Channel returns the current channel
func (c *Connection) Channel() *amqp091.Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.channel
}

// publishChannel returns an open channel, reconnecting first when the
// connection has dropped. Concurrent callers share a single reconnect.
func (c *Connection) publishChannel(ctx context.Context) (publishChannel, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed() {
		if err := c.reconnect(ctx); err != nil {
			return nil, err
		}
	}
	return c.channel, nil
}

func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.close()
}

func (c *Connection) close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// IsClosed checks if the connection is closed
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed()
}

func (c *Connection) closed() bool {
	return c.conn == nil || c.conn.IsClosed()
}

// Reconnect attempts to reconnect to RabbitMQ
func (c *Connection) Reconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.reconnect(ctx)
}

func (c *Connection) reconnect(ctx context.Context) error {
	c.close()
	c.conn, c.channel = nil, nil
	return c.connect(ctx)
}
