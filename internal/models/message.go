package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderPlacedRoutingKey is the routing key of order placement notifications.
const OrderPlacedRoutingKey = "order.placed"

// OrderPlacedMessage is published after an order commits.
type OrderPlacedMessage struct {
	MessageID     string             `json:"message_id"`
	OrderID       int64              `json:"order_id"`
	Table         string             `json:"table"`
	Total         decimal.Decimal    `json:"total"`
	Status        OrderStatus        `json:"status"`
	PaymentMethod string             `json:"payment_method"`
	Items         []OrderMessageItem `json:"items"`
	CreatedAt     time.Time          `json:"created_at"`
}

type OrderMessageItem struct {
	Source    ProductSource   `json:"source"`
	ProductID int64           `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// NewOrderPlacedMessage creates an OrderPlacedMessage from a committed order
func NewOrderPlacedMessage(order *Order) *OrderPlacedMessage {
	items := make([]OrderMessageItem, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderMessageItem{
			Source:    item.Product.Source(),
			ProductID: item.Product.ID(),
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}

	return &OrderPlacedMessage{
		MessageID:     uuid.NewString(),
		OrderID:       order.ID,
		Table:         order.Table,
		Total:         order.Total,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Items:         items,
		CreatedAt:     order.CreatedAt,
	}
}
