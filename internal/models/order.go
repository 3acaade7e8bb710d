package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money goes over the wire as a JSON number.
	decimal.MarshalJSONWithoutQuotes = true
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusReady     OrderStatus = "ready"
	StatusDelivered OrderStatus = "delivered"
	StatusCancelled OrderStatus = "cancelled"
)

// OpenStatuses are the statuses that keep a table occupied.
var OpenStatuses = []OrderStatus{StatusPending, StatusConfirmed}

// OpenStatusValues returns OpenStatuses as a text[] query argument.
func OpenStatusValues() []string {
	values := make([]string, len(OpenStatuses))
	for i, s := range OpenStatuses {
		values[i] = string(s)
	}
	return values
}

const DefaultPaymentMethod = "cash"

// ProductSource names the catalog a line item's product comes from.
type ProductSource string

const (
	SourceMenuItem    ProductSource = "menu_item"
	SourceSpecialDish ProductSource = "special_dish"
)

// ProductRef points at exactly one product in exactly one catalog. The zero
// value is not a valid reference; build one with MenuItemRef or
// SpecialDishRef.
type ProductRef struct {
	source ProductSource
	id     int64
}

func MenuItemRef(id int64) ProductRef {
	return ProductRef{source: SourceMenuItem, id: id}
}

func SpecialDishRef(id int64) ProductRef {
	return ProductRef{source: SourceSpecialDish, id: id}
}

func (r ProductRef) Source() ProductSource { return r.source }
func (r ProductRef) ID() int64             { return r.id }
func (r ProductRef) IsSpecial() bool       { return r.source == SourceSpecialDish }
func (r ProductRef) IsZero() bool          { return r.source == "" }

func (r ProductRef) String() string {
	return fmt.Sprintf("%s:%d", r.source, r.id)
}

// Columns returns the (menu_item_id, special_dish_id) pair stored for this
// reference. Exactly one of them is non-nil for a valid reference.
func (r ProductRef) Columns() (menuItemID, specialDishID *int64) {
	id := r.id
	switch r.source {
	case SourceMenuItem:
		return &id, nil
	case SourceSpecialDish:
		return nil, &id
	default:
		return nil, nil
	}
}

// ProductRefFromColumns rebuilds a reference from its two nullable columns.
func ProductRefFromColumns(menuItemID, specialDishID *int64) (ProductRef, error) {
	switch {
	case menuItemID != nil && specialDishID != nil:
		return ProductRef{}, fmt.Errorf("line item references both menu item %d and special dish %d", *menuItemID, *specialDishID)
	case menuItemID != nil:
		return MenuItemRef(*menuItemID), nil
	case specialDishID != nil:
		return SpecialDishRef(*specialDishID), nil
	default:
		return ProductRef{}, fmt.Errorf("line item references no product")
	}
}

func (r ProductRef) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Source ProductSource `json:"source"`
		ID     int64         `json:"id"`
	}{r.source, r.id})
}

// TableLabel is the free-form table reference on an order. Clients send it
// either as a string or as a number.
type TableLabel string

func (t *TableLabel) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = TableLabel(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("table must be a string or a number")
	}
	// 3, 3.0 and 3e0 all name table 3.
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return fmt.Errorf("table must be a string or a number")
	}
	*t = TableLabel(d.String())
	return nil
}

// LineItem is one product entry of an order.
type LineItem struct {
	ID        int64           `json:"id,omitempty"`
	OrderID   int64           `json:"orderId,omitempty"`
	Product   ProductRef      `json:"product"`
	Name      string          `json:"name,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
}

// Subtotal returns quantity times unit price.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Order represents a customer order
type Order struct {
	ID            int64           `json:"id"`
	Table         string          `json:"table"`
	Total         decimal.Decimal `json:"total"`
	Status        OrderStatus     `json:"status"`
	PaymentMethod string          `json:"paymentMethod"`
	CreatedAt     time.Time       `json:"createdAt"`
	Items         []LineItem      `json:"items"`
}

// OrderTotal sums the subtotals of the given items.
func OrderTotal(items []LineItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// PlaceOrderRequest represents the request to place a new order
type PlaceOrderRequest struct {
	Table         TableLabel       `json:"table"`
	Items         []OrderItemInput `json:"items"`
	PaymentMethod string           `json:"paymentMethod"`
}

// OrderItemInput is one requested line. Price is taken as sent.
type OrderItemInput struct {
	ID            int64           `json:"id"`
	Quantity      int             `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	IsSpecialDish bool            `json:"isSpecialDish"`
}

// Ref resolves the discriminator into a product reference.
func (in OrderItemInput) Ref() ProductRef {
	if in.IsSpecialDish {
		return SpecialDishRef(in.ID)
	}
	return MenuItemRef(in.ID)
}
