package order

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"restaurant-pos/internal/models"
)

const (
	maxItems            = 50
	maxTableLabelLen    = 20
	maxPaymentMethodLen = 50
	maxQuantity         = math.MaxInt32
	moneyScale          = 2
)

// maxAmount is the largest NUMERIC(12,2) value, the column type of prices
// and totals.
var maxAmount = decimal.RequireFromString("9999999999.99")

// ValidatePlaceOrderRequest checks the request and fills in defaults. It never
// touches the store.
func ValidatePlaceOrderRequest(req *models.PlaceOrderRequest) error {
	if err := validateTable(req); err != nil {
		return err
	}

	if err := validatePaymentMethod(req); err != nil {
		return err
	}

	return validateItems(req.Items)
}

func validateTable(req *models.PlaceOrderRequest) error {
	req.Table = models.TableLabel(strings.TrimSpace(string(req.Table)))

	if req.Table == "" {
		return models.NewValidationError("table", "table is required")
	}
	if utf8.RuneCountInString(string(req.Table)) > maxTableLabelLen {
		return models.NewValidationError("table", fmt.Sprintf("table must not exceed %d characters", maxTableLabelLen))
	}
	return nil
}

func validatePaymentMethod(req *models.PlaceOrderRequest) error {
	req.PaymentMethod = strings.TrimSpace(req.PaymentMethod)

	if req.PaymentMethod == "" {
		req.PaymentMethod = models.DefaultPaymentMethod
	}
	if utf8.RuneCountInString(req.PaymentMethod) > maxPaymentMethodLen {
		return models.NewValidationError("paymentMethod", fmt.Sprintf("payment method must not exceed %d characters", maxPaymentMethodLen))
	}
	return nil
}

func validateItems(items []models.OrderItemInput) error {
	if len(items) == 0 {
		return models.NewValidationError("items", "items cannot be empty")
	}

	if len(items) > maxItems {
		return models.NewValidationError("items", fmt.Sprintf("a maximum of %d items is allowed", maxItems))
	}

	total := decimal.Zero
	for i, item := range items {
		if err := validateItem(item, i); err != nil {
			return err
		}
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if total.GreaterThan(maxAmount) {
		return models.NewValidationError("items", fmt.Sprintf("order total must not exceed %s", maxAmount.StringFixed(moneyScale)))
	}
	return nil
}

func validateItem(item models.OrderItemInput, index int) error {
	if item.ID <= 0 {
		return models.NewValidationError(fmt.Sprintf("items[%d].id", index), "item id must be a positive integer")
	}

	if item.Quantity <= 0 {
		return models.NewValidationError(fmt.Sprintf("items[%d].quantity", index), "item quantity must be greater than 0")
	}
	if item.Quantity > maxQuantity {
		return models.NewValidationError(fmt.Sprintf("items[%d].quantity", index), fmt.Sprintf("item quantity must not exceed %d", maxQuantity))
	}

	if item.Price.IsNegative() {
		return models.NewValidationError(fmt.Sprintf("items[%d].price", index), "item price must not be negative")
	}
	// Stored prices have cents precision; anything finer would make the
	// stored total differ from the sum of stored lines.
	if !item.Price.Equal(item.Price.Round(moneyScale)) {
		return models.NewValidationError(fmt.Sprintf("items[%d].price", index), "item price must have at most 2 decimal places")
	}
	if item.Price.GreaterThan(maxAmount) {
		return models.NewValidationError(fmt.Sprintf("items[%d].price", index), fmt.Sprintf("item price must not exceed %s", maxAmount.StringFixed(moneyScale)))
	}
	return nil
}
