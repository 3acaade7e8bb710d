package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRef_ColumnsExactlyOne(t *testing.T) {
	tests := []struct {
		name        string
		ref         ProductRef
		wantMenu    bool
		wantSpecial bool
	}{
		{name: "menu item", ref: MenuItemRef(4), wantMenu: true},
		{name: "special dish", ref: SpecialDishRef(9), wantSpecial: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			menuID, specialID := tt.ref.Columns()
			assert.Equal(t, tt.wantMenu, menuID != nil)
			assert.Equal(t, tt.wantSpecial, specialID != nil)

			back, err := ProductRefFromColumns(menuID, specialID)
			require.NoError(t, err)
			assert.Equal(t, tt.ref, back)
		})
	}
}

func TestProductRefFromColumns_RejectsBothOrNeither(t *testing.T) {
	id := int64(1)

	_, err := ProductRefFromColumns(&id, &id)
	assert.Error(t, err)

	_, err = ProductRefFromColumns(nil, nil)
	assert.Error(t, err)
}

func TestProductRef_ZeroValueHasNoColumns(t *testing.T) {
	var ref ProductRef
	menuID, specialID := ref.Columns()
	assert.True(t, ref.IsZero())
	assert.Nil(t, menuID)
	assert.Nil(t, specialID)
}

func TestOrderItemInput_Ref(t *testing.T) {
	assert.Equal(t, MenuItemRef(3), OrderItemInput{ID: 3}.Ref())
	assert.Equal(t, SpecialDishRef(3), OrderItemInput{ID: 3, IsSpecialDish: true}.Ref())
}

func TestTableLabel_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input   string
		want    TableLabel
		wantErr bool
	}{
		{input: `"3"`, want: "3"},
		{input: `" 12 "`, want: "12"},
		{input: `7`, want: "7"},
		{input: `3.0`, want: "3"},
		{input: `3e0`, want: "3"},
		{input: `12.50`, want: "12.5"},
		{input: `null`, want: ""},
		{input: `true`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var got TableLabel
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlaceOrderRequest_Decode(t *testing.T) {
	body := `{"table": 3, "items": [{"id": 1, "quantity": 2, "price": 1000, "isSpecialDish": false},
		{"id": 2, "quantity": 1, "price": "5000.50", "isSpecialDish": true}], "paymentMethod": "card"}`

	var req PlaceOrderRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	assert.Equal(t, TableLabel("3"), req.Table)
	require.Len(t, req.Items, 2)
	assert.True(t, req.Items[0].Price.Equal(decimal.NewFromInt(1000)))
	assert.True(t, req.Items[1].Price.Equal(decimal.RequireFromString("5000.50")))
	assert.True(t, req.Items[1].Ref().IsSpecial())
}

func TestOrderTotal(t *testing.T) {
	items := []LineItem{
		{Product: MenuItemRef(1), Quantity: 2, UnitPrice: decimal.NewFromInt(1000)},
		{Product: MenuItemRef(2), Quantity: 1, UnitPrice: decimal.NewFromInt(2000)},
		{Product: SpecialDishRef(1), Quantity: 1, UnitPrice: decimal.NewFromInt(5000)},
	}
	assert.True(t, OrderTotal(items).Equal(decimal.NewFromInt(9000)))
}

func TestOrder_MarshalsMoneyAsNumber(t *testing.T) {
	order := Order{
		ID:        1,
		Table:     "3",
		Total:     decimal.RequireFromString("12.50"),
		Status:    StatusDelivered,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		Items:     []LineItem{{Product: SpecialDishRef(2), Quantity: 1, UnitPrice: decimal.RequireFromString("12.50")}},
	}

	data, err := json.Marshal(order)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"total":12.5`)
	assert.Contains(t, string(data), `"product":{"source":"special_dish","id":2}`)
}

func TestOpenStatusValues(t *testing.T) {
	assert.Equal(t, []string{"pending", "confirmed"}, OpenStatusValues())
}
