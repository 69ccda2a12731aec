package order

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleWebhookBody = `{
	"id": 820982911946154500,
	"name": "#9999",
	"currency": "ARS",
	"total_price": "254.98",
	"email": "jon@example.com",
	"customer": {
		"email": "jon@example.com",
		"first_name": "Jon",
		"last_name": "Snow",
		"phone": "+5491112345678"
	},
	"shipping_address": {
		"name": "Jon Snow",
		"address1": "123 Amoebobacterieae St",
		"city": "Ottawa",
		"province": "Ontario",
		"country": "Canada",
		"zip": "K2P0V6"
	},
	"billing_address": {
		"name": "Jon Snow",
		"address1": "123 Amoebobacterieae St",
		"city": "Ottawa",
		"province": "Ontario",
		"country": "Canada",
		"zip": "K2P0V6"
	},
	"line_items": [
		{"sku": "NTB-001", "quantity": 1, "price": "199.99"},
		{"sku": "MOU-014", "quantity": 2, "price": "27.50"}
	]
}`

func TestInboundOrder_Decode(t *testing.T) {
	var o InboundOrder
	require.NoError(t, json.Unmarshal([]byte(sampleWebhookBody), &o))

	assert.Equal(t, int64(820982911946154500), o.ID)
	assert.Equal(t, "#9999", o.Name)
	assert.Equal(t, "ARS", o.Currency)
	assert.Equal(t, "254.98", o.TotalPrice.StringFixed(2))
	require.Len(t, o.LineItems, 2)
	assert.Equal(t, "NTB-001", o.LineItems[0].SKU)
	assert.Equal(t, 2, o.LineItems[1].Quantity)
	assert.Equal(t, "27.50", o.LineItems[1].Price.StringFixed(2))
}

func TestInboundOrder_ToSupplierOrder(t *testing.T) {
	var o InboundOrder
	require.NoError(t, json.Unmarshal([]byte(sampleWebhookBody), &o))

	payload := o.ToSupplierOrder()

	assert.Equal(t, o.ID, payload.ShopOrderID)
	assert.Equal(t, "#9999", payload.OrderName)
	assert.Equal(t, "ARS", payload.Currency)
	assert.Equal(t, "jon@example.com", payload.Customer.Email)
	assert.Equal(t, "Jon", payload.Customer.FirstName)
	assert.Equal(t, "Snow", payload.Customer.LastName)
	require.NotNil(t, payload.Shipping)
	assert.Equal(t, "Ottawa", payload.Shipping.City)
	require.Len(t, payload.Items, 2)
	assert.Equal(t, SupplierOrderItem{
		SKU:      "NTB-001",
		Quantity: 1,
		Price:    decimal.RequireFromString("199.99"),
	}, payload.Items[0])
}

func TestInboundOrder_ToSupplierOrder_SparseFields(t *testing.T) {
	o := InboundOrder{
		ID:       42,
		Currency: "USD",
		Customer: &Customer{Email: "fallback@example.com"},
	}

	payload := o.ToSupplierOrder()

	// Top-level email is empty, customer block email fills in.
	assert.Equal(t, "fallback@example.com", payload.Customer.Email)
	assert.Nil(t, payload.Shipping)
	assert.Nil(t, payload.Billing)
	assert.NotNil(t, payload.Items)
	assert.Empty(t, payload.Items)
}

func TestSupplierOrder_WireShape(t *testing.T) {
	var o InboundOrder
	require.NoError(t, json.Unmarshal([]byte(sampleWebhookBody), &o))

	raw, err := json.Marshal(o.ToSupplierOrder())
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))
	for _, key := range []string{
		"shop_order_id", "order_name", "currency", "total_price",
		"customer", "shipping_address", "billing_address", "items",
	} {
		assert.Contains(t, wire, key)
	}
}
