package order

import (
	"context"

	"github.com/shopspring/decimal"
)

// InboundOrder is a storefront order-created event, decoded from the verified
// raw webhook body. Exists only for the duration of one request.
type InboundOrder struct {
	ID         int64           `json:"id" validate:"required"`
	Name       string          `json:"name"`
	Currency   string          `json:"currency"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Email      string          `json:"email"`
	Customer   *Customer       `json:"customer"`
	Shipping   *Address        `json:"shipping_address"`
	Billing    *Address        `json:"billing_address"`
	LineItems  []LineItem      `json:"line_items" validate:"dive"`
}

// Customer carries the buyer's contact fields from the storefront
type Customer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// Address is a storefront shipping or billing address
type Address struct {
	Name     string `json:"name"`
	Address1 string `json:"address1"`
	Address2 string `json:"address2"`
	City     string `json:"city"`
	Province string `json:"province"`
	Country  string `json:"country"`
	Zip      string `json:"zip"`
	Phone    string `json:"phone"`
}

// LineItem is one purchased variant
type LineItem struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity" validate:"min=0"`
	Price    decimal.Decimal `json:"price"`
}

// SupplierOrder is the payload shape the ERP's order-creation endpoint expects
type SupplierOrder struct {
	ShopOrderID int64               `json:"shop_order_id"`
	OrderName   string              `json:"order_name"`
	Currency    string              `json:"currency"`
	TotalPrice  decimal.Decimal     `json:"total_price"`
	Customer    SupplierCustomer    `json:"customer"`
	Shipping    *Address            `json:"shipping_address"`
	Billing     *Address            `json:"billing_address"`
	Items       []SupplierOrderItem `json:"items"`
}

// SupplierCustomer is the buyer contact block of a SupplierOrder
type SupplierCustomer struct {
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// SupplierOrderItem is a line item reduced to what the ERP consumes
type SupplierOrderItem struct {
	SKU      string          `json:"sku"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ToSupplierOrder transforms the storefront event into the ERP order shape.
// The top-level order email wins over the customer block when both are set.
func (o *InboundOrder) ToSupplierOrder() *SupplierOrder {
	out := &SupplierOrder{
		ShopOrderID: o.ID,
		OrderName:   o.Name,
		Currency:    o.Currency,
		TotalPrice:  o.TotalPrice,
		Shipping:    o.Shipping,
		Billing:     o.Billing,
		Items:       make([]SupplierOrderItem, 0, len(o.LineItems)),
	}

	out.Customer.Email = o.Email
	if o.Customer != nil {
		if out.Customer.Email == "" {
			out.Customer.Email = o.Customer.Email
		}
		out.Customer.FirstName = o.Customer.FirstName
		out.Customer.LastName = o.Customer.LastName
		out.Customer.Phone = o.Customer.Phone
	}

	for _, li := range o.LineItems {
		out.Items = append(out.Items, SupplierOrderItem{
			SKU:      li.SKU,
			Quantity: li.Quantity,
			Price:    li.Price,
		})
	}

	return out
}

// Submitter is the port for forwarding orders to the ERP
type Submitter interface {
	SubmitOrder(ctx context.Context, o *SupplierOrder) error
}
