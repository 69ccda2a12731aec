package catalog

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrVariantNotFound indicates no storefront variant matches the SKU.
	// Non-fatal during a sync run: the SKU is recorded as missing.
	ErrVariantNotFound = errors.New("catalog: variant not found for sku")

	// ErrEmptyCatalog indicates the supplier returned no items
	ErrEmptyCatalog = errors.New("catalog: supplier catalog is empty")
)

// Item is a read-only snapshot of one supplier catalog entry for a sync run
type Item struct {
	// SKU is the merchant-facing identifier shared with the storefront (trimmed)
	SKU string
	// Stock maps warehouse key to available quantity
	Stock map[string]int
	// BaseNetPriceUSD is the supplier net price, always quoted in USD
	BaseNetPriceUSD decimal.Decimal
	// TaxRatePercent is the applicable tax percentage (0 when absent)
	TaxRatePercent decimal.Decimal
}

// AvailableStock selects the stock value following warehouse priority order:
// the first warehouse key present in the item wins. Returns 0 when no
// prioritized warehouse reports stock.
func (i Item) AvailableStock(priority []string) int {
	for _, warehouse := range priority {
		if qty, ok := i.Stock[warehouse]; ok {
			if qty < 0 {
				return 0
			}
			return qty
		}
	}
	return 0
}

// UnitPrice computes the storefront price: net price plus tax, converted with
// the given rate when it is positive. Rounded to two decimal places.
func (i Item) UnitPrice(rate decimal.Decimal) decimal.Decimal {
	price := i.BaseNetPriceUSD.Mul(
		decimal.NewFromInt(100).Add(i.TaxRatePercent).Div(decimal.NewFromInt(100)),
	)
	if rate.IsPositive() {
		price = price.Mul(rate)
	}
	return price.Round(2)
}

// VariantRef identifies a storefront variant resolved from a SKU lookup.
// Both ids are the trailing numeric segment of the storefront's global ids.
type VariantRef struct {
	VariantID       int64
	InventoryItemID int64
}

// SupplierGateway is the port for reading the supplier's catalog
type SupplierGateway interface {
	// FetchCatalog returns the full catalog as a snapshot for one sync run
	FetchCatalog(ctx context.Context) ([]Item, error)
}

// StorefrontGateway is the port for resolving and updating storefront variants.
// Implementations are expected to pace their own outbound requests.
type StorefrontGateway interface {
	// FindVariantBySKU resolves a SKU by exact match, first result only.
	// Returns ErrVariantNotFound when the storefront does not know the SKU.
	FindVariantBySKU(ctx context.Context, sku string) (*VariantRef, error)

	// SetInventoryLevel sets the available quantity for an inventory item
	SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error

	// UpdateVariantPrice sets the variant price, formatted to two decimals
	UpdateVariantPrice(ctx context.Context, variantID int64, price decimal.Decimal) error
}

// RateSource resolves the USD-to-local conversion rate for a sync run.
// A zero rate means prices stay in USD; resolution never fails the caller.
type RateSource interface {
	Resolve(ctx context.Context) decimal.Decimal
}
