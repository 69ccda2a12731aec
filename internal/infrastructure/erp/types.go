package erp

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/storesync/backend/internal/domain/catalog"
)

// Warehouse keys as they appear in the supplier catalog feed
const (
	WarehouseCABA = "stock_caba"
	WarehouseMDP  = "stock_mdp"
)

// loginRequest is the ERP authentication payload
type loginRequest struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// catalogItemPayload is one entry of the ERP catalog feed
type catalogItemPayload struct {
	Codigo        string          `json:"codigo"`
	StockCaba     *int            `json:"stock_caba"`
	StockMdp      *int            `json:"stock_mdp"`
	PrecioNetoUSD decimal.Decimal `json:"precioNeto_USD"`
	Impuestos     []taxPayload    `json:"impuestos"`
}

// taxPayload carries one tax line; only the first entry's percentage applies
type taxPayload struct {
	Porcentaje decimal.Decimal `json:"imp_porcentaje"`
}

// toDomain converts the wire item to the domain snapshot. Only warehouses
// actually present in the feed appear in the stock map, so warehouse-priority
// fallback can distinguish "zero stock" from "not reported".
func (p catalogItemPayload) toDomain() catalog.Item {
	item := catalog.Item{
		SKU:             strings.TrimSpace(p.Codigo),
		Stock:           make(map[string]int, 2),
		BaseNetPriceUSD: p.PrecioNetoUSD,
	}
	if p.StockCaba != nil {
		item.Stock[WarehouseCABA] = *p.StockCaba
	}
	if p.StockMdp != nil {
		item.Stock[WarehouseMDP] = *p.StockMdp
	}
	if len(p.Impuestos) > 0 {
		item.TaxRatePercent = p.Impuestos[0].Porcentaje
	}
	return item
}
