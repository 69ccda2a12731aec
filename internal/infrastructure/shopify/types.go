package shopify

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidGID indicates a global id without a trailing numeric segment
var ErrInvalidGID = errors.New("shopify: invalid global id")

// graphQLRequest is the envelope for admin GraphQL calls
type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// graphQLError is one entry of a GraphQL errors array
type graphQLError struct {
	Message string `json:"message"`
}

// variantLookupResponse is the response of the variant-by-SKU query
type variantLookupResponse struct {
	Data struct {
		ProductVariants struct {
			Nodes []variantNode `json:"nodes"`
		} `json:"productVariants"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// variantNode is one matched variant, ids as GIDs
type variantNode struct {
	ID            string `json:"id"`
	SKU           string `json:"sku"`
	InventoryItem struct {
		ID string `json:"id"`
	} `json:"inventoryItem"`
}

// inventorySetRequest is the REST inventory_levels/set payload
type inventorySetRequest struct {
	LocationID      int64 `json:"location_id"`
	InventoryItemID int64 `json:"inventory_item_id"`
	Available       int   `json:"available"`
}

// variantUpdateRequest is the REST variant price update payload
type variantUpdateRequest struct {
	Variant variantUpdateBody `json:"variant"`
}

type variantUpdateBody struct {
	ID    int64  `json:"id"`
	Price string `json:"price"`
}

// parseGID extracts the trailing numeric segment of a storefront global id,
// e.g. "gid://shopify/ProductVariant/123456" -> 123456
func parseGID(gid string) (int64, error) {
	idx := strings.LastIndex(gid, "/")
	if idx < 0 || idx == len(gid)-1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGID, gid)
	}
	id, err := strconv.ParseInt(gid[idx+1:], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidGID, gid)
	}
	return id, nil
}
