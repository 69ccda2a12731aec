// Package shopify is the HTTP adapter for the storefront's admin API:
// variant lookup over GraphQL, inventory and price updates over REST.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/infrastructure/ratelimit"
)

// maxResponseSize limits admin API response bodies (1MB)
const maxResponseSize = 1024 * 1024

const defaultAPIVersion = "2025-01"

// variantBySKUQuery resolves a SKU to its variant and inventory item ids.
// Exact match, first result only.
const variantBySKUQuery = `
query($q: String!) {
  productVariants(first: 1, query: $q) {
    nodes {
      id
      sku
      inventoryItem { id }
    }
  }
}`

var (
	// ErrRequestFailed indicates the admin API answered with a non-success status
	ErrRequestFailed = errors.New("shopify: request failed")
	// ErrGraphQL indicates the admin API returned GraphQL-level errors
	ErrGraphQL = errors.New("shopify: graphql error")

	// Config validation errors
	ErrConfigMissingDomain     = errors.New("shopify: config missing store domain")
	ErrConfigMissingToken      = errors.New("shopify: config missing access token")
	ErrConfigMissingLocationID = errors.New("shopify: config missing inventory location id")
)

// Config holds storefront admin API settings
type Config struct {
	// Domain is the myshopify store domain, e.g. "example.myshopify.com"
	Domain string
	// AccessToken is the static admin API token
	AccessToken string
	// LocationID is the inventory location receiving stock updates
	LocationID int64
	// APIVersion pins the admin API version
	APIVersion string
	// Timeout bounds each outbound request
	Timeout time.Duration
}

// Validate checks required fields and applies defaults
func (c *Config) Validate() error {
	if c.Domain == "" {
		return ErrConfigMissingDomain
	}
	if c.AccessToken == "" {
		return ErrConfigMissingToken
	}
	if c.LocationID == 0 {
		return ErrConfigMissingLocationID
	}
	if c.APIVersion == "" {
		c.APIVersion = defaultAPIVersion
	}
	if c.Timeout <= 0 {
		c.Timeout = 15 * time.Second
	}
	return nil
}

// Client talks to the storefront admin API. Every call passes through the
// limiter before going out, keeping the bridge under the storefront's
// request-rate ceiling regardless of who drives the client.
type Client struct {
	config     *Config
	baseURL    string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	logger     *zap.Logger
}

// NewClient creates a Client with the given configuration and limiter
func NewClient(config *Config, limiter ratelimit.Limiter, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if limiter == nil {
		limiter = ratelimit.Unlimited()
	}
	// Plain domains get https; a full URL is taken as-is (local test servers).
	baseURL := config.Domain
	if !strings.Contains(baseURL, "://") {
		baseURL = "https://" + baseURL
	}
	return &Client{
		config:     config,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    limiter,
		logger:     logger.Named("shopify"),
	}, nil
}

// FindVariantBySKU resolves a SKU to its variant and inventory item ids.
// Returns catalog.ErrVariantNotFound when the storefront has no match.
func (c *Client) FindVariantBySKU(ctx context.Context, sku string) (*catalog.VariantRef, error) {
	body, err := json.Marshal(graphQLRequest{
		Query:     variantBySKUQuery,
		Variables: map[string]any{"q": "sku:" + sku},
	})
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to encode query: %w", err)
	}

	respBody, err := c.do(ctx, http.MethodPost, c.adminURL("graphql.json"), body)
	if err != nil {
		return nil, err
	}

	var resp variantLookupResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("shopify: failed to parse lookup response: %w", err)
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrGraphQL, resp.Errors[0].Message)
	}

	nodes := resp.Data.ProductVariants.Nodes
	if len(nodes) == 0 {
		return nil, fmt.Errorf("%w: %s", catalog.ErrVariantNotFound, sku)
	}

	variantID, err := parseGID(nodes[0].ID)
	if err != nil {
		return nil, err
	}
	inventoryItemID, err := parseGID(nodes[0].InventoryItem.ID)
	if err != nil {
		return nil, err
	}

	return &catalog.VariantRef{
		VariantID:       variantID,
		InventoryItemID: inventoryItemID,
	}, nil
}

// SetInventoryLevel sets the available quantity for an inventory item at the
// configured location
func (c *Client) SetInventoryLevel(ctx context.Context, inventoryItemID int64, available int) error {
	body, err := json.Marshal(inventorySetRequest{
		LocationID:      c.config.LocationID,
		InventoryItemID: inventoryItemID,
		Available:       available,
	})
	if err != nil {
		return fmt.Errorf("shopify: failed to encode inventory payload: %w", err)
	}

	if _, err := c.do(ctx, http.MethodPost, c.adminURL("inventory_levels/set.json"), body); err != nil {
		return err
	}
	return nil
}

// UpdateVariantPrice sets the variant's price, formatted to two decimals
func (c *Client) UpdateVariantPrice(ctx context.Context, variantID int64, price decimal.Decimal) error {
	body, err := json.Marshal(variantUpdateRequest{
		Variant: variantUpdateBody{
			ID:    variantID,
			Price: price.StringFixed(2),
		},
	})
	if err != nil {
		return fmt.Errorf("shopify: failed to encode variant payload: %w", err)
	}

	url := c.adminURL(fmt.Sprintf("variants/%d.json", variantID))
	if _, err := c.do(ctx, http.MethodPut, url, body); err != nil {
		return err
	}
	return nil
}

// do performs one paced admin API request and returns the response body
func (c *Client) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	if err := c.limiter.Acquire(ctx); err != nil {
		return nil, fmt.Errorf("shopify: rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to create request: %w", err)
	}
	req.Header.Set("X-Shopify-Access-Token", c.config.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("shopify: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("shopify: failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("admin api request failed",
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %s %s returned HTTP %d: %s",
			ErrRequestFailed, method, url, resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) adminURL(path string) string {
	return fmt.Sprintf("%s/admin/api/%s/%s", c.baseURL, c.config.APIVersion, path)
}

var _ catalog.StorefrontGateway = (*Client)(nil)
