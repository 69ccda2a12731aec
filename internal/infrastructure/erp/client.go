// Package erp is the HTTP adapter for the GN distributor ERP: authentication,
// catalog feed, and order creation.
package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
	"github.com/storesync/backend/internal/domain/order"
)

// maxResponseSize limits ERP response bodies (10MB; the catalog feed is large)
const maxResponseSize = 10 * 1024 * 1024

const (
	loginPath              = "/Authentication/Login"
	catalogPath            = "/API_V1/GetCatalog"
	defaultOrderCreatePath = "/API_V1/CreateOrder"
)

var (
	// ErrRequestFailed indicates the ERP answered with a non-success status
	ErrRequestFailed = errors.New("erp: request failed")
	// ErrOrderRejected indicates the ERP refused an order creation
	ErrOrderRejected = errors.New("erp: order creation rejected")

	// Config validation errors
	ErrConfigMissingBaseURL  = errors.New("erp: config missing base URL")
	ErrConfigMissingUsername = errors.New("erp: config missing username")
	ErrConfigMissingPassword = errors.New("erp: config missing password")
)

// Config holds ERP connection settings
type Config struct {
	// BaseURL is the ERP API root, without trailing slash
	BaseURL string
	// ClientID is the numeric account id presented at login
	ClientID int64
	// Username and Password are the login credentials
	Username string
	Password string
	// OrderCreatePath overrides the order creation endpoint path
	OrderCreatePath string
	// Timeout bounds each outbound request
	Timeout time.Duration
	// TokenTTL overrides the conservative token cache lifetime
	TokenTTL time.Duration
}

// Validate checks required fields and applies defaults
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.Username == "" {
		return ErrConfigMissingUsername
	}
	if c.Password == "" {
		return ErrConfigMissingPassword
	}
	if c.OrderCreatePath == "" {
		c.OrderCreatePath = defaultOrderCreatePath
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}

// Client talks to the ERP. It owns the token cache, which both the catalog
// sync and the webhook forwarding pipeline go through.
type Client struct {
	config     *Config
	httpClient *http.Client
	tokens     *TokenCache
	logger     *zap.Logger
}

// NewClient creates a Client with the given configuration
func NewClient(config *Config, logger *zap.Logger) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		logger:     logger.Named("erp"),
	}
	c.tokens = newTokenCache(c.doLogin, config.TokenTTL)
	return c, nil
}

// Token returns a valid bearer token from the cache, logging in when needed
func (c *Client) Token(ctx context.Context) (string, error) {
	return c.tokens.Token(ctx)
}

// FetchCatalog retrieves the full supplier catalog as domain items
func (c *Client) FetchCatalog(ctx context.Context) ([]catalog.Item, error) {
	body, status, err := c.doAuthorized(ctx, http.MethodGet, c.config.BaseURL+catalogPath, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: catalog fetch returned HTTP %d: %s", ErrRequestFailed, status, truncate(body))
	}

	var payload []catalogItemPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("erp: failed to parse catalog: %w", err)
	}

	items := make([]catalog.Item, 0, len(payload))
	for _, p := range payload {
		items = append(items, p.toDomain())
	}
	c.logger.Debug("catalog fetched", zap.Int("items", len(items)))
	return items, nil
}

// SubmitOrder forwards a storefront order to the ERP's order-creation endpoint
func (c *Client) SubmitOrder(ctx context.Context, o *order.SupplierOrder) error {
	payload, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("erp: failed to encode order: %w", err)
	}

	body, status, err := c.doAuthorized(ctx, http.MethodPost, c.config.BaseURL+c.config.OrderCreatePath, payload)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("%w: HTTP %d: %s", ErrOrderRejected, status, truncate(body))
	}

	c.logger.Info("order forwarded",
		zap.Int64("shop_order_id", o.ShopOrderID),
		zap.String("order_name", o.OrderName),
	)
	return nil
}

// doLogin performs the login request and returns the raw response body.
// Non-success statuses become an AuthError carrying the upstream diagnostics.
func (c *Client) doLogin(ctx context.Context) ([]byte, error) {
	payload, err := json.Marshal(loginRequest{
		ID:       c.config.ClientID,
		Username: c.config.Username,
		Password: c.config.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("erp: failed to encode login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+loginPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("erp: failed to create login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erp: login request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("erp: failed to read login response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &AuthError{Status: resp.StatusCode, Body: string(body)}
	}

	c.logger.Debug("logged in to ERP")
	return body, nil
}

// doAuthorized performs a bearer-authenticated request. A 401 invalidates the
// cached token and the request is retried once with a fresh one.
func (c *Client) doAuthorized(ctx context.Context, method, url string, payload []byte) ([]byte, int, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, 0, err
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
		if err != nil {
			return nil, 0, fmt.Errorf("erp: failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "*/*")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, 0, fmt.Errorf("erp: request failed: %w", err)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		resp.Body.Close()
		if err != nil {
			return nil, 0, fmt.Errorf("erp: failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.logger.Warn("ERP rejected token, refreshing", zap.String("url", url))
			c.tokens.Invalidate()
			continue
		}
		return body, resp.StatusCode, nil
	}
}

// truncate keeps error messages readable when the ERP returns a large body
func truncate(body []byte) string {
	const limit = 512
	if len(body) <= limit {
		return string(body)
	}
	return string(body[:limit]) + "..."
}

var (
	_ catalog.SupplierGateway = (*Client)(nil)
	_ order.Submitter         = (*Client)(nil)
)
