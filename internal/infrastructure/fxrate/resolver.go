// Package fxrate resolves the USD-to-local conversion rate applied to
// supplier prices during a catalog sync run.
package fxrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
)

// maxResponseSize limits the live-rate endpoint response (64KB)
const maxResponseSize = 64 * 1024

// ErrUnknownRateShape indicates the live-rate response matched none of the
// documented field names
var ErrUnknownRateShape = errors.New("fxrate: unrecognized rate response shape")

// Config holds currency resolution settings
type Config struct {
	// FixedRate wins outright when positive; zero disables conversion
	FixedRate decimal.Decimal
	// LiveRateURL is an optional endpoint queried when no fixed rate is set
	LiveRateURL string
	// Timeout bounds the live-rate request
	Timeout time.Duration
}

// Resolver implements catalog.RateSource
type Resolver struct {
	fixed      decimal.Decimal
	liveURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewResolver creates a Resolver from config
func NewResolver(cfg Config, logger *zap.Logger) *Resolver {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Resolver{
		fixed:      cfg.FixedRate,
		liveURL:    cfg.LiveRateURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.Named("fxrate"),
	}
}

// Resolve returns the conversion rate for one sync run. Resolution order:
// fixed rate, then live lookup, then zero ("keep USD"). Live lookup failures
// are logged and swallowed; this path never aborts the caller.
func (r *Resolver) Resolve(ctx context.Context) decimal.Decimal {
	if r.fixed.IsPositive() {
		return r.fixed
	}
	if r.liveURL == "" {
		return decimal.Zero
	}

	rate, err := r.fetchLiveRate(ctx)
	if err != nil {
		r.logger.Warn("live rate lookup failed, keeping USD pricing", zap.Error(err))
		return decimal.Zero
	}
	return rate
}

// liveRatePayload is the tagged union of documented live-rate response shapes
type liveRatePayload struct {
	Rate  *json.Number `json:"rate"`
	Valor *json.Number `json:"valor"`
}

func (r *Resolver) fetchLiveRate(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.liveURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fxrate: failed to create request: %w", err)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("fxrate: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decimal.Zero, fmt.Errorf("fxrate: rate endpoint returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return decimal.Zero, fmt.Errorf("fxrate: failed to read response: %w", err)
	}

	var payload liveRatePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return decimal.Zero, fmt.Errorf("fxrate: failed to parse response: %w", err)
	}

	raw := payload.Rate
	if raw == nil {
		raw = payload.Valor
	}
	if raw == nil {
		return decimal.Zero, ErrUnknownRateShape
	}

	rate, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero, fmt.Errorf("fxrate: invalid rate value %q: %w", raw.String(), err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("fxrate: negative rate %s", rate)
	}
	return rate, nil
}

var _ catalog.RateSource = (*Resolver)(nil)
