// Package sync implements the catalog synchronization run: supplier catalog
// in, storefront stock and price updates out.
package sync

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/catalog"
)

var (
	// ErrRunInProgress indicates a sync run is already executing; concurrent
	// runs would interleave storefront writes
	ErrRunInProgress = errors.New("sync: a catalog sync run is already in progress")

	// defaultWarehousePriority selects stock when no priority is configured
	defaultWarehousePriority = []string{"stock_caba", "stock_mdp"}
)

// CatalogSyncService drives one full catalog pass. Items are processed
// sequentially in catalog order; outbound pacing is owned by the storefront
// gateway. A failing item is recorded and skipped, never aborting the run.
type CatalogSyncService struct {
	supplier   catalog.SupplierGateway
	storefront catalog.StorefrontGateway
	rates      catalog.RateSource
	priority   []string
	logger     *zap.Logger

	running atomic.Bool
}

// NewCatalogSyncService creates the service. warehousePriority may be nil to
// use the default primary/secondary order.
func NewCatalogSyncService(
	supplier catalog.SupplierGateway,
	storefront catalog.StorefrontGateway,
	rates catalog.RateSource,
	warehousePriority []string,
	logger *zap.Logger,
) *CatalogSyncService {
	if len(warehousePriority) == 0 {
		warehousePriority = defaultWarehousePriority
	}
	return &CatalogSyncService{
		supplier:   supplier,
		storefront: storefront,
		rates:      rates,
		priority:   warehousePriority,
		logger:     logger.Named("sync"),
	}
}

// Run executes one synchronization pass and returns its report. Only a
// catalog fetch failure aborts the run; per-item errors are aggregated.
func (s *CatalogSyncService) Run(ctx context.Context) (*catalog.Report, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	report := catalog.NewReport()
	logger := s.logger.With(zap.String("run_id", report.RunID.String()))

	items, err := s.supplier.FetchCatalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("sync: catalog fetch failed: %w", err)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("sync: %w", catalog.ErrEmptyCatalog)
	}

	// One rate for the whole run; zero means prices stay in USD.
	rate := s.rates.Resolve(ctx)

	logger.Info("sync run started",
		zap.Int("catalog_items", len(items)),
		zap.String("usd_rate", rate.String()),
	)

	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("sync: run cancelled: %w", err)
		}
		s.processItem(ctx, item, rate, report)
	}

	report.FinishedAt = time.Now()
	logger.Info("sync run finished",
		zap.String("status", string(report.Status())),
		zap.Int("updated", report.Updated),
		zap.Int("priced", report.Priced),
		zap.Int("missing", len(report.Missing)),
		zap.Int("failed", len(report.Failures)),
	)
	return report, nil
}

// processItem applies one catalog item to the storefront, recording the
// outcome on the report
func (s *CatalogSyncService) processItem(ctx context.Context, item catalog.Item, rate decimal.Decimal, report *catalog.Report) {
	sku := strings.TrimSpace(item.SKU)
	if sku == "" {
		return
	}

	ref, err := s.storefront.FindVariantBySKU(ctx, sku)
	if err != nil {
		if errors.Is(err, catalog.ErrVariantNotFound) {
			report.RecordMissing(sku)
			return
		}
		report.RecordFailure(sku, catalog.FailureStageLookup, err)
		return
	}

	stock := item.AvailableStock(s.priority)
	if err := s.storefront.SetInventoryLevel(ctx, ref.InventoryItemID, stock); err != nil {
		report.RecordFailure(sku, catalog.FailureStageStock, err)
		return
	}
	report.Updated++

	price := item.UnitPrice(rate)
	if err := s.storefront.UpdateVariantPrice(ctx, ref.VariantID, price); err != nil {
		report.RecordFailure(sku, catalog.FailureStagePrice, err)
		return
	}
	report.Priced++
}
