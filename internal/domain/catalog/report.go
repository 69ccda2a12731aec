package catalog

import (
	"time"

	"github.com/google/uuid"
)

// SyncStatus summarizes the overall outcome of a sync run
type SyncStatus string

const (
	// SyncStatusSuccess indicates every resolved item was updated
	SyncStatusSuccess SyncStatus = "SUCCESS"
	// SyncStatusPartial indicates some items failed but others were updated
	SyncStatusPartial SyncStatus = "PARTIAL"
	// SyncStatusFailed indicates no item could be updated
	SyncStatusFailed SyncStatus = "FAILED"
)

// FailureStage identifies where a per-item failure occurred
type FailureStage string

const (
	// FailureStageLookup is a failed variant lookup (other than a clean miss)
	FailureStageLookup FailureStage = "lookup"
	// FailureStageStock is a failed inventory level update
	FailureStageStock FailureStage = "stock"
	// FailureStagePrice is a failed variant price update
	FailureStagePrice FailureStage = "price"
)

// ItemFailure records one item that could not be fully processed.
// A failed item never aborts the run; it is aggregated into the Report.
type ItemFailure struct {
	SKU    string
	Stage  FailureStage
	Reason string
}

// Report is the result of one catalog sync run. Never persisted.
type Report struct {
	// RunID identifies the run in logs and responses
	RunID uuid.UUID
	// Updated counts successful stock updates
	Updated int
	// Priced counts successful price updates
	Priced int
	// Missing lists SKUs unknown to the storefront, in catalog order
	Missing []string
	// Failures lists items that failed lookup or update
	Failures []ItemFailure
	// StartedAt and FinishedAt bound the run
	StartedAt  time.Time
	FinishedAt time.Time
}

// NewReport creates an empty report for a new run
func NewReport() *Report {
	return &Report{
		RunID:     uuid.New(),
		Missing:   make([]string, 0),
		Failures:  make([]ItemFailure, 0),
		StartedAt: time.Now(),
	}
}

// RecordMissing records a SKU the storefront does not know
func (r *Report) RecordMissing(sku string) {
	r.Missing = append(r.Missing, sku)
}

// RecordFailure records a per-item failure without aborting the run
func (r *Report) RecordFailure(sku string, stage FailureStage, err error) {
	r.Failures = append(r.Failures, ItemFailure{
		SKU:    sku,
		Stage:  stage,
		Reason: err.Error(),
	})
}

// Status derives the overall outcome from the recorded counts
func (r *Report) Status() SyncStatus {
	switch {
	case len(r.Failures) == 0:
		return SyncStatusSuccess
	case r.Updated > 0 || r.Priced > 0:
		return SyncStatusPartial
	default:
		return SyncStatusFailed
	}
}
