// Package dto defines the wire shapes of the bridge's HTTP API.
package dto

import (
	"time"

	"github.com/storesync/backend/internal/domain/catalog"
)

// HealthResponse is the GET /api/health body
type HealthResponse struct {
	OK      bool      `json:"ok"`
	Service string    `json:"service"`
	Time    time.Time `json:"time"`
}

// LoginPreviewResponse is the GET /api/gn/login body. Only a short token
// prefix is ever exposed.
type LoginPreviewResponse struct {
	OK           bool   `json:"ok"`
	TokenPreview string `json:"token_preview"`
}

// SyncFailure is one item that failed during a sync run
type SyncFailure struct {
	SKU    string `json:"sku"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// SyncResponse is the GET /api/sync/stock body
type SyncResponse struct {
	OK      bool          `json:"ok"`
	RunID   string        `json:"run_id"`
	Status  string        `json:"status"`
	Updated int           `json:"updated"`
	Priced  int           `json:"priced"`
	Missing []string      `json:"missing"`
	Failed  []SyncFailure `json:"failed"`
}

// NewSyncResponse maps a sync report onto the wire shape
func NewSyncResponse(report *catalog.Report) SyncResponse {
	failed := make([]SyncFailure, 0, len(report.Failures))
	for _, f := range report.Failures {
		failed = append(failed, SyncFailure{
			SKU:    f.SKU,
			Stage:  string(f.Stage),
			Reason: f.Reason,
		})
	}
	return SyncResponse{
		OK:      true,
		RunID:   report.RunID.String(),
		Status:  string(report.Status()),
		Updated: report.Updated,
		Priced:  report.Priced,
		Missing: report.Missing,
		Failed:  failed,
	}
}

// WebhookAck is the POST /api/webhooks/order-created success body
type WebhookAck struct {
	OK bool `json:"ok"`
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// NewErrorResponse creates an error response
func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{OK: false, Error: message}
}
