package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appsync "github.com/storesync/backend/internal/application/sync"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// SyncHandler exposes the catalog sync run
type SyncHandler struct {
	BaseHandler
	service *appsync.CatalogSyncService
}

// NewSyncHandler creates a new SyncHandler
func NewSyncHandler(service *appsync.CatalogSyncService) *SyncHandler {
	return &SyncHandler{service: service}
}

// RegisterRoutes registers the sync routes
func (h *SyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/sync/stock", h.RunStockSync)
}

// RunStockSync executes one synchronous catalog sync run and answers with
// its report. A run already in flight yields 409.
func (h *SyncHandler) RunStockSync(c *gin.Context) {
	report, err := h.service.Run(c.Request.Context())
	if err != nil {
		if errors.Is(err, appsync.ErrRunInProgress) {
			h.Conflict(c, "a sync run is already in progress")
			return
		}
		logger.FromGin(c).Error("sync run failed", zap.Error(err))
		h.InternalError(c, "catalog sync failed: could not fetch the supplier catalog")
		return
	}

	h.OK(c, dto.NewSyncResponse(report))
}
