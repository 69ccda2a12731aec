package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// SystemHandler handles health and liveness endpoints
type SystemHandler struct {
	BaseHandler
	serviceName string
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(serviceName string) *SystemHandler {
	return &SystemHandler{serviceName: serviceName}
}

// RegisterRoutes registers the system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// Health reports that the service is up. It does not probe upstreams; the
// bridge stays healthy even while the ERP or storefront are down.
func (h *SystemHandler) Health(c *gin.Context) {
	h.OK(c, dto.HealthResponse{
		OK:      true,
		Service: h.serviceName,
		Time:    time.Now().UTC(),
	})
}
