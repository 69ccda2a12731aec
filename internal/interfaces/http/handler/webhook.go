package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appwebhook "github.com/storesync/backend/internal/application/webhook"
	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// maxWebhookPayloadSize bounds the raw webhook body (1MB)
const maxWebhookPayloadSize = 1 << 20

// shopifyHMACHeader carries the base64 HMAC of the raw body
const shopifyHMACHeader = "X-Shopify-Hmac-Sha256"

// WebhookHandler receives storefront webhook deliveries. These endpoints are
// called by the storefront and carry their own HMAC authentication.
type WebhookHandler struct {
	BaseHandler
	service *appwebhook.OrderForwardingService
}

// NewWebhookHandler creates a new WebhookHandler
func NewWebhookHandler(service *appwebhook.OrderForwardingService) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// RegisterRoutes registers the webhook routes
func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/webhooks/order-created", h.HandleOrderCreated)
}

// HandleOrderCreated verifies and forwards one order-created delivery.
// The raw body is read before any decoding; the HMAC covers the exact bytes.
func (h *WebhookHandler) HandleOrderCreated(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookPayloadSize)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.Error(c, http.StatusRequestEntityTooLarge, "payload too large")
			return
		}
		h.BadRequest(c, "failed to read request body")
		return
	}

	signature := c.GetHeader(shopifyHMACHeader)
	if signature == "" {
		h.Unauthorized(c, "missing "+shopifyHMACHeader+" header")
		return
	}

	err = h.service.Process(c.Request.Context(), payload, signature)
	switch {
	case err == nil:
		h.OK(c, dto.WebhookAck{OK: true})
	case errors.Is(err, appwebhook.ErrInvalidSignature):
		h.Unauthorized(c, "webhook signature verification failed")
	case errors.Is(err, appwebhook.ErrInvalidPayload):
		h.BadRequest(c, "invalid order payload")
	default:
		logger.FromGin(c).Error("order forwarding failed", zap.Error(err))
		h.InternalError(c, "failed to forward order")
	}
}
