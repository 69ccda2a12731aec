package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/infrastructure/logger"
	"github.com/storesync/backend/internal/interfaces/http/dto"
)

// tokenPreviewLength is how many token characters the login preview exposes
const tokenPreviewLength = 14

// TokenSource yields a valid ERP session token
type TokenSource func(ctx context.Context) (string, error)

// ERPHandler exposes diagnostic endpoints against the GN ERP
type ERPHandler struct {
	BaseHandler
	tokens TokenSource
}

// NewERPHandler creates a new ERPHandler
func NewERPHandler(tokens TokenSource) *ERPHandler {
	return &ERPHandler{tokens: tokens}
}

// RegisterRoutes registers the ERP diagnostic routes
func (h *ERPHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/gn/login", h.LoginPreview)
}

// LoginPreview authenticates against the ERP and returns a truncated token.
// Confirms credentials and connectivity without leaking the session token.
func (h *ERPHandler) LoginPreview(c *gin.Context) {
	token, err := h.tokens(c.Request.Context())
	if err != nil {
		logger.FromGin(c).Error("erp login failed", zap.Error(err))
		h.InternalError(c, "erp login failed")
		return
	}

	preview := token
	if len(preview) > tokenPreviewLength {
		preview = preview[:tokenPreviewLength] + "..."
	}
	h.OK(c, dto.LoginPreviewResponse{OK: true, TokenPreview: preview})
}
