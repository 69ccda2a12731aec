// Package webhook verifies storefront webhook deliveries and forwards the
// carried order to the supplier.
package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/order"
)

var (
	// ErrInvalidSignature indicates the HMAC header did not match the body
	ErrInvalidSignature = errors.New("webhook: invalid signature")
	// ErrInvalidPayload indicates the body is not a usable order payload
	ErrInvalidPayload = errors.New("webhook: invalid payload")
)

// OrderForwardingService verifies an order-created delivery and submits the
// order to the supplier. Verification always runs against the raw body bytes,
// before any JSON decoding.
type OrderForwardingService struct {
	secret    []byte
	submitter order.Submitter
	validate  *validator.Validate
	logger    *zap.Logger
}

// NewOrderForwardingService creates the service with the shared webhook secret
func NewOrderForwardingService(secret string, submitter order.Submitter, logger *zap.Logger) *OrderForwardingService {
	return &OrderForwardingService{
		secret:    []byte(secret),
		submitter: submitter,
		validate:  validator.New(),
		logger:    logger.Named("webhook"),
	}
}

// VerifySignature checks the base64 HMAC-SHA256 of the raw body against the
// delivery header. Comparison is constant-time.
func (s *OrderForwardingService) VerifySignature(body []byte, signature string) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, s.secret)
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Process verifies, decodes and forwards one delivery. The returned error is
// ErrInvalidSignature or ErrInvalidPayload for caller-side problems; anything
// else is a supplier-side failure.
func (s *OrderForwardingService) Process(ctx context.Context, body []byte, signature string) error {
	if !s.VerifySignature(body, signature) {
		s.logger.Warn("rejected delivery with bad signature", zap.Int("body_bytes", len(body)))
		return ErrInvalidSignature
	}

	var inbound order.InboundOrder
	if err := json.Unmarshal(body, &inbound); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := s.validate.Struct(&inbound); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	supplierOrder := inbound.ToSupplierOrder()
	if err := s.submitter.SubmitOrder(ctx, supplierOrder); err != nil {
		s.logger.Error("order forwarding failed",
			zap.Int64("shop_order_id", inbound.ID),
			zap.String("order_name", inbound.Name),
			zap.Error(err),
		)
		return err
	}

	s.logger.Info("order forwarded",
		zap.Int64("shop_order_id", inbound.ID),
		zap.String("order_name", inbound.Name),
		zap.Int("line_items", len(inbound.LineItems)),
	)
	return nil
}
