package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storesync/backend/internal/domain/order"
)

const testSecret = "shpss_test_secret"

type fakeSubmitter struct {
	err  error
	got  *order.SupplierOrder
	hits int
}

func (f *fakeSubmitter) SubmitOrder(ctx context.Context, o *order.SupplierOrder) error {
	f.hits++
	f.got = o
	return f.err
}

func sign(t *testing.T, body []byte) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(testSecret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

const orderBody = `{
	"id": 9001,
	"name": "#1001",
	"currency": "ARS",
	"total_price": "121.00",
	"email": "buyer@example.com",
	"line_items": [{"sku": "NTB-001", "quantity": 1, "price": "121.00"}]
}`

func TestProcess_ForwardsVerifiedOrder(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := NewOrderForwardingService(testSecret, submitter, zap.NewNop())

	body := []byte(orderBody)
	require.NoError(t, svc.Process(context.Background(), body, sign(t, body)))

	require.NotNil(t, submitter.got)
	assert.Equal(t, int64(9001), submitter.got.ShopOrderID)
	assert.Equal(t, "#1001", submitter.got.OrderName)
	assert.Equal(t, "buyer@example.com", submitter.got.Customer.Email)
	require.Len(t, submitter.got.Items, 1)
	assert.Equal(t, "NTB-001", submitter.got.Items[0].SKU)
}

func TestProcess_RejectsBadSignature(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := NewOrderForwardingService(testSecret, submitter, zap.NewNop())

	body := []byte(orderBody)
	valid := sign(t, body)

	tests := []struct {
		name      string
		body      []byte
		signature string
	}{
		{name: "empty header", body: body, signature: ""},
		{name: "wrong signature", body: body, signature: "bm90LXRoZS1yaWdodC1tYWM="},
		{name: "tampered body", body: []byte(orderBody + "\n"), signature: valid},
	}
	// A single flipped byte must also invalidate the signature.
	mutated := append([]byte(nil), body...)
	mutated[10] ^= 0x01
	tests = append(tests, struct {
		name      string
		body      []byte
		signature string
	}{name: "single byte flipped", body: mutated, signature: valid})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Process(context.Background(), tt.body, tt.signature)
			assert.ErrorIs(t, err, ErrInvalidSignature)
		})
	}
	assert.Zero(t, submitter.hits, "unverified deliveries never reach the supplier")
}

func TestProcess_RejectsMalformedPayload(t *testing.T) {
	submitter := &fakeSubmitter{}
	svc := NewOrderForwardingService(testSecret, submitter, zap.NewNop())

	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `not json at all`},
		{name: "missing order id", body: `{"name": "#1001"}`},
		{name: "negative quantity", body: `{"id": 1, "line_items": [{"sku": "X", "quantity": -1}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := []byte(tt.body)
			err := svc.Process(context.Background(), body, sign(t, body))
			assert.ErrorIs(t, err, ErrInvalidPayload)
		})
	}
	assert.Zero(t, submitter.hits)
}

func TestProcess_SubmitterFailurePropagates(t *testing.T) {
	wantErr := errors.New("erp unavailable")
	submitter := &fakeSubmitter{err: wantErr}
	svc := NewOrderForwardingService(testSecret, submitter, zap.NewNop())

	body := []byte(orderBody)
	err := svc.Process(context.Background(), body, sign(t, body))

	assert.ErrorIs(t, err, wantErr)
	assert.NotErrorIs(t, err, ErrInvalidSignature)
	assert.NotErrorIs(t, err, ErrInvalidPayload)
}
