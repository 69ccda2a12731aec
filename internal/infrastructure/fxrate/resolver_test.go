package fxrate

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestResolver(t *testing.T, cfg Config) *Resolver {
	t.Helper()
	return NewResolver(cfg, zap.NewNop())
}

func TestResolver_FixedRateWins(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.Write([]byte(`{"rate": 900}`))
	}))
	defer srv.Close()

	r := newTestResolver(t, Config{
		FixedRate:   decimal.NewFromInt(1000),
		LiveRateURL: srv.URL,
	})

	rate := r.Resolve(context.Background())
	assert.Equal(t, "1000", rate.String())
	assert.False(t, called, "fixed rate must short-circuit the live lookup")
}

func TestResolver_NoSourcesConfigured(t *testing.T) {
	r := newTestResolver(t, Config{})
	assert.True(t, r.Resolve(context.Background()).IsZero())
}

func TestResolver_LiveRateFieldNames(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "rate field", body: `{"rate": 987.5}`, want: "987.5"},
		{name: "valor field", body: `{"valor": 1015}`, want: "1015"},
		{name: "rate as string", body: `{"rate": "850.25"}`, want: "850.25"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			r := newTestResolver(t, Config{LiveRateURL: srv.URL})
			assert.Equal(t, tt.want, r.Resolve(context.Background()).String())
		})
	}
}

func TestResolver_LiveFailuresReturnZero(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "upstream error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
		},
		{
			name: "unparseable body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "unknown shape",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"cotizacion": 950}`))
			},
		},
		{
			name: "negative rate",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"rate": -3}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			r := newTestResolver(t, Config{LiveRateURL: srv.URL})
			assert.True(t, r.Resolve(context.Background()).IsZero())
		})
	}
}

func TestResolver_UnreachableEndpointReturnsZero(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // Deliberately closed before use.

	r := newTestResolver(t, Config{LiveRateURL: srv.URL, Timeout: time.Second})
	assert.True(t, r.Resolve(context.Background()).IsZero())
}

func TestFetchLiveRate_UnknownShapeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"unexpected": 1}`))
	}))
	defer srv.Close()

	r := newTestResolver(t, Config{LiveRateURL: srv.URL})
	_, err := r.fetchLiveRate(context.Background())
	require.ErrorIs(t, err, ErrUnknownRateShape)
}
