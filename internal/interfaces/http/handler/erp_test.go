package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestERPHandler_LoginPreview(t *testing.T) {
	engine := newTestRouter(NewERPHandler(func(ctx context.Context) (string, error) {
		return "eyJhbGciOiJIUzI1NiJ9.payload.signature", nil
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gn/login", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["ok"])
	assert.Equal(t, "eyJhbGciOiJIUz...", body["token_preview"], "token must be truncated")
}

func TestERPHandler_LoginPreview_ShortToken(t *testing.T) {
	engine := newTestRouter(NewERPHandler(func(ctx context.Context) (string, error) {
		return "short", nil
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gn/login", nil))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "short", body["token_preview"])
}

func TestERPHandler_LoginPreview_Failure(t *testing.T) {
	engine := newTestRouter(NewERPHandler(func(ctx context.Context) (string, error) {
		return "", errors.New("bad credentials")
	}))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/gn/login", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, false, body["ok"])
	assert.NotContains(t, body["error"], "bad credentials", "upstream detail stays out of the response")
}
