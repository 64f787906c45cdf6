package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/learnaistudio/course-engine/pkg/config"
)

func TestHealth(t *testing.T) {
	cfg := &config.Config{Version: "test", Env: "local"}
	mux := http.NewServeMux()
	NewHealthHandler(cfg, zap.NewNop()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestPing(t *testing.T) {
	cfg := &config.Config{Version: "1.2.3", Env: "local"}
	mux := http.NewServeMux()
	NewHealthHandler(cfg, zap.NewNop()).RegisterRoutes(mux)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp PingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "course-engine", resp.Service)
	assert.Equal(t, "local", resp.Environment)
}
