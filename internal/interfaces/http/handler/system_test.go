package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemHandler_GetSystemInfo(t *testing.T) {
	h := NewSystemHandler("lexdesk", "1.2.3")
	router := gin.New()
	router.GET("/system/info", h.GetSystemInfo)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/system/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIResponse[SystemInfoResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "lexdesk", resp.Data.Name)
	assert.Equal(t, "1.2.3", resp.Data.Version)
	assert.Equal(t, runtime.Version(), resp.Data.GoVersion)
}

func TestSystemHandler_Ping(t *testing.T) {
	h := NewSystemHandler("lexdesk", "dev")
	router := gin.New()
	router.GET("/system/ping", h.Ping)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/system/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIResponse[PingResponse]
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "pong", resp.Data.Message)
	assert.NotEmpty(t, resp.Data.Timestamp)
}

func TestSystemHandler_Health(t *testing.T) {
	ok := func(context.Context) error { return nil }
	failing := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		checks     map[string]HealthCheck
		wantStatus int
		wantState  string
		wantChecks map[string]string
	}{
		{
			name:       "no checks registered",
			checks:     nil,
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{},
		},
		{
			name:       "all dependencies up",
			checks:     map[string]HealthCheck{"database": ok, "redis": ok},
			wantStatus: http.StatusOK,
			wantState:  "healthy",
			wantChecks: map[string]string{"database": "ok", "redis": "ok"},
		},
		{
			name:       "one dependency down",
			checks:     map[string]HealthCheck{"database": ok, "redis": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "unhealthy",
			wantChecks: map[string]string{"database": "ok", "redis": "error"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewSystemHandler("lexdesk", "dev")
			for name, check := range tt.checks {
				h.AddCheck(name, check)
			}
			router := gin.New()
			router.GET("/health", h.Health)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var resp APIResponse[HealthResponse]
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus == http.StatusOK, resp.Success)
			assert.Equal(t, tt.wantState, resp.Data.Status)
			assert.Equal(t, tt.wantChecks, resp.Data.Checks)
		})
	}
}
