package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lexdesk/backend/internal/infrastructure/logger"
)

func serve(t *testing.T, mw gin.HandlerFunc, method string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	r := gin.New()
	r.Use(mw)
	r.GET("/cases", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	req := httptest.NewRequest(method, "/cases", nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCORS(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"https://app.lexdesk.cm"}
	mw := CORS(cfg)

	tests := []struct {
		name       string
		method     string
		origin     string
		wantStatus int
		wantOrigin string
		wantCreds  string
	}{
		{"allowed origin", http.MethodGet, "https://app.lexdesk.cm", http.StatusOK, "https://app.lexdesk.cm", "true"},
		{"unknown origin", http.MethodGet, "https://evil.example", http.StatusOK, "", ""},
		{"same origin request", http.MethodGet, "", http.StatusOK, "", ""},
		{"preflight allowed", http.MethodOptions, "https://app.lexdesk.cm", http.StatusNoContent, "https://app.lexdesk.cm", "true"},
		{"preflight unknown", http.MethodOptions, "https://evil.example", http.StatusNoContent, "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(t, mw, tt.method, http.Header{"Origin": {tt.origin}})
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCreds, w.Header().Get("Access-Control-Allow-Credentials"))
		})
	}
}

func TestCORS_Wildcard(t *testing.T) {
	cfg := DefaultCORSConfig()
	cfg.AllowOrigins = []string{"*"}

	w := serve(t, CORS(cfg), http.MethodGet, http.Header{"Origin": {"https://anywhere.example"}})

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, SubscriptionStateHeader)
	assert.Contains(t, exposed, GraceDaysRemainingHeader)
	assert.Equal(t, "43200", w.Header().Get("Access-Control-Max-Age"))
}

func TestCORS_ClosedByDefault(t *testing.T) {
	w := serve(t, CORS(DefaultCORSConfig()), http.MethodGet, http.Header{"Origin": {"https://app.lexdesk.cm"}})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestID(t *testing.T) {
	router := gin.New()
	router.Use(RequestID(nil))
	router.GET("/cases", func(c *gin.Context) {
		assert.Equal(t, GetRequestID(c), logger.GetRequestID(c.Request.Context()))
		c.String(http.StatusOK, GetRequestID(c))
	})
	do := func(id string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/cases", nil)
		if id != "" {
			req.Header.Set(RequestIDHeader, id)
		}
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("generated", func(t *testing.T) {
		w := do("")
		_, err := uuid.Parse(w.Header().Get(RequestIDHeader))
		assert.NoError(t, err)
		assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())
	})
	t.Run("kept from upstream", func(t *testing.T) {
		w := do("req-from-gateway")
		assert.Equal(t, "req-from-gateway", w.Body.String())
	})
	t.Run("oversized replaced", func(t *testing.T) {
		w := do(strings.Repeat("x", 500))
		assert.Len(t, w.Header().Get(RequestIDHeader), 36)
	})
}

func TestSecurityHeaders(t *testing.T) {
	w := serve(t, SecurityHeaders(365*24*time.Hour), http.MethodGet, nil)
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "max-age=31536000; includeSubDomains", w.Header().Get("Strict-Transport-Security"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")

	w = serve(t, SecurityHeaders(0), http.MethodGet, nil)
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))
}
