package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestControllerOf(t *testing.T) {
	tests := map[string]string{
		"/api/v1/cases/:id/time-entries": "cases",
		"/api/v1/invoices":               "invoices",
		"/health":                        "health",
		"/api/v2/:id":                    "",
		"":                               "",
	}
	for route, want := range tests {
		t.Run(route, func(t *testing.T) {
			assert.Equal(t, want, controllerOf(route))
		})
	}
}

func TestProfiling_PassesThrough(t *testing.T) {
	router := gin.New()
	router.Use(Profiling(true, []string{"/health"}))
	router.GET("/api/v1/cases/:id", okHandler)
	router.GET("/health", okHandler)

	assert.Equal(t, http.StatusOK, serveWithToken(router, "/api/v1/cases/1", "").Code)
	assert.Equal(t, http.StatusOK, serveWithToken(router, "/health", "").Code)
	assert.Equal(t, http.StatusNotFound, serveWithToken(router, "/missing", "").Code)
}
