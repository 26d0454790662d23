package middleware

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/infrastructure/auth"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"github.com/stretchr/testify/assert"
)

func asRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if role != "" {
			c.Set(JWTClaimsKey, &auth.Claims{ProfileID: "p-1", Role: role})
			c.Set(JWTRoleKey, role)
		}
		c.Next()
	}
}

func TestRequireFirmManager(t *testing.T) {
	tests := []struct {
		role       string
		wantStatus int
	}{
		{"owner", http.StatusOK},
		{"admin", http.StatusOK},
		{"lawyer", http.StatusForbidden},
		{"assistant", http.StatusForbidden},
		{"", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			router := gin.New()
			router.Use(asRole(tt.role))
			router.GET("/firm", RequireFirmManager(), okHandler)

			rec := serveWithToken(router, "/firm", "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusForbidden {
				assert.Equal(t, dto.ErrCodeForbidden, decodeError(t, rec).Code)
			}
		})
	}
}

func TestRequireRoleWithConfig_OnDenied(t *testing.T) {
	var denied []firm.Role
	cfg := RoleConfig{OnDenied: func(c *gin.Context, allowed []firm.Role) {
		denied = allowed
		c.Status(http.StatusTeapot)
	}}

	router := gin.New()
	router.Use(asRole("assistant"))
	router.GET("/x", RequireRoleWithConfig(cfg, firm.RoleOwner), okHandler)

	rec := serveWithToken(router, "/x", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, []firm.Role{firm.RoleOwner}, denied)
}

func TestRequireRole_UnknownRolePanics(t *testing.T) {
	assert.Panics(t, func() { RequireRole(firm.Role("partner")) })
}

func TestHasRole(t *testing.T) {
	router := gin.New()
	router.Use(asRole("lawyer"))
	router.GET("/x", func(c *gin.Context) {
		assert.True(t, HasRole(c, firm.RoleLawyer, firm.RoleAdmin))
		assert.False(t, HasRole(c, firm.RoleOwner))
		okHandler(c)
	})

	rec := serveWithToken(router, "/x", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}
