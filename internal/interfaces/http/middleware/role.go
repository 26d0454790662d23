package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/domain/firm"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	Logger *zap.Logger
	// OnDenied is called when the role is not allowed (optional)
	OnDenied func(c *gin.Context, allowed []firm.Role)
}

// RequireRole lets the request through only for the listed roles
func RequireRole(roles ...firm.Role) gin.HandlerFunc {
	return RequireRoleWithConfig(RoleConfig{}, roles...)
}

// RequireFirmManager allows owners and admins
func RequireFirmManager() gin.HandlerFunc {
	return RequireRole(firm.RoleOwner, firm.RoleAdmin)
}

// RequireRoleWithConfig creates role middleware with custom config
func RequireRoleWithConfig(cfg RoleConfig, roles ...firm.Role) gin.HandlerFunc {
	allowed := make(map[firm.Role]struct{}, len(roles))
	for _, r := range roles {
		if !r.IsValid() {
			panic("unknown role: " + string(r))
		}
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			abortUnauthenticated(c)
			return
		}
		if _, ok := allowed[firm.Role(claims.Role)]; ok {
			c.Next()
			return
		}

		if cfg.OnDenied != nil {
			cfg.OnDenied(c, roles)
			c.Abort()
			return
		}
		if cfg.Logger != nil {
			cfg.Logger.Warn("Role not allowed",
				zap.String("profile_id", claims.ProfileID),
				zap.String("role", claims.Role),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method))
		}
		c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
			dto.ErrCodeForbidden, "Your role does not allow this action", GetRequestID(c)))
	}
}

// HasRole reports whether the authenticated profile has one of roles
func HasRole(c *gin.Context, roles ...firm.Role) bool {
	current := firm.Role(GetRole(c))
	for _, r := range roles {
		if r == current {
			return true
		}
	}
	return false
}
