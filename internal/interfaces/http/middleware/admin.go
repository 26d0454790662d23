package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lexdesk/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// AdminKeyHeader carries the back-office API key
const AdminKeyHeader = "X-Admin-Key"

// AdminKey protects back-office routes with a static key. An empty key
// disables the routes entirely.
func AdminKey(key string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		if key == "" {
			c.AbortWithStatusJSON(http.StatusNotFound, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeNotFound, "Not found", GetRequestID(c)))
			return
		}
		given := c.GetHeader(AdminKeyHeader)
		if subtle.ConstantTimeCompare([]byte(given), []byte(key)) != 1 {
			logger.Warn("Rejected back-office request",
				zap.String("path", c.Request.URL.Path),
				zap.String("client_ip", c.ClientIP()))
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Invalid admin key", GetRequestID(c)))
			return
		}
		c.Next()
	}
}
