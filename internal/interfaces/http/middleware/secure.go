package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// The API only serves JSON and PDFs, so nothing may be framed or run
const (
	apiContentSecurityPolicy = "default-src 'none'; frame-ancestors 'none'; base-uri 'none'; form-action 'none'"
	apiPermissionsPolicy     = "camera=(), geolocation=(), microphone=(), payment=(), usb=()"
)

// SecurityHeaders sets the static response hardening headers. hsts > 0
// adds Strict-Transport-Security; only enable it behind TLS.
func SecurityHeaders(hsts time.Duration) gin.HandlerFunc {
	var hstsValue string
	if hsts > 0 {
		hstsValue = "max-age=" + strconv.Itoa(int(hsts/time.Second)) + "; includeSubDomains"
	}
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("Content-Security-Policy", apiContentSecurityPolicy)
		h.Set("Permissions-Policy", apiPermissionsPolicy)
		if hstsValue != "" {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		c.Next()
	}
}
