package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// SecurityOptions configures SecurityHeaders.
type SecurityOptions struct {
	// EnableHSTS adds Strict-Transport-Security. Only enable when the
	// service is actually served over TLS, otherwise browsers may pin
	// HTTPS for a host that cannot speak it.
	EnableHSTS bool

	// HSTSMaxAge is the max-age in seconds for HSTS. Defaults to one year
	// when zero or negative.
	HSTSMaxAge int

	// NoStore adds Cache-Control: no-store. API responses for an
	// authenticated chat service carry per-user data and should not be
	// cached by intermediaries.
	NoStore bool

	// EnablePolicy adds a restrictive Content-Security-Policy and
	// Permissions-Policy. Safe for a JSON API; disable when serving
	// HTML (e.g. embedded Swagger UI) from the same process.
	EnablePolicy bool
}

const defaultHSTSMaxAge = 31536000

// SecurityHeaders returns a middleware that sets common security headers
// on every response.
func SecurityHeaders(opts SecurityOptions) gin.HandlerFunc {
	maxAge := opts.HSTSMaxAge
	if maxAge <= 0 {
		maxAge = defaultHSTSMaxAge
	}
	hstsValue := "max-age=" + strconv.Itoa(maxAge) + "; includeSubDomains"

	return func(c *gin.Context) {
		h := c.Writer.Header()

		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		h.Set("Referrer-Policy", "no-referrer")

		if opts.EnableHSTS && c.Request.TLS != nil {
			h.Set("Strict-Transport-Security", hstsValue)
		}
		if opts.NoStore {
			h.Set("Cache-Control", "no-store")
		}
		if opts.EnablePolicy {
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=()")
		}

		c.Next()
	}
}
