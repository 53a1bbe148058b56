package middleware

import "github.com/gin-gonic/gin"

// SecurityOptions tunes SecurityHeaders.
type SecurityOptions struct {
	// HSTS adds Strict-Transport-Security. Enable only when the API is
	// reached over TLS.
	HSTS bool
}

// SecurityHeaders marks every response as an uncacheable, unframeable JSON
// document.
func SecurityHeaders(opts SecurityOptions) gin.HandlerFunc {
	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "no-referrer",
		"Content-Security-Policy": "default-src 'none'; frame-ancestors 'none'",
		"Cache-Control":           "no-store",
	}
	if opts.HSTS {
		headers["Strict-Transport-Security"] = "max-age=63072000; includeSubDomains"
	}

	return func(c *gin.Context) {
		for k, v := range headers {
			c.Header(k, v)
		}

		c.Next()
	}
}
