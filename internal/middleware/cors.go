package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const corsMaxAgeSeconds = "43200" // 12 hours

var (
	corsAllowedMethods = strings.Join([]string{
		http.MethodGet, http.MethodOptions,
	}, ", ")
	corsAllowedHeaders = strings.Join([]string{
		"Authorization", "Content-Type", "X-Request-ID",
	}, ", ")
)

// CORS sets cross-origin headers for browser dashboards and answers
// preflight requests. The service is read-only, so only GET is allowed.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")

		allowed := allowedOrigin(origin, allowedOrigins)
		if allowed == "" {
			// Origin not allowed; continue without CORS headers.
			c.Next()
			return
		}

		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", allowed)
		h.Set("Access-Control-Allow-Methods", corsAllowedMethods)
		h.Set("Access-Control-Allow-Headers", corsAllowedHeaders)
		h.Set("Access-Control-Max-Age", corsMaxAgeSeconds)
		if allowed != "*" {
			h.Set("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// allowedOrigin returns the origin value to echo back, or "" when the
// request origin is not in the allow list. Requests without an Origin
// header are same-origin and pass through with a wildcard.
func allowedOrigin(origin string, allowedOrigins []string) string {
	if origin == "" {
		return "*"
	}
	for _, a := range allowedOrigins {
		if a == "*" {
			return "*"
		}
		if a == origin {
			return origin
		}
	}
	return ""
}
