package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

var (
	corsMethods = strings.Join([]string{http.MethodPost, http.MethodOptions}, ", ")
	corsHeaders = strings.Join([]string{"Authorization", "Content-Type", "X-Client-Id", RequestIDHeader}, ", ")
)

// CORS echoes the request origin when it is allowed and the first allowed
// origin otherwise. Browsers enforce the result; the server serves the
// request either way. Preflight requests end here with 204.
func CORS(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if origin := pickOrigin(c.GetHeader("Origin"), allowedOrigins); origin != "" {
			h := c.Writer.Header()
			h.Set("Access-Control-Allow-Origin", origin)
			h.Set("Access-Control-Allow-Methods", corsMethods)
			h.Set("Access-Control-Allow-Headers", corsHeaders)
			h.Set("Access-Control-Max-Age", "86400")
			h.Add("Vary", "Origin")
		}

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func pickOrigin(origin string, allowed []string) string {
	if len(allowed) == 0 {
		return ""
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return a
		}
	}
	return allowed[0]
}
