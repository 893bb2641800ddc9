package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/vacancy-parser/internal/apperr"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
	"github.com/justsurfingit/vacancy-parser/internal/ratelimit"
)

const (
	ClientIDHeader  = "X-Client-Id"
	DefaultClientID = "parser"
)

// Checker decides whether a client may proceed.
type Checker interface {
	Check(ctx context.Context, clientID string) (ratelimit.Decision, error)
}

// RateLimit admits requests through limiter, keyed by ClientID.
func RateLimit(limiter Checker) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())
		clientID := ClientID(c.Request)

		decision, err := limiter.Check(c.Request.Context(), clientID)
		if err != nil {
			log.Error("Rate limit check failed", logger.Error(err))
			abortWithError(c, apperr.Internal("ratelimit", err), "Internal server error")
			return
		}
		if !decision.Allowed {
			secs := decision.RetryAfterSeconds()
			log.Warn("Rate limit exceeded",
				logger.String("client_id", clientID),
				logger.Int("retry_after", secs),
			)
			abortWithError(c, apperr.RateLimited("ratelimit", time.Duration(secs)*time.Second), "Too many requests")
			return
		}
		c.Next()
	}
}

// ClientID is X-Client-Id, else the first X-Forwarded-For hop, else
// DefaultClientID.
func ClientID(r *http.Request) string {
	if id := strings.TrimSpace(r.Header.Get(ClientIDHeader)); id != "" {
		return id
	}
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	return DefaultClientID
}
