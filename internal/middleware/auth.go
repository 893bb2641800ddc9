package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/vacancy-parser/internal/apperr"
	"github.com/justsurfingit/vacancy-parser/internal/logger"
)

var errBadCredentials = errors.New("missing or invalid bearer token")

// Validator checks an Authorization header value.
type Validator interface {
	Validate(header string) bool
}

// Auth rejects requests whose Authorization header does not carry the secret.
func Auth(v Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !v.Validate(c.GetHeader("Authorization")) {
			logger.FromContext(c.Request.Context()).Warn("Unauthorized request",
				logger.String("client_ip", c.ClientIP()),
			)
			abortWithError(c, apperr.Auth("auth", errBadCredentials), "Unauthorized")
			return
		}
		c.Next()
	}
}
