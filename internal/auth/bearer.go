// Package auth checks the shared secret callers present as a bearer token.
package auth

import (
	"crypto/subtle"
	"strings"
)

const bearerPrefix = "Bearer "

type BearerValidator struct {
	secret []byte
}

func NewBearerValidator(secret string) *BearerValidator {
	return &BearerValidator{secret: []byte(secret)}
}

// Validate reports whether header is "Bearer <token>" with token equal to
// the configured secret. It always fails when no secret is configured.
func (v *BearerValidator) Validate(header string) bool {
	if len(v.secret) == 0 {
		return false
	}
	token, ok := strings.CutPrefix(header, bearerPrefix)
	if !ok || token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), v.secret) == 1
}

// Configured reports whether a secret is set.
func (v *BearerValidator) Configured() bool {
	return len(v.secret) > 0
}
