package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/vacancy-parser/internal/apperr"
	"github.com/justsurfingit/vacancy-parser/internal/dtos"
)

// abortWithError stops the chain with the status of err's kind. Rate-limit
// errors also set Retry-After.
func abortWithError(c *gin.Context, err error, msg string) {
	resp := dtos.ErrorResponse{Error: msg}
	if d := apperr.RetryAfterOf(err); d > 0 {
		secs := int(d / time.Second)
		c.Header("Retry-After", strconv.Itoa(secs))
		resp.RetryAfter = secs
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(apperr.KindOf(err).HTTPStatus(), resp)
}
