// Package middleware provides the gin middleware of the v1 API.
package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"pharmadesk/pkg/logger"
)

// Recovery turns panics into INTERNAL_ERROR responses. The stack is logged,
// never sent. http.ErrAbortHandler is re-raised so the server drops the
// connection.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}

			logger.Error(c.Request.Context(), "panic recovered",
				"error", rec,
				"route", c.FullPath(),
				"stack", string(debug.Stack()),
			)

			// ErrorHandler was unwound with the panic
			if c.Writer.Written() {
				c.Abort()
				return
			}
			status, body := renderError(c, fmt.Errorf("panic: %v", rec))
			c.AbortWithStatusJSON(status, body)
		}()
		c.Next()
	}
}
