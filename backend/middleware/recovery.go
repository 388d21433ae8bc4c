package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

// Recovery middleware recovers from panics and logs the error. A panic from
// writing to a client that has gone away (large PDF downloads, ?wait=true
// submits) is logged at warn level and gets no response body.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			ctx := c.Request.Context()

			if clientGone(err) {
				logger.Warn(ctx, "client connection closed", "error", err, "path", c.Request.URL.Path)
				c.Abort()
				return
			}

			logger.Error(ctx, "panic recovered",
				"error", err,
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"stack", string(debug.Stack()),
			)

			if c.Writer.Written() {
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":      "Internal server error",
				"request_id": GetRequestID(c),
			})
		}()

		c.Next()
	}
}

func clientGone(recovered any) bool {
	err, ok := recovered.(error)
	if !ok {
		return false
	}
	return errors.Is(err, http.ErrAbortHandler) ||
		errors.Is(err, syscall.EPIPE) ||
		errors.Is(err, syscall.ECONNRESET)
}
