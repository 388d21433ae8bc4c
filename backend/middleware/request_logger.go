package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/thermalytics/thermoinsights/backend/pkg/logger"
)

// RequestLogger logs one access line per request. It reads the request
// context after the chain has run, so the session and submission IDs set
// further down are included.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		uploaded := c.Request.ContentLength

		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"status", status,
			"method", c.Request.Method,
			"path", path,
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
			"bytes", c.Writer.Size(),
		}
		if route := c.FullPath(); route != "" && route != path {
			attrs = append(attrs, "route", route)
		}
		if uploaded > 0 {
			attrs = append(attrs, "upload_bytes", uploaded)
		}
		if query != "" {
			attrs = append(attrs, "query", query)
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate); len(errs) > 0 {
			attrs = append(attrs, "error", errs.String())
		}

		log := logger.WithContext(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("request completed", attrs...)
		case status >= 400:
			log.Warn("request completed", attrs...)
		default:
			log.Info("request completed", attrs...)
		}
	}
}

// SetSubmission tags the rest of the request, including its access line,
// with the analysis submission it concerns
func SetSubmission(c *gin.Context, submissionID string) {
	if submissionID == "" {
		return
	}
	c.Request = c.Request.WithContext(logger.WithSubmission(c.Request.Context(), submissionID))
}
