package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"invprov/internal/shared/logger"
)

// Logger logs one line per request, at a level chosen by the response status.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		args := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
		}

		// canonical name of the subscription or subscriber the request targets
		if name := c.Param("name"); name != "" {
			args = append(args, "entity", name)
		}
		if requestID := GetRequestID(c); requestID != "" {
			args = append(args, "request_id", requestID)
		}
		if len(c.Errors) > 0 {
			args = append(args, "error", c.Errors.String())
		}

		status := c.Writer.Status()
		switch {
		case status >= 500:
			log.Errorw("provisioning request failed", args...)
		case status >= 400:
			log.Warnw("provisioning request rejected", args...)
		default:
			log.Infow("provisioning request completed", args...)
		}
	}
}
