package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"

	"daylog/internal/pkg/logger"
)

// RequestLogger logs one line per request and recovers from panics,
// answering them with a 500 {"error": ...} body.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				err := fmt.Errorf("%v", recovered)
				log.Error("request_panic",
					requestFields(c, start, "error", err.Error(), "stack", string(debug.Stack()))...,
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
				return
			}

			for _, err := range c.Errors {
				log.Warn("request_error",
					requestFields(c, start, "type", fmt.Sprintf("%v", err.Type), "error", err.Error())...,
				)
			}

			status := c.Writer.Status()
			switch {
			case status >= http.StatusInternalServerError:
				log.Error("request", requestFields(c, start)...)
			case status >= http.StatusBadRequest:
				log.Warn("request", requestFields(c, start)...)
			default:
				log.Info("request", requestFields(c, start)...)
			}
		}()

		c.Next()
	}
}

func requestFields(c *gin.Context, start time.Time, extra ...interface{}) []interface{} {
	fields := []interface{}{
		"status", c.Writer.Status(),
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"client_ip", c.ClientIP(),
		"request_id", requestID(c),
		"latency", time.Since(start),
	}
	return append(fields, extra...)
}

func requestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-Id")
	}
	return requestID
}
