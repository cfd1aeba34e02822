package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/wellfield/rigops/internal/logger"
)

// RequestID attaches a unique ID to each request, honoring an incoming
// X-Request-ID header.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// RequestLogger logs one structured entry per request: method, path, status,
// duration, client IP and request ID.
func RequestLogger(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		method := c.Request.Method

		c.Next()

		fields := []logger.Field{
			logger.String("method", method),
			logger.String("path", path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
			logger.String("request_id", c.GetString("request_id")),
		}
		if query != "" {
			fields = append(fields, logger.String("query", query))
		}

		if len(c.Errors) > 0 {
			msgs := make([]string, len(c.Errors))
			for i, err := range c.Errors {
				msgs[i] = err.Err.Error()
			}
			fields = append(fields, logger.Strings("errors", msgs))
			log.Error("HTTP request with errors", fields...)
			return
		}

		// Health probes stay at debug to keep the log stream readable.
		if strings.HasPrefix(path, "/health") {
			log.Debug("HTTP request", fields...)
			return
		}
		log.Info("HTTP request", fields...)
	}
}

// Recovery catches panics, logs them, and returns a 500.
func Recovery(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				log.Error("Panic recovered",
					logger.Any("error", err),
					logger.String("path", c.Request.URL.Path),
					logger.String("method", c.Request.Method),
				)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": "internal server error",
				})
			}
		}()
		c.Next()
	}
}
