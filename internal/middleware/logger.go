package middleware

import (
	"bytes"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/logger"
)

// RequestIDHeader carries the correlation ID in and out
const RequestIDHeader = "X-Request-ID"

// maxLoggedBody caps request bodies copied into debug logs
const maxLoggedBody = 4 << 10

// Logger assigns a request ID, attaches a request-scoped logger to the
// context and logs every completed request. With logBodies set, request
// bodies are logged at debug level.
func Logger(base logger.Logger, logBodies bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ctx := logger.WithRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		requestID := logger.RequestIDFromContext(ctx)
		ctx = logger.WithLogger(ctx, base)
		c.Request = c.Request.WithContext(ctx)
		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		if logBodies && c.Request.Body != nil {
			body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
			if err == nil {
				c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
				logger.Ctx(ctx).Debug("request body", logger.String("body", string(body)))
			}
		}

		c.Next()

		status := c.Writer.Status()
		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", status),
			logger.Duration("latency", time.Since(start)),
			logger.String("client_ip", c.ClientIP()),
		}

		// Auth middleware replaces the request context with the user ID
		log := logger.Ctx(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("request completed", fields...)
		case status >= 400:
			log.Warn("request completed", fields...)
		default:
			log.Info("request completed", fields...)
		}
	}
}
