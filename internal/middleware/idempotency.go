package middleware

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/apierror"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/repository"
)

const (
	// IdempotencyKeyHeader is the HTTP header name for idempotency keys
	IdempotencyKeyHeader = "Idempotency-Key"
	// IdempotencyReplayedHeader marks a response served from the cache
	IdempotencyReplayedHeader = "X-Idempotency-Replayed"
)

// idempotencyBodyWriter captures the response body for idempotency caching
type idempotencyBodyWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *idempotencyBodyWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key on the same route and user. Only POST, PUT and PATCH are
// considered; requests without the header pass through.
func Idempotency(repo repository.IdempotencyRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodPatch {
			c.Next()
			return
		}

		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}

		userID := c.GetString(UserIDKey)
		if userID == "" {
			log.Warn("idempotency check failed: no user_id in context")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		route := method + " " + c.FullPath()

		existing, err := repo.Get(c.Request.Context(), key, route, userID)
		if err != nil {
			// Proceed without idempotency rather than block a valid request
			log.Error("failed to check idempotency key",
				logger.Err(err),
				logger.String("key", key),
			)
			c.Next()
			return
		}

		if existing != nil {
			log.Info("replaying idempotent response",
				logger.String("key", key),
				logger.String("route", route),
				logger.Int("status_code", existing.StatusCode),
			)

			c.Header(IdempotencyReplayedHeader, "true")
			c.Data(existing.StatusCode, "application/json", existing.ResponseBody)
			c.Abort()
			return
		}

		blw := &idempotencyBodyWriter{
			body:           bytes.NewBuffer(nil),
			ResponseWriter: c.Writer,
		}
		c.Writer = blw

		c.Next()

		statusCode := c.Writer.Status()
		if statusCode < 200 || statusCode >= 300 {
			return
		}
		if err := repo.Store(c.Request.Context(), key, route, userID, blw.body.Bytes(), statusCode); err != nil {
			log.Warn("failed to store idempotency key",
				logger.Err(err),
				logger.String("key", key),
			)
			return
		}
		log.Debug("stored idempotency key",
			logger.String("key", key),
			logger.String("route", route),
			logger.Int("status_code", statusCode),
		)
	}
}
