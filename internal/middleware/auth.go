package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/apierror"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/pkg/supabase"
)

// Context keys set by Auth
const (
	UserIDKey    = "user_id"
	UserEmailKey = "user_email"
)

// TokenVerifier resolves a bearer token to a user
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*supabase.User, error)
}

// DevVerifier accepts any non-empty token and uses it as the user ID.
// Only for local development against the sqlite store.
type DevVerifier struct{}

func (DevVerifier) VerifyToken(_ context.Context, token string) (*supabase.User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, errors.New("empty token")
	}
	return &supabase.User{ID: token}, nil
}

// Auth middleware to verify bearer tokens
func Auth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := logger.FromContext(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			log.Debug("authentication failed: missing authorization header")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			log.Debug("authentication failed: invalid authorization format")
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		token := parts[1]

		user, err := verifier.VerifyToken(c.Request.Context(), token)
		if err != nil {
			log.Warn("authentication failed: token verification error",
				logger.Err(err),
			)
			apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
			return
		}

		c.Set(UserIDKey, user.ID)
		c.Set(UserEmailKey, user.Email)

		// Add user ID to request context for logging
		ctx := logger.WithUserID(c.Request.Context(), user.ID)
		c.Request = c.Request.WithContext(ctx)

		log.Debug("authentication successful", logger.String("user_id", user.ID))

		c.Next()
	}
}
