// Package handlers exposes the hydration services over HTTP
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/apierror"
	"github.com/JonnyWalker81/hydration/backend/internal/logger"
	"github.com/JonnyWalker81/hydration/backend/internal/middleware"
	"github.com/JonnyWalker81/hydration/backend/internal/service"
)

// currentUser returns the authenticated user ID, writing a 401 when absent
func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString(middleware.UserIDKey)
	if userID == "" {
		apierror.WriteProblem(c, apierror.NewUnauthorizedError(apierror.GetRequestID(c)))
		return "", false
	}
	return userID, true
}

// writeError maps service errors onto problem details. Unknown errors are
// logged and hidden behind a 500.
func writeError(c *gin.Context, err error) {
	requestID := apierror.GetRequestID(c)

	if problem := apierror.FromAnalyticsError(requestID, err); problem != nil {
		apierror.WriteProblem(c, problem)
		return
	}

	switch {
	case errors.Is(err, service.ErrConflict):
		apierror.WriteProblem(c, apierror.NewConflictError(requestID, "The ID is already used by another resource"))
	default:
		logger.Ctx(c.Request.Context()).Error("request failed", logger.Err(err))
		apierror.WriteProblem(c, apierror.NewInternalError(requestID))
	}
}
