package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/apierror"
	"github.com/JonnyWalker81/hydration/backend/internal/models"
	"github.com/JonnyWalker81/hydration/backend/internal/service"
)

type IntakeHandler struct {
	intakeService service.IntakeService
}

// NewIntakeHandler creates a new intake handler
func NewIntakeHandler(intakeService service.IntakeService) *IntakeHandler {
	return &IntakeHandler{intakeService: intakeService}
}

// RecordIntake handles POST /api/v1/intake.
// Returns 201 for a new event and 200 when the ID was already recorded.
func (h *IntakeHandler) RecordIntake(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	var req models.CreateIntakeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierror.WriteProblem(c, apierror.FromBindingError(apierror.GetRequestID(c), err))
		return
	}

	event, created, err := h.intakeService.RecordIntake(c.Request.Context(), userID, &req)
	if err != nil {
		requestID := apierror.GetRequestID(c)
		switch {
		case errors.Is(err, service.ErrInvalidUUID), errors.Is(err, service.ErrNotUUIDv7):
			apierror.WriteProblem(c, apierror.NewInvalidUUIDError(requestID, "id", *req.ID))
		case errors.Is(err, service.ErrFutureTimestamp):
			apierror.WriteProblem(c, apierror.NewFutureTimestampError(requestID, futureField(&req)))
		default:
			writeError(c, err)
		}
		return
	}

	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	c.JSON(status, event)
}

// futureField names the field that tripped the clock skew check. The
// timestamp is checked before the ID.
func futureField(req *models.CreateIntakeRequest) string {
	if req.ID == nil || service.ValidateTimestamp(req.Timestamp, time.Now()) != nil {
		return "timestamp"
	}
	return "id"
}

// ListIntake handles GET /api/v1/intake?limit=50&offset=0
func (h *IntakeHandler) ListIntake(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), "limit must be an integer", "Invalid limit"))
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil {
		apierror.WriteProblem(c, apierror.NewBadRequestError(apierror.GetRequestID(c), "offset must be an integer", "Invalid offset"))
		return
	}

	resp, err := h.intakeService.ListIntake(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// DeleteIntake handles DELETE /api/v1/intake/:id
func (h *IntakeHandler) DeleteIntake(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	intakeID := c.Param("id")
	if err := h.intakeService.DeleteIntake(c.Request.Context(), userID, intakeID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			apierror.WriteProblem(c, apierror.NewNotFoundError(apierror.GetRequestID(c), "Intake", intakeID))
			return
		}
		writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
