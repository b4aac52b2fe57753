package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JonnyWalker81/hydration/backend/internal/analytics"
	"github.com/JonnyWalker81/hydration/backend/internal/service"
)

type HydrationHandler struct {
	hydrationService service.HydrationService
}

// NewHydrationHandler creates a new hydration analytics handler
func NewHydrationHandler(hydrationService service.HydrationService) *HydrationHandler {
	return &HydrationHandler{hydrationService: hydrationService}
}

// GetAnalysis handles GET /api/v1/analytics/analysis
func (h *HydrationHandler) GetAnalysis(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	analysis, err := h.hydrationService.Analysis(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, analysis)
}

// GetRecommendations handles GET /api/v1/analytics/recommendations
func (h *HydrationHandler) GetRecommendations(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	rec, err := h.hydrationService.Recommendations(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// GetProgress handles GET /api/v1/analytics/progress?period=week
func (h *HydrationHandler) GetProgress(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	period := c.DefaultQuery("period", analytics.DefaultPeriod)
	report, err := h.hydrationService.Progress(c.Request.Context(), userID, period)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetWeekly handles GET /api/v1/analytics/weekly
func (h *HydrationHandler) GetWeekly(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.hydrationService.Weekly(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// GetReport handles GET /api/v1/analytics/report
func (h *HydrationHandler) GetReport(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	report, err := h.hydrationService.FullReport(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
