package api

import (
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

// AnalyticsHandler holds the analytics service dependency.
type AnalyticsHandler struct {
	analyticsService service.AnalyticsService
}

// NewAnalyticsHandler creates a new AnalyticsHandler.
func NewAnalyticsHandler(analyticsService service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsService: analyticsService}
}

// WeeklySessionHistogram returns session counts per ISO week, trailing 90 days.
func (h *AnalyticsHandler) WeeklySessionHistogram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	buckets, err := h.analyticsService.WeeklySessionHistogram(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, buckets)
}

// Exercise1RMSeries returns the per-day best estimated one-rep max for an
// exercise, trailing 180 days.
func (h *AnalyticsHandler) Exercise1RMSeries(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	points, err := h.analyticsService.Exercise1RMSeries(c.Request.Context(), userID, exerciseID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// CumulativeTonnage returns daily lifted volume over the trailing week.
func (h *AnalyticsHandler) CumulativeTonnage(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	points, err := h.analyticsService.CumulativeTonnage(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

// ExercisesWithHistory lists exercises the caller has logged weighted sets for.
func (h *AnalyticsHandler) ExercisesWithHistory(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exercises, err := h.analyticsService.ExercisesWithHistory(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]ExerciseResponse, len(exercises))
	for i := range exercises {
		responses[i] = MapExerciseToResponse(&exercises[i])
	}
	c.JSON(http.StatusOK, responses)
}
