package api

import (
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ProgressHandler holds the progress service dependency.
type ProgressHandler struct {
	progressService service.ProgressService
}

// NewProgressHandler creates a new ProgressHandler.
func NewProgressHandler(progressService service.ProgressService) *ProgressHandler {
	return &ProgressHandler{progressService: progressService}
}

// Activate makes the program the caller's current one, deactivating any other.
func (h *ProgressHandler) Activate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	progress, err := h.progressService.Activate(c.Request.Context(), userID, programID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// Deactivate clears the active flag on the caller's engagement with the program.
func (h *ProgressHandler) Deactivate(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	if err := h.progressService.Deactivate(c.Request.Context(), userID, programID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetActiveProgram returns the program the caller is currently engaged with.
func (h *ProgressHandler) GetActiveProgram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	program, err := h.progressService.GetActiveProgram(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}
