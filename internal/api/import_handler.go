package api

import (
	"fmt"
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/planner"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ImportHandler holds the import service dependency.
type ImportHandler struct {
	importService service.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// --- Request Structs ---

type GenerateRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// --- Handler Methods ---

// GenerateProgram asks the plan generator for a full program and imports it.
func (h *ImportHandler) GenerateProgram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	details, err := h.importService.GenerateProgram(c.Request.Context(), userID, req.Prompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

// GenerateWorkout asks the generator for one workout and appends it to the
// program.
func (h *ImportHandler) GenerateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	details, err := h.importService.GenerateWorkout(c.Request.Context(), userID, programID, req.Prompt)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

// ImportProgram imports a pre-generated program payload directly, without
// calling the generator.
func (h *ImportHandler) ImportProgram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var payload planner.GeneratedProgram
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	details, err := h.importService.ImportProgram(c.Request.Context(), userID, &payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

// ImportWorkout imports a pre-generated workout payload into a program.
func (h *ImportHandler) ImportWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	var payload planner.GeneratedWorkout
	if err := c.ShouldBindJSON(&payload); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	details, err := h.importService.ImportWorkout(c.Request.Context(), userID, programID, &payload)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}
