package api

import (
	"fmt"
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CatalogHandler holds the catalog service dependency.
type CatalogHandler struct {
	catalogService service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// --- Request/Response Structs ---

type CreateProgramRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type UpdateProgramRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CreateWorkoutRequest struct {
	Name  string `json:"name" binding:"required"`
	Order *int   `json:"order"`
}

type UpdateWorkoutRequest struct {
	Name string `json:"name" binding:"required"`
}

type AddWorkoutExerciseRequest struct {
	ExerciseID string `json:"exerciseId" binding:"required"`
	Sets       int    `json:"sets" binding:"required,gt=0"`
	Reps       int    `json:"reps" binding:"required,gt=0"`
	Note       string `json:"note"`
	Order      *int   `json:"order"`
}

type UpdateWorkoutExerciseRequest struct {
	Sets int    `json:"sets" binding:"required,gt=0"`
	Reps int    `json:"reps" binding:"required,gt=0"`
	Note string `json:"note"`
}

type CreateExerciseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	VideoURL    string `json:"videoUrl"`
}

type OrderUpdateRequest struct {
	ID    string `json:"id" binding:"required"`
	Order int    `json:"order"`
}

type ReorderRequest struct {
	Updates []OrderUpdateRequest `json:"updates" binding:"required,min=1,dive"`
}

type ExerciseResponse struct {
	ID          string `json:"id"`
	CreatorID   string `json:"creatorId,omitempty"` // Empty for universal exercises
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	VideoURL    string `json:"videoUrl,omitempty"`
	Universal   bool   `json:"universal"`
}

// --- Handler Methods: Programs ---

func (h *CatalogHandler) CreateProgram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.catalogService.CreateProgram(c.Request.Context(), userID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, program)
}

func (h *CatalogHandler) GetProgram(c *gin.Context) {
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	details, err := h.catalogService.GetProgram(c.Request.Context(), programID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	programs, err := h.catalogService.ListPrograms(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

func (h *CatalogHandler) UpdateProgram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	var req UpdateProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	program, err := h.catalogService.UpdateProgram(c.Request.Context(), userID, programID, req.Name, req.Description)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, program)
}

func (h *CatalogHandler) DeleteProgram(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteProgram(c.Request.Context(), userID, programID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Handler Methods: Workouts ---

func (h *CatalogHandler) CreateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	var req CreateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.catalogService.CreateWorkout(c.Request.Context(), userID, programID, req.Name, req.Order)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, workout)
}

func (h *CatalogHandler) GetWorkout(c *gin.Context) {
	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	details, err := h.catalogService.GetWorkout(c.Request.Context(), workoutID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

func (h *CatalogHandler) UpdateWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	var req UpdateWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	workout, err := h.catalogService.UpdateWorkout(c.Request.Context(), userID, workoutID, req.Name)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, workout)
}

func (h *CatalogHandler) DeleteWorkout(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteWorkout(c.Request.Context(), userID, workoutID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderWorkouts applies new order keys. A partial result (some IDs not
// found) answers 206 with the report so the client can reconcile.
func (h *CatalogHandler) ReorderWorkouts(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	programID, ok := parseObjectIDParam(c, "programId")
	if !ok {
		return
	}

	updates, ok := bindOrderUpdates(c)
	if !ok {
		return
	}

	report, err := h.catalogService.ReorderWorkouts(c.Request.Context(), userID, programID, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondReorderReport(c, report)
}

// --- Handler Methods: Workout Exercises ---

func (h *CatalogHandler) AddWorkoutExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	var req AddWorkoutExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	exerciseID, err := primitive.ObjectIDFromHex(req.ExerciseID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid exerciseId format")
		return
	}

	we, err := h.catalogService.AddWorkoutExercise(c.Request.Context(), userID, workoutID, exerciseID, req.Sets, req.Reps, req.Note, req.Order)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, we)
}

func (h *CatalogHandler) UpdateWorkoutExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	weID, ok := parseObjectIDParam(c, "workoutExerciseId")
	if !ok {
		return
	}

	var req UpdateWorkoutExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	we, err := h.catalogService.UpdateWorkoutExercise(c.Request.Context(), userID, weID, req.Sets, req.Reps, req.Note)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, we)
}

func (h *CatalogHandler) RemoveWorkoutExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	weID, ok := parseObjectIDParam(c, "workoutExerciseId")
	if !ok {
		return
	}

	if err := h.catalogService.RemoveWorkoutExercise(c.Request.Context(), userID, weID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *CatalogHandler) ReorderWorkoutExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	workoutID, ok := parseObjectIDParam(c, "workoutId")
	if !ok {
		return
	}

	updates, ok := bindOrderUpdates(c)
	if !ok {
		return
	}

	report, err := h.catalogService.ReorderWorkoutExercises(c.Request.Context(), userID, workoutID, updates)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondReorderReport(c, report)
}

// --- Handler Methods: Exercise Library ---

func (h *CatalogHandler) CreateExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalogService.CreateExercise(c.Request.Context(), userID, req.Name, req.Description, req.VideoURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapExerciseToResponse(exercise))
}

func (h *CatalogHandler) ListExercises(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	exercises, err := h.catalogService.ListExercises(c.Request.Context(), userID)
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

func (h *CatalogHandler) UpdateExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	var req CreateExerciseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	exercise, err := h.catalogService.UpdateExercise(c.Request.Context(), userID, exerciseID, req.Name, req.Description, req.VideoURL)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapExerciseToResponse(exercise))
}

func (h *CatalogHandler) DeleteExercise(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	exerciseID, ok := parseObjectIDParam(c, "exerciseId")
	if !ok {
		return
	}

	if err := h.catalogService.DeleteExercise(c.Request.Context(), userID, exerciseID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --- Mapping Helpers ---

// MapExerciseToResponse converts a domain Exercise to its DTO.
func MapExerciseToResponse(exercise *domain.Exercise) ExerciseResponse {
	resp := ExerciseResponse{
		ID:          exercise.ID.Hex(),
		Name:        exercise.Name,
		Description: exercise.Description,
		VideoURL:    exercise.VideoURL,
		Universal:   exercise.IsUniversal(),
	}
	if exercise.CreatorID != nil {
		resp.CreatorID = exercise.CreatorID.Hex()
	}
	return resp
}

func bindOrderUpdates(c *gin.Context) ([]service.OrderUpdate, bool) {
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return nil, false
	}

	updates := make([]service.OrderUpdate, 0, len(req.Updates))
	for _, u := range req.Updates {
		id, err := primitive.ObjectIDFromHex(u.ID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Invalid id in updates: %s", u.ID))
			return nil, false
		}
		updates = append(updates, service.OrderUpdate{ID: id, Order: u.Order})
	}
	return updates, true
}

func respondReorderReport(c *gin.Context, report *service.ReorderReport) {
	status := http.StatusOK
	if len(report.Missing) > 0 {
		status = http.StatusPartialContent
	}
	c.JSON(status, report)
}
