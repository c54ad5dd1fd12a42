package api

import (
	"fmt"
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

// SessionHandler holds the session service dependency.
type SessionHandler struct {
	sessionService service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// --- Request/Response Structs ---

type StartSessionRequest struct {
	WorkoutID string `json:"workoutId" binding:"required"`
}

type LogSetRequest struct {
	Reps       *int     `json:"reps"`
	WeightUsed *float64 `json:"weightUsed"`
}

type LogNoteRequest struct {
	Note string `json:"note"`
}

type SetVideoUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmSetVideoRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	FileSize    int64  `json:"fileSize"`
	ContentType string `json:"contentType"`
}

// --- Handler Methods ---

// Start begins a session for the given workout and returns it fully seeded.
func (h *SessionHandler) Start(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}
	workoutID, ok := parseObjectIDFromString(c, req.WorkoutID, "workoutId")
	if !ok {
		return
	}

	details, err := h.sessionService.Start(c.Request.Context(), userID, workoutID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, details)
}

// CheckActive returns the caller's active session. Answers 200 with
// {"active": false} when there is none; absence is not an error.
func (h *SessionHandler) CheckActive(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	details, err := h.sessionService.CheckActive(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if details == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": true, "session": details})
}

// End marks the session completed.
func (h *SessionHandler) End(c *gin.Context) {
	sessionID, ok := parseObjectIDParam(c, "sessionId")
	if !ok {
		return
	}

	if err := h.sessionService.End(c.Request.Context(), sessionID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AppendSet adds one set to the end of the log.
func (h *SessionHandler) AppendSet(c *gin.Context) {
	logID, ok := parseObjectIDParam(c, "logId")
	if !ok {
		return
	}

	set, err := h.sessionService.AppendSet(c.Request.Context(), logID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, set)
}

// DeleteLastSet removes the highest-numbered set of the log.
func (h *SessionHandler) DeleteLastSet(c *gin.Context) {
	logID, ok := parseObjectIDParam(c, "logId")
	if !ok {
		return
	}

	if err := h.sessionService.DeleteLastSet(c.Request.Context(), logID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// LogSet records the performed reps and weight of a set.
func (h *SessionHandler) LogSet(c *gin.Context) {
	setID, ok := parseObjectIDParam(c, "setId")
	if !ok {
		return
	}

	var req LogSetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	set, err := h.sessionService.LogSetPerformance(c.Request.Context(), setID, req.Reps, req.WeightUsed)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// SetLogNote stores the note on an exercise log.
func (h *SessionHandler) SetLogNote(c *gin.Context) {
	logID, ok := parseObjectIDParam(c, "logId")
	if !ok {
		return
	}

	var req LogNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.sessionService.SetLogNote(c.Request.Context(), logID, req.Note); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestSetVideoUploadURL returns a pre-signed PUT URL for set video evidence.
func (h *SessionHandler) RequestSetVideoUploadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	setID, ok := parseObjectIDParam(c, "setId")
	if !ok {
		return
	}

	var req SetVideoUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.sessionService.RequestSetVideoUploadURL(c.Request.Context(), userID, setID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmSetVideo links an uploaded video to the set.
func (h *SessionHandler) ConfirmSetVideo(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	setID, ok := parseObjectIDParam(c, "setId")
	if !ok {
		return
	}

	var req ConfirmSetVideoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	set, err := h.sessionService.ConfirmSetVideo(c.Request.Context(), userID, setID, req.ObjectKey, req.FileName, req.FileSize, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, set)
}

// GetSetVideoDownloadURL returns a temporary URL for viewing the set's video.
func (h *SessionHandler) GetSetVideoDownloadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	setID, ok := parseObjectIDParam(c, "setId")
	if !ok {
		return
	}

	url, err := h.sessionService.GetSetVideoDownloadURL(c.Request.Context(), userID, setID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// RemoveSetVideo detaches and deletes the set's video.
func (h *SessionHandler) RemoveSetVideo(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}
	setID, ok := parseObjectIDParam(c, "setId")
	if !ok {
		return
	}

	if err := h.sessionService.RemoveSetVideo(c.Request.Context(), userID, setID); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
