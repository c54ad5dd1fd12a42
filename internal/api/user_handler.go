package api

import (
	"fmt"
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service dependency.
type UserHandler struct {
	userService service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// --- Request/Response Structs ---

type SetPublicKeyRequest struct {
	PublicKey string `json:"publicKey" binding:"required"`
}

type ProfileImageUploadRequest struct {
	ContentType string `json:"contentType" binding:"required"`
}

type ConfirmProfileImageRequest struct {
	ObjectKey string `json:"objectKey" binding:"required"`
}

type AddClientRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// --- Handler Methods ---

// GetMe returns the authenticated user's account details.
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(user))
}

// SetPublicKey stores the caller's encryption public key.
func (h *UserHandler) SetPublicKey(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req SetPublicKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.userService.SetPublicKey(c.Request.Context(), userID, req.PublicKey); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// RequestProfileImageUploadURL returns a pre-signed PUT URL for a new
// profile image.
func (h *UserHandler) RequestProfileImageUploadURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ProfileImageUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	resp, err := h.userService.RequestProfileImageUploadURL(c.Request.Context(), userID, req.ContentType)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmProfileImage records the uploaded object as the profile image.
func (h *UserHandler) ConfirmProfileImage(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req ConfirmProfileImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	if err := h.userService.ConfirmProfileImage(c.Request.Context(), userID, req.ObjectKey); err != nil {
		respondServiceError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// GetProfileImageURL returns a temporary download URL for the profile image.
func (h *UserHandler) GetProfileImageURL(c *gin.Context) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	url, err := h.userService.GetProfileImageURL(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"downloadUrl": url})
}

// AddClientByEmail links a client account to the calling trainer.
func (h *UserHandler) AddClientByEmail(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	var req AddClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, fmt.Sprintf("Validation error: %v", err))
		return
	}

	client, err := h.userService.AddClientByEmail(c.Request.Context(), trainerID, req.Email)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapUserToResponse(client))
}

// GetManagedClients lists the calling trainer's clients.
func (h *UserHandler) GetManagedClients(c *gin.Context) {
	trainerID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
		return
	}

	clients, err := h.userService.GetManagedClients(c.Request.Context(), trainerID)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	responses := make([]UserResponse, len(clients))
	for i := range clients {
		responses[i] = MapUserToResponse(&clients[i])
	}
	c.JSON(http.StatusOK, responses)
}
