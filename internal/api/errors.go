package api

import (
	"errors"
	"net/http"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/planner"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// respondServiceError maps service-layer sentinel errors to HTTP status
// codes. Not found -> 404, conflicts -> 409, invalid operations -> 422,
// bad payloads -> 400, upstream generator failures -> 502. Anything
// unrecognized is logged and answered with a generic 500 so internals never
// leak to clients.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *service.ValidationError
	if errors.As(err, &validationErr) {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":  "Generated plan failed validation",
			"fields": validationErr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, service.ErrProgramNotFound),
		errors.Is(err, service.ErrWorkoutNotFound),
		errors.Is(err, service.ErrWorkoutExerciseNotFound),
		errors.Is(err, service.ErrExerciseNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, service.ErrLogNotFound),
		errors.Is(err, service.ErrSetNotFound),
		errors.Is(err, service.ErrProgressNotFound),
		errors.Is(err, service.ErrNoActiveProgram),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrClientNotFound),
		errors.Is(err, service.ErrVideoMissing),
		errors.Is(err, service.ErrProfileImageMissing),
		errors.Is(err, service.ErrNoSetsToDelete):
		abortWithError(c, http.StatusNotFound, err.Error())

	case errors.Is(err, service.ErrSessionAlreadyActive),
		errors.Is(err, service.ErrSessionAlreadyCompleted),
		errors.Is(err, service.ErrProgressAlreadyInactive),
		errors.Is(err, service.ErrUserAlreadyExists),
		errors.Is(err, service.ErrClientAlreadyAssigned):
		abortWithError(c, http.StatusConflict, err.Error())

	case errors.Is(err, service.ErrSetCountAtPlan),
		errors.Is(err, service.ErrExerciseNotEditable):
		abortWithError(c, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrSetNotOwned),
		errors.Is(err, service.ErrNotATrainer),
		errors.Is(err, service.ErrClientNotRole):
		abortWithError(c, http.StatusForbidden, err.Error())

	case errors.Is(err, service.ErrNameRequired),
		errors.Is(err, service.ErrPromptRequired):
		abortWithError(c, http.StatusBadRequest, err.Error())

	case errors.Is(err, planner.ErrUpstream),
		errors.Is(err, planner.ErrMalformedPlan):
		abortWithError(c, http.StatusBadGateway, err.Error())

	default:
		log.WithError(err).Error("Unhandled service error")
		abortWithError(c, http.StatusInternalServerError, "An unexpected error occurred")
	}
}
