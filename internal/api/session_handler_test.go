package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jhirschv/Online-Fitness-App-Backend/internal/domain"
	"github.com/jhirschv/Online-Fitness-App-Backend/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stubSessionService overrides only the methods a test exercises; calling
// anything else panics through the embedded nil interface.
type stubSessionService struct {
	service.SessionService
	active    *service.SessionDetails
	deleteErr error
}

func (s *stubSessionService) CheckActive(ctx context.Context, userID primitive.ObjectID) (*service.SessionDetails, error) {
	return s.active, nil
}

func (s *stubSessionService) DeleteLastSet(ctx context.Context, logID primitive.ObjectID) error {
	return s.deleteErr
}

func newSessionTestRouter(svc service.SessionService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewSessionHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(ContextUserIDKey, primitive.NewObjectID().Hex())
		c.Next()
	})
	r.GET("/sessions/active", h.CheckActive)
	r.DELETE("/logs/:logId/sets/last", h.DeleteLastSet)
	return r
}

func TestCheckActiveWithoutSessionAnswersExplicitSentinel(t *testing.T) {
	router := newSessionTestRouter(&stubSessionService{active: nil})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/active", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"active": false}`, rec.Body.String())
}

func TestCheckActiveWithSessionWrapsDetails(t *testing.T) {
	details := &service.SessionDetails{
		WorkoutSession: domain.WorkoutSession{ID: primitive.NewObjectID(), Active: true},
		WorkoutName:    "Day 1",
		Logs:           []service.LogDetails{},
	}
	router := newSessionTestRouter(&stubSessionService{active: details})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/sessions/active", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"active":true`)
	assert.Contains(t, rec.Body.String(), `"Day 1"`)
}

func TestDeleteLastSetStatusCodes(t *testing.T) {
	logID := primitive.NewObjectID()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"empty ledger is not found", service.ErrNoSetsToDelete, http.StatusNotFound},
		{"prescribed floor is unprocessable", service.ErrSetCountAtPlan, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := newSessionTestRouter(&stubSessionService{deleteErr: tc.err})

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodDelete, "/logs/"+logID.Hex()+"/sets/last", nil)
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
