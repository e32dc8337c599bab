package challenge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/validator"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, req *model.CreateChallengeRequest, principal *uuid.UUID) (*model.Challenge, error) {
	args := m.Called(ctx, req, principal)
	ch, _ := args.Get(0).(*model.Challenge)
	return ch, args.Error(1)
}

func (m *mockService) Active(ctx context.Context) (model.ListResult[*model.Challenge], error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ListResult[*model.Challenge]), args.Error(1)
}

func (m *mockService) Join(ctx context.Context, challengeID uuid.UUID, userID *uuid.UUID) (*model.Challenge, error) {
	args := m.Called(ctx, challengeID, userID)
	ch, _ := args.Get(0).(*model.Challenge)
	return ch, args.Error(1)
}

func setup(t *testing.T, principal *uuid.UUID) (*gin.Engine, *mockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterWithGin(model.ValidationRules()))

	svc := &mockService{}
	engine := gin.New()
	if principal != nil {
		engine.Use(func(c *gin.Context) {
			c.Set(middleware.ContextPrincipal, *principal)
			c.Next()
		})
	}
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine, svc
}

func post(engine *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestJoinChallenge(t *testing.T) {
	engine, svc := setup(t, nil)
	challenge, user := uuid.New(), uuid.New()

	svc.On("Join", mock.Anything, challenge, &user).Return(&model.Challenge{}, nil)
	svc.On("Join", mock.Anything, challenge, (*uuid.UUID)(nil)).Return(nil, errors.Validation("User ID required"))

	w := post(engine, "/api/v1/barber-challenges/join/"+challenge.String(), `{"userId":"`+user.String()+`"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Successfully joined challenge"}`, w.Body.String())

	w = post(engine, "/api/v1/barber-challenges/join/"+challenge.String(), `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"User ID required"}`, w.Body.String())

	w = post(engine, "/api/v1/barber-challenges/join/nope", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid challenge ID"}`, w.Body.String())

	svc.AssertExpectations(t)
}

func TestJoinChallengeFallsBackToPrincipal(t *testing.T) {
	caller := uuid.New()
	engine, svc := setup(t, &caller)
	challenge := uuid.New()

	svc.On("Join", mock.Anything, challenge, &caller).Return(nil, errors.LimitReached("challenge is full"))

	w := post(engine, "/api/v1/barber-challenges/join/"+challenge.String(), "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"challenge is full"}`, w.Body.String())
	svc.AssertExpectations(t)
}

func TestCreateAndListChallenges(t *testing.T) {
	engine, svc := setup(t, nil)

	svc.On("Create", mock.Anything, mock.MatchedBy(func(req *model.CreateChallengeRequest) bool {
		return req.Title == "Best fade" && req.MaxParticipants == 10
	}), (*uuid.UUID)(nil)).Return(&model.Challenge{Title: "Best fade"}, nil)
	svc.On("Active", mock.Anything).Return(model.NewListResult[*model.Challenge](nil), nil)

	w := post(engine, "/api/v1/barber-challenges", `{"title":"Best fade","maxParticipants":10}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = post(engine, "/api/v1/barber-challenges", `{"title":"Best fade","difficulty":"impossible"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/barber-challenges/active", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"docs":[],"totalDocs":0}`, w.Body.String())

	svc.AssertExpectations(t)
}
