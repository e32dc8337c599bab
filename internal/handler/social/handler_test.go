package social

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

func (m *mockService) CreatePost(ctx context.Context, req *model.CreatePostRequest, principal *uuid.UUID) (*model.Post, error) {
	args := m.Called(ctx, req, principal)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *mockService) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	args := m.Called(ctx, id)
	post, _ := args.Get(0).(*model.Post)
	return post, args.Error(1)
}

func (m *mockService) Trending(ctx context.Context) (model.ListResult[*model.Post], error) {
	args := m.Called(ctx)
	return args.Get(0).(model.ListResult[*model.Post]), args.Error(1)
}

func (m *mockService) ByCategory(ctx context.Context, category string) (model.ListResult[*model.Post], error) {
	args := m.Called(ctx, category)
	return args.Get(0).(model.ListResult[*model.Post]), args.Error(1)
}

func (m *mockService) ByBarber(ctx context.Context, barberID uuid.UUID) (model.ListResult[*model.Post], error) {
	args := m.Called(ctx, barberID)
	return args.Get(0).(model.ListResult[*model.Post]), args.Error(1)
}

func (m *mockService) CreateRating(ctx context.Context, req *model.CreateRatingRequest, principal *uuid.UUID) (*model.Rating, error) {
	args := m.Called(ctx, req, principal)
	rating, _ := args.Get(0).(*model.Rating)
	return rating, args.Error(1)
}

func (m *mockService) UpdateRating(ctx context.Context, id uuid.UUID, req *model.UpdateRatingRequest) (*model.Rating, error) {
	args := m.Called(ctx, id, req)
	rating, _ := args.Get(0).(*model.Rating)
	return rating, args.Error(1)
}

func (m *mockService) DeleteRating(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
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

func do(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestCreatePostPassesPrincipal(t *testing.T) {
	barber := uuid.New()
	engine, svc := setup(t, &barber)
	category := model.PostCategories[0]

	svc.On("CreatePost", mock.Anything, mock.MatchedBy(func(req *model.CreatePostRequest) bool {
		return req.Title == "Skin fade" && req.Category == category
	}), &barber).Return(&model.Post{Title: "Skin fade"}, nil)

	w := do(engine, http.MethodPost, "/api/v1/barber-social", `{"title":"Skin fade","category":"`+category+`"}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(engine, http.MethodPost, "/api/v1/barber-social", `{"title":"Skin fade","category":"knitting"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"category is invalid"}`, w.Body.String())

	svc.AssertNumberOfCalls(t, "CreatePost", 1)
}

func TestListings(t *testing.T) {
	engine, svc := setup(t, nil)
	barber := uuid.New()
	empty := model.NewListResult[*model.Post](nil)

	svc.On("Trending", mock.Anything).Return(empty, nil)
	svc.On("ByCategory", mock.Anything, "fade").Return(empty, nil)
	svc.On("ByBarber", mock.Anything, barber).Return(empty, nil)

	for _, path := range []string{
		"/api/v1/barber-social/trending",
		"/api/v1/barber-social/by-category/fade",
		"/api/v1/barber-social/by-barber/" + barber.String(),
	} {
		w := do(engine, http.MethodGet, path, "")
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.JSONEq(t, `{"docs":[],"totalDocs":0}`, w.Body.String(), path)
	}
	svc.AssertExpectations(t)
}

func TestGetPost(t *testing.T) {
	engine, svc := setup(t, nil)
	id := uuid.New()
	svc.On("GetPost", mock.Anything, id).Return(nil, errors.NotFound("post", nil))

	w := do(engine, http.MethodGet, "/api/v1/barber-social/"+id.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"post not found"}`, w.Body.String())
}

func TestRatings(t *testing.T) {
	engine, svc := setup(t, nil)
	post, rating := uuid.New(), uuid.New()

	svc.On("CreateRating", mock.Anything, mock.MatchedBy(func(req *model.CreateRatingRequest) bool {
		return req.Post == post && req.Rating == 8
	}), (*uuid.UUID)(nil)).Return(&model.Rating{Rating: 8}, nil)
	svc.On("UpdateRating", mock.Anything, rating, &model.UpdateRatingRequest{Rating: 9}).Return(&model.Rating{Rating: 9}, nil)
	svc.On("DeleteRating", mock.Anything, rating).Return(nil)

	w := do(engine, http.MethodPost, "/api/v1/barber-ratings", `{"post":"`+post.String()+`","rating":8}`)
	assert.Equal(t, http.StatusCreated, w.Code)

	w = do(engine, http.MethodPost, "/api/v1/barber-ratings", `{"post":"`+post.String()+`","rating":11}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"rating must be at most 10"}`, w.Body.String())

	w = do(engine, http.MethodPut, "/api/v1/barber-ratings/"+rating.String(), `{"rating":9}`)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(engine, http.MethodDelete, "/api/v1/barber-ratings/"+rating.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true,"message":"Rating deleted successfully"}`, w.Body.String())

	svc.AssertExpectations(t)
}
