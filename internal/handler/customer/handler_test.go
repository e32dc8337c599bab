package customer

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

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/validator"
)

type mockService struct {
	mock.Mock
}

func (m *mockService) Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	args := m.Called(ctx, req)
	customer, _ := args.Get(0).(*model.Customer)
	return customer, args.Error(1)
}

func (m *mockService) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, id)
	customer, _ := args.Get(0).(*model.Customer)
	return customer, args.Error(1)
}

func setup(t *testing.T) (*gin.Engine, *mockService) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, validator.RegisterWithGin(model.ValidationRules()))

	svc := &mockService{}
	engine := gin.New()
	NewHandler(svc).RegisterRoutes(engine.Group("/api/v1"))
	return engine, svc
}

func TestCreateCustomer(t *testing.T) {
	engine, svc := setup(t)
	svc.On("Create", mock.Anything, &model.CreateCustomerRequest{Name: "Jo Park", Email: "jo@example.com"}).
		Return(&model.Customer{Name: "Jo Park"}, nil)

	tests := []struct {
		name   string
		body   string
		status int
		want   string
	}{
		{"created", `{"name":"Jo Park","email":"jo@example.com"}`, http.StatusCreated, `"name":"Jo Park"`},
		{"missing name", `{"email":"jo@example.com"}`, http.StatusBadRequest, `{"error":"name is required"}`},
		{"bad email", `{"name":"Jo","email":"nope"}`, http.StatusBadRequest, `{"error":"email is invalid"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/customers", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), tt.want)
		})
	}
	svc.AssertNumberOfCalls(t, "Create", 1)
}

func TestGetCustomer(t *testing.T) {
	engine, svc := setup(t)
	id := uuid.New()
	svc.On("Get", mock.Anything, id).Return(nil, errors.NotFound("customer", nil))

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/customers/"+id.String(), nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"customer not found"}`, w.Body.String())
}
