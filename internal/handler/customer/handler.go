package customer

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.CreateCustomer)
		customers.GET("/:id", h.GetCustomer)
	}
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req model.CreateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	customer, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, customer)
}

func (h *Handler) GetCustomer(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "customer")
	if !ok {
		return
	}

	customer, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, customer)
}
