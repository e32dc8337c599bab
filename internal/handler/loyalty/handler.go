package loyalty

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

type Service interface {
	EarnPoints(ctx context.Context, req *model.EarnPointsRequest) (*model.CustomerLoyalty, error)
	RedeemPoints(ctx context.Context, req *model.RedeemPointsRequest) (*model.CustomerLoyalty, model.RedeemResult, error)
	GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CustomerLoyalty, error)
	ActiveProgram(ctx context.Context) (model.ListResult[model.LoyaltyProgram], error)
	Tiers(ctx context.Context) ([]model.Tier, error)
	SaveProgram(ctx context.Context, req *model.SaveProgramRequest) (*model.LoyaltyProgram, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	program := r.Group("/loyalty-program")
	{
		program.GET("/active", h.GetActiveProgram)
		program.GET("/tiers", h.GetTiers)
		program.POST("", h.SaveProgram)
	}

	accounts := r.Group("/customer-loyalty")
	{
		accounts.GET("/customer/:customerId", h.GetCustomerLoyalty)
		accounts.POST("/earn-points", h.EarnPoints)
		accounts.POST("/redeem-points", h.RedeemPoints)
	}
}

func (h *Handler) GetActiveProgram(c *gin.Context) {
	result, err := h.service.ActiveProgram(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) GetTiers(c *gin.Context) {
	tiers, err := h.service.Tiers(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, tiers)
}

func (h *Handler) SaveProgram(c *gin.Context) {
	var req model.SaveProgramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	program, err := h.service.SaveProgram(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, program)
}

func (h *Handler) GetCustomerLoyalty(c *gin.Context) {
	customerID, ok := handler.ParamID(c, "customerId", "customer")
	if !ok {
		return
	}

	account, err := h.service.GetByCustomer(c.Request.Context(), customerID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, account)
}

func (h *Handler) EarnPoints(c *gin.Context) {
	var req model.EarnPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	if _, err := h.service.EarnPoints(c.Request.Context(), &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, httputil.ActionResponse{
		Success: true,
		Message: "Points earned successfully",
	})
}

func (h *Handler) RedeemPoints(c *gin.Context) {
	var req model.RedeemPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	_, result, err := h.service.RedeemPoints(c.Request.Context(), &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, httputil.ActionResponse{
		Success: true,
		Message: "Points redeemed successfully",
		Value:   result.Value,
	})
}
