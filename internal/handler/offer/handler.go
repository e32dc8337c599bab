package offer

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateOfferRequest, principal *uuid.UUID) (*model.RewardsOffer, error)
	Active(ctx context.Context) (model.ListResult[*model.RewardsOffer], error)
	ByCategory(ctx context.Context, category string) (model.ListResult[*model.RewardsOffer], error)
	Redeem(ctx context.Context, offerID uuid.UUID, req *model.RedeemOfferRequest) (*model.RewardsOffer, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	offers := r.Group("/rewards-offers")
	{
		offers.POST("", h.CreateOffer)
		offers.GET("/active", h.ActiveOffers)
		offers.GET("/category/:category", h.OffersByCategory)
		offers.POST("/redeem/:offerId", h.RedeemOffer)
	}
}

func (h *Handler) CreateOffer(c *gin.Context) {
	var req model.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	offer, err := h.service.Create(c.Request.Context(), &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, offer)
}

func (h *Handler) ActiveOffers(c *gin.Context) {
	result, err := h.service.Active(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) OffersByCategory(c *gin.Context) {
	result, err := h.service.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) RedeemOffer(c *gin.Context) {
	offerID, ok := handler.ParamID(c, "offerId", "offer")
	if !ok {
		return
	}

	var req model.RedeemOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	if _, err := h.service.Redeem(c.Request.Context(), offerID, &req); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, httputil.ActionResponse{
		Success: true,
		Message: "Offer redeemed successfully",
	})
}
