package social

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
	CreatePost(ctx context.Context, req *model.CreatePostRequest, principal *uuid.UUID) (*model.Post, error)
	GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Trending(ctx context.Context) (model.ListResult[*model.Post], error)
	ByCategory(ctx context.Context, category string) (model.ListResult[*model.Post], error)
	ByBarber(ctx context.Context, barberID uuid.UUID) (model.ListResult[*model.Post], error)
	CreateRating(ctx context.Context, req *model.CreateRatingRequest, principal *uuid.UUID) (*model.Rating, error)
	UpdateRating(ctx context.Context, id uuid.UUID, req *model.UpdateRatingRequest) (*model.Rating, error)
	DeleteRating(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	posts := r.Group("/barber-social")
	{
		posts.POST("", h.CreatePost)
		posts.GET("/trending", h.Trending)
		posts.GET("/by-category/:category", h.ByCategory)
		posts.GET("/by-barber/:barberId", h.ByBarber)
		posts.GET("/:id", h.GetPost)
	}

	ratings := r.Group("/barber-ratings")
	{
		ratings.POST("", h.CreateRating)
		ratings.PUT("/:id", h.UpdateRating)
		ratings.DELETE("/:id", h.DeleteRating)
	}
}

func (h *Handler) CreatePost(c *gin.Context) {
	var req model.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	post, err := h.service.CreatePost(c.Request.Context(), &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, post)
}

func (h *Handler) GetPost(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "post")
	if !ok {
		return
	}

	post, err := h.service.GetPost(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, post)
}

func (h *Handler) Trending(c *gin.Context) {
	result, err := h.service.Trending(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) ByCategory(c *gin.Context) {
	result, err := h.service.ByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) ByBarber(c *gin.Context) {
	barberID, ok := handler.ParamID(c, "barberId", "barber")
	if !ok {
		return
	}

	result, err := h.service.ByBarber(c.Request.Context(), barberID)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func (h *Handler) CreateRating(c *gin.Context) {
	var req model.CreateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	rating, err := h.service.CreateRating(c.Request.Context(), &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, rating)
}

func (h *Handler) UpdateRating(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "rating")
	if !ok {
		return
	}

	var req model.UpdateRatingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	rating, err := h.service.UpdateRating(c.Request.Context(), id, &req)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, rating)
}

func (h *Handler) DeleteRating(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "rating")
	if !ok {
		return
	}

	if err := h.service.DeleteRating(c.Request.Context(), id); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, httputil.ActionResponse{
		Success: true,
		Message: "Rating deleted successfully",
	})
}
