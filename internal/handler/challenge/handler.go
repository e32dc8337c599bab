package challenge

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateChallengeRequest, principal *uuid.UUID) (*model.Challenge, error)
	Active(ctx context.Context) (model.ListResult[*model.Challenge], error)
	Join(ctx context.Context, challengeID uuid.UUID, userID *uuid.UUID) (*model.Challenge, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	challenges := r.Group("/barber-challenges")
	{
		challenges.POST("", h.CreateChallenge)
		challenges.GET("/active", h.ActiveChallenges)
		challenges.POST("/join/:challengeId", h.JoinChallenge)
	}
}

func (h *Handler) CreateChallenge(c *gin.Context) {
	var req model.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	challenge, err := h.service.Create(c.Request.Context(), &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, challenge)
}

func (h *Handler) ActiveChallenges(c *gin.Context) {
	result, err := h.service.Active(c.Request.Context())
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

// JoinChallenge takes the user from the body, falling back to the caller.
// An empty body is allowed.
func (h *Handler) JoinChallenge(c *gin.Context) {
	challengeID, ok := handler.ParamID(c, "challengeId", "challenge")
	if !ok {
		return
	}

	var req model.JoinChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !stderrors.Is(err, io.EOF) {
		httputil.RespondBindError(c, err)
		return
	}
	if req.UserID == nil {
		req.UserID = middleware.PrincipalPtr(c)
	}

	if _, err := h.service.Join(c.Request.Context(), challengeID, req.UserID); err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, httputil.ActionResponse{
		Success: true,
		Message: "Successfully joined challenge",
	})
}
