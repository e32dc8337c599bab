package appointment

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/handler"
	"github.com/jwalitptl/salon-api/internal/middleware"
	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/httputil"
)

type Service interface {
	Create(ctx context.Context, req *model.CreateAppointmentRequest, actor *uuid.UUID) (*model.Appointment, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
	List(ctx context.Context, filters *model.AppointmentFilters) (model.ListResult[*model.Appointment], error)
	Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, actor *uuid.UUID) (*model.Appointment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, actor *uuid.UUID) (*model.Appointment, error)
	RecordPayment(ctx context.Context, id uuid.UUID, req *model.RecordPaymentRequest, actor *uuid.UUID) (*model.Appointment, error)
	Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest, actor *uuid.UUID) (*model.Appointment, error)
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	appointments := r.Group("/appointments")
	{
		appointments.POST("", h.CreateAppointment)
		appointments.GET("", h.ListAppointments)
		appointments.GET("/:id", h.GetAppointment)
		appointments.PUT("/:id", h.UpdateAppointment)
		appointments.PATCH("/:id/status", h.UpdateStatus)
		appointments.POST("/:id/payments", h.RecordPayment)
		appointments.POST("/:id/reschedule", h.Reschedule)
	}
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.CreateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	apt, err := h.service.Create(c.Request.Context(), &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondCreated(c, apt)
}

func (h *Handler) GetAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	apt, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

// ListAppointments accepts customer, status, startDate, endDate (RFC 3339)
// and limit query parameters.
func (h *Handler) ListAppointments(c *gin.Context) {
	filters, err := parseFilters(c)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}

	result, err := h.service.List(c.Request.Context(), filters)
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, result)
}

func parseFilters(c *gin.Context) (*model.AppointmentFilters, error) {
	filters := &model.AppointmentFilters{}

	if raw := c.Query("customer"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, errors.Validation("invalid customer ID")
		}
		filters.Customer = &id
	}

	if raw := c.Query("status"); raw != "" {
		status := model.AppointmentStatus(raw)
		if !status.Valid() {
			return nil, errors.Validation("invalid status: " + raw)
		}
		filters.Status = status
	}

	for name, dst := range map[string]**time.Time{
		"startDate": &filters.StartDate,
		"endDate":   &filters.EndDate,
	} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, errors.Validation("invalid " + name + ", expected RFC 3339")
		}
		*dst = &t
	}

	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return nil, errors.Validation("invalid limit")
		}
		filters.Limit = limit
	}

	return filters, nil
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.UpdateAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	apt, err := h.service.Update(c.Request.Context(), id, &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	apt, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	apt, err := h.service.RecordPayment(c.Request.Context(), id, &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) Reschedule(c *gin.Context) {
	id, ok := handler.ParamID(c, "id", "appointment")
	if !ok {
		return
	}

	var req model.RescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.RespondBindError(c, err)
		return
	}

	apt, err := h.service.Reschedule(c.Request.Context(), id, &req, middleware.PrincipalPtr(c))
	if err != nil {
		httputil.RespondWithError(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}
