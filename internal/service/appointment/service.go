package appointment

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/event"
	"github.com/jwalitptl/salon-api/internal/service/optimistic"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

type CustomerLookup interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
}

// PointsEarner credits loyalty points when an appointment is checked out.
type PointsEarner interface {
	EarnPoints(ctx context.Context, req *model.EarnPointsRequest) (*model.CustomerLoyalty, error)
}

// ProgramSource supplies the earn rate for completed appointments.
type ProgramSource interface {
	Active(ctx context.Context) (model.LoyaltyProgram, error)
}

type PricingConfig struct {
	TaxRate  decimal.Decimal
	Location *time.Location
}

type Service struct {
	repo      repository.AppointmentRepository
	customers CustomerLookup
	loyalty   PointsEarner
	programs  ProgramSource
	events    event.Emitter
	logger    *logger.Logger
	metrics   *metrics.Metrics
	pricing   PricingConfig
	policy    optimistic.Policy
	now       func() time.Time
}

func NewService(
	repo repository.AppointmentRepository,
	customers CustomerLookup,
	loyalty PointsEarner,
	programs ProgramSource,
	events event.Emitter,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	pricing PricingConfig,
	policy optimistic.Policy,
) *Service {
	if pricing.Location == nil {
		pricing.Location = time.UTC
	}
	return &Service{
		repo:      repo,
		customers: customers,
		loyalty:   loyalty,
		programs:  programs,
		events:    events,
		logger:    logger,
		metrics:   metrics,
		pricing:   pricing,
		policy:    policy,
		now:       time.Now,
	}
}

type appointmentEvent struct {
	AppointmentID uuid.UUID               `json:"appointmentId"`
	Customer      *uuid.UUID              `json:"customer,omitempty"`
	Status        model.AppointmentStatus `json:"status"`
	DateTime      *time.Time              `json:"dateTime,omitempty"`
	TotalPrice    decimal.Decimal         `json:"totalPrice"`
}

func (s *Service) Create(ctx context.Context, req *model.CreateAppointmentRequest, actor *uuid.UUID) (*model.Appointment, error) {
	if err := validateParty(req.Customer, req.WalkIn); err != nil {
		return nil, err
	}

	name, err := s.customerName(ctx, req.Customer)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	apt := model.Appointment{
		Base:   model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Status: model.AppointmentStatusScheduled,
		Payment: model.Payment{
			Transactions: []model.PaymentTransaction{},
		},
	}
	applyRequest(&apt, req)
	if req.Status != "" {
		if err := ValidateTransition(model.AppointmentStatusScheduled, req.Status); err != nil {
			return nil, err
		}
		apt.Status = req.Status
	}

	apt = ComputeDerivedFields(apt, s.options(now, name, model.OperationCreate, actor))

	if err := s.repo.Create(ctx, &apt); err != nil {
		return nil, fmt.Errorf("failed to create appointment: %w", err)
	}

	s.saved(ctx, model.OperationCreate, nil, &apt)
	return &apt, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.repo.Get(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("appointment", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) (model.ListResult[*model.Appointment], error) {
	if filters != nil && filters.Status != "" && !filters.Status.Valid() {
		return model.ListResult[*model.Appointment]{}, errors.Validation(fmt.Sprintf("invalid appointment status %q", filters.Status))
	}
	apts, err := s.repo.List(ctx, filters)
	if err != nil {
		return model.ListResult[*model.Appointment]{}, fmt.Errorf("failed to list appointments: %w", err)
	}
	return model.NewListResult(apts), nil
}

// Update replaces the mutable fields of an appointment.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateAppointmentRequest, actor *uuid.UUID) (*model.Appointment, error) {
	if err := validateParty(req.Customer, req.WalkIn); err != nil {
		return nil, err
	}
	return s.mutate(ctx, id, actor, func(apt *model.Appointment) error {
		if req.Status != "" {
			if err := ValidateTransition(apt.Status, req.Status); err != nil {
				return err
			}
			apt.Status = req.Status
		}
		applyRequest(apt, req)
		return nil
	})
}

func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, actor *uuid.UUID) (*model.Appointment, error) {
	return s.mutate(ctx, id, actor, func(apt *model.Appointment) error {
		if err := ValidateTransition(apt.Status, status); err != nil {
			return err
		}
		apt.Status = status
		return nil
	})
}

// RecordPayment appends a payment transaction and adjusts the paid amount.
func (s *Service) RecordPayment(ctx context.Context, id uuid.UUID, req *model.RecordPaymentRequest, actor *uuid.UUID) (*model.Appointment, error) {
	if !req.Amount.IsPositive() {
		return nil, errors.Validation("amount must be greater than zero")
	}
	txType := req.Type
	if txType == "" {
		txType = model.PaymentTransactionPayment
	}

	return s.mutate(ctx, id, actor, func(apt *model.Appointment) error {
		if apt.Status == model.AppointmentStatusCancelled && txType != model.PaymentTransactionRefund {
			return errors.Validation("cannot take payment for a cancelled appointment")
		}

		switch txType {
		case model.PaymentTransactionRefund:
			if req.Amount.GreaterThan(apt.Payment.PaidAmount) {
				return errors.Validation("refund exceeds the amount paid")
			}
			apt.Payment.PaidAmount = apt.Payment.PaidAmount.Sub(req.Amount)
		case model.PaymentTransactionDeposit:
			if apt.Payment.DepositAmount.IsZero() {
				apt.Payment.DepositAmount = req.Amount
			}
			apt.Payment.PaidAmount = apt.Payment.PaidAmount.Add(req.Amount)
		default:
			apt.Payment.PaidAmount = apt.Payment.PaidAmount.Add(req.Amount)
		}

		if req.Method != "" {
			apt.Payment.Method = req.Method
		}
		apt.Payment.Transactions = append(apt.Payment.Transactions, model.PaymentTransaction{
			ID:          uuid.New(),
			Type:        txType,
			Amount:      req.Amount,
			Method:      req.Method,
			Reference:   req.Reference,
			ProcessedAt: s.now().UTC(),
		})
		return nil
	})
}

// Reschedule moves an appointment to a new time and records the move.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleRequest, actor *uuid.UUID) (*model.Appointment, error) {
	if req.DateTime.IsZero() {
		return nil, errors.Validation("dateTime is required")
	}

	return s.mutate(ctx, id, actor, func(apt *model.Appointment) error {
		if err := ValidateTransition(apt.Status, model.AppointmentStatusRescheduled); err != nil {
			return err
		}

		var previous *time.Time
		if apt.Scheduling.DateTime != nil {
			previous = model.TimePtr(*apt.Scheduling.DateTime)
		}
		newTime := req.DateTime.UTC()

		apt.RescheduleHistory = append(apt.RescheduleHistory, model.RescheduleEntry{
			PreviousDateTime: previous,
			NewDateTime:      newTime,
			Reason:           req.Reason,
			RescheduledAt:    s.now().UTC(),
			RescheduledBy:    actor,
		})
		apt.Scheduling.DateTime = &newTime
		apt.Status = model.AppointmentStatusRescheduled
		return nil
	})
}

// mutate loads an appointment, applies change, recomputes derived fields and
// writes it back, retrying when another writer updated it first.
func (s *Service) mutate(ctx context.Context, id uuid.UUID, actor *uuid.UUID, change func(*model.Appointment) error) (*model.Appointment, error) {
	var before, after model.Appointment

	err := optimistic.Retry(ctx, s.policy, "appointment", s.conflictRetried, func() error {
		current, err := s.Get(ctx, id)
		if err != nil {
			return err
		}
		before = *current

		next := *current
		next.Services = append([]model.ServiceLine(nil), current.Services...)
		next.Payment.Transactions = append([]model.PaymentTransaction{}, current.Payment.Transactions...)
		next.RescheduleHistory = append([]model.RescheduleEntry(nil), current.RescheduleHistory...)
		if err := change(&next); err != nil {
			return err
		}

		name, err := s.customerName(ctx, next.Customer)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		next = ComputeDerivedFields(next, s.options(now, name, model.OperationUpdate, actor))
		next.UpdatedAt = now

		if err := s.repo.Update(ctx, &next); err != nil {
			if stderrors.Is(err, repository.ErrConflict) {
				return err
			}
			return fmt.Errorf("failed to update appointment: %w", err)
		}
		after = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.saved(ctx, model.OperationUpdate, &before, &after)
	return &after, nil
}

// saved runs the side effects of a successful write. None of them fail it.
func (s *Service) saved(ctx context.Context, op model.Operation, before, after *model.Appointment) {
	s.metrics.AppointmentsSaved.WithLabelValues(string(op)).Inc()

	eventType := model.EventAppointmentUpdated
	if op == model.OperationCreate {
		eventType = model.EventAppointmentCreated
	}
	payload := appointmentEvent{
		AppointmentID: after.ID,
		Customer:      after.Customer,
		Status:        after.Status,
		DateTime:      after.Scheduling.DateTime,
		TotalPrice:    after.Pricing.TotalPrice,
	}
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "Failed to record event", "event_type", eventType, "appointment_id", after.ID.String())
	}

	checkedOut := after.Progress.CheckedOutAt != nil && (before == nil || before.Progress.CheckedOutAt == nil)
	if checkedOut && after.Customer != nil {
		s.awardPoints(ctx, after)
	}
}

// awardPoints credits floor(totalPrice x pointsPerDollar) to the customer.
func (s *Service) awardPoints(ctx context.Context, apt *model.Appointment) {
	program, err := s.programs.Active(ctx)
	if err != nil {
		s.logger.Error(err, "Failed to load loyalty program", "appointment_id", apt.ID.String())
		return
	}

	points := apt.Pricing.TotalPrice.Mul(program.PointsPerDollar).Floor().IntPart()
	if points <= 0 {
		return
	}

	id := apt.ID
	_, err = s.loyalty.EarnPoints(ctx, &model.EarnPointsRequest{
		CustomerID:    *apt.Customer,
		Points:        int(points),
		Description:   "Appointment " + apt.DisplayName,
		AppointmentID: &id,
		Type:          model.TransactionTypeEarned,
	})
	if err != nil {
		s.logger.Error(err, "Failed to award appointment points",
			"appointment_id", apt.ID.String(),
			"customer_id", apt.Customer.String())
	}
}

func (s *Service) customerName(ctx context.Context, id *uuid.UUID) (string, error) {
	if id == nil {
		return "", nil
	}
	customer, err := s.customers.Get(ctx, *id)
	if err != nil {
		return "", err
	}
	return customer.Name, nil
}

func (s *Service) options(now time.Time, customerName string, op model.Operation, actor *uuid.UUID) Options {
	return Options{
		Now:          now,
		TaxRate:      s.pricing.TaxRate,
		Location:     s.pricing.Location,
		CustomerName: customerName,
		Operation:    op,
		Actor:        actor,
	}
}

func (s *Service) conflictRetried() {
	s.metrics.ConcurrencyRetries.WithLabelValues("appointment").Inc()
}

func validateParty(customer *uuid.UUID, walkIn *model.WalkInCustomer) error {
	switch {
	case customer != nil && walkIn != nil:
		return errors.Validation("appointment must have either customer or walkIn, not both")
	case customer == nil && walkIn == nil:
		return errors.Validation("customer is required unless the appointment is a walk-in")
	}
	return nil
}

// applyRequest copies the caller-controlled fields of req onto apt.
func applyRequest(apt *model.Appointment, req *model.CreateAppointmentRequest) {
	apt.Customer = req.Customer
	apt.WalkIn = req.WalkIn
	apt.Notes = req.Notes

	apt.Services = make([]model.ServiceLine, 0, len(req.Services))
	for _, l := range req.Services {
		apt.Services = append(apt.Services, model.ServiceLine{
			Service:   l.Service,
			Staff:     l.Staff,
			Duration:  l.Duration,
			Price:     l.Price,
			StartTime: l.StartTime,
			EndTime:   l.EndTime,
		})
	}

	scheduling := req.Scheduling
	if scheduling.DateTime != nil {
		scheduling.DateTime = model.TimePtr(scheduling.DateTime.UTC())
	}
	apt.Scheduling = scheduling

	apt.Pricing.Discount = req.Discount
	apt.Pricing.Tip = req.Tip

	if req.Payment != nil {
		apt.Payment.Method = req.Payment.Method
		apt.Payment.DepositAmount = req.Payment.DepositAmount
	}
}
