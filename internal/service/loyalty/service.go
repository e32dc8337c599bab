package loyalty

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/event"
	"github.com/jwalitptl/salon-api/internal/service/optimistic"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

// CustomerDirectory is the part of the customer service the ledger needs.
type CustomerDirectory interface {
	Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, summary model.LoyaltySummary) error
}

type Service struct {
	accounts  repository.LoyaltyAccountRepository
	programs  repository.LoyaltyProgramRepository
	provider  *ProgramProvider
	customers CustomerDirectory
	events    event.Emitter
	logger    *logger.Logger
	metrics   *metrics.Metrics
	policy    optimistic.Policy
	now       func() time.Time
}

func NewService(
	accounts repository.LoyaltyAccountRepository,
	programs repository.LoyaltyProgramRepository,
	provider *ProgramProvider,
	customers CustomerDirectory,
	events event.Emitter,
	logger *logger.Logger,
	metrics *metrics.Metrics,
	policy optimistic.Policy,
) *Service {
	return &Service{
		accounts:  accounts,
		programs:  programs,
		provider:  provider,
		customers: customers,
		events:    events,
		logger:    logger,
		metrics:   metrics,
		policy:    policy,
		now:       time.Now,
	}
}

type pointsEarnedEvent struct {
	CustomerID    uuid.UUID  `json:"customerId"`
	Points        int        `json:"points"`
	Type          string     `json:"type"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	CurrentPoints int        `json:"currentPoints"`
}

type pointsRedeemedEvent struct {
	CustomerID     uuid.UUID `json:"customerId"`
	Points         int       `json:"points"`
	RedemptionType string    `json:"redemptionType"`
	Value          string    `json:"value"`
	CurrentPoints  int       `json:"currentPoints"`
}

type tierChangedEvent struct {
	CustomerID   uuid.UUID `json:"customerId"`
	PreviousTier string    `json:"previousTier"`
	CurrentTier  string    `json:"currentTier"`
}

// EarnPoints credits points to a customer, opening their account on first use.
func (s *Service) EarnPoints(ctx context.Context, req *model.EarnPointsRequest) (*model.CustomerLoyalty, error) {
	if req.CustomerID == uuid.Nil || req.Points <= 0 || req.Description == "" {
		return nil, errors.Validation("Missing required fields")
	}

	program, err := s.provider.Active(ctx)
	if err != nil {
		return nil, err
	}

	var (
		saved        model.CustomerLoyalty
		result       model.EarnResult
		customerName string
	)
	err = optimistic.Retry(ctx, s.policy, "loyalty account", s.conflictRetried, func() error {
		now := s.now().UTC()

		current, err := s.accounts.GetByCustomer(ctx, req.CustomerID)
		if stderrors.Is(err, repository.ErrNotFound) {
			current = nil
		} else if err != nil {
			return fmt.Errorf("failed to get loyalty account: %w", err)
		}

		if current == nil && customerName == "" {
			customer, err := s.customers.Get(ctx, req.CustomerID)
			if err != nil {
				return err
			}
			customerName = customer.Name
		}

		next, res := ApplyEarn(current, EarnEvent{
			Customer:     req.CustomerID,
			CustomerName: customerName,
			Points:       req.Points,
			Description:  req.Description,
			Appointment:  req.AppointmentID,
			Type:         req.Type,
		}, program, now)
		next.UpdatedAt = now

		if res.Created {
			next.Base = model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
			if err := s.accounts.Create(ctx, &next); err != nil {
				return err
			}
		} else if err := s.accounts.Update(ctx, &next); err != nil {
			return err
		}

		saved, result = next, res
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.PointsEarned.Add(float64(req.Points))
	s.logger.Info("Loyalty points earned",
		"customer_id", req.CustomerID.String(),
		"points", req.Points,
		"current_points", saved.CurrentPoints)

	txType := req.Type
	if txType == "" {
		txType = model.TransactionTypeEarned
	}
	s.emit(ctx, model.EventLoyaltyPointsEarned, pointsEarnedEvent{
		CustomerID:    req.CustomerID,
		Points:        req.Points,
		Type:          string(txType),
		AppointmentID: req.AppointmentID,
		CurrentPoints: saved.CurrentPoints,
	})
	s.afterWrite(ctx, &saved, result.TierChanged, result.PreviousTier)

	return &saved, nil
}

// RedeemPoints spends points from an existing account and returns the
// currency value of the redemption.
func (s *Service) RedeemPoints(ctx context.Context, req *model.RedeemPointsRequest) (*model.CustomerLoyalty, model.RedeemResult, error) {
	if req.CustomerID == uuid.Nil || req.Points <= 0 || req.Description == "" || req.RedemptionType == "" {
		return nil, model.RedeemResult{}, errors.Validation("Missing required fields")
	}

	program, err := s.provider.Active(ctx)
	if err != nil {
		return nil, model.RedeemResult{}, err
	}

	var (
		saved  model.CustomerLoyalty
		result model.RedeemResult
	)
	err = optimistic.Retry(ctx, s.policy, "loyalty account", s.conflictRetried, func() error {
		now := s.now().UTC()

		current, err := s.accounts.GetByCustomer(ctx, req.CustomerID)
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("loyalty account", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get loyalty account: %w", err)
		}

		next, res, err := ApplyRedeem(*current, RedeemRequest{
			Points:         req.Points,
			Description:    req.Description,
			RedemptionType: req.RedemptionType,
			Appointment:    req.AppointmentID,
		}, program, now)
		if err != nil {
			return err
		}
		next.UpdatedAt = now

		if err := s.accounts.Update(ctx, &next); err != nil {
			return err
		}

		saved, result = next, res
		return nil
	})
	if err != nil {
		return nil, model.RedeemResult{}, err
	}

	s.metrics.PointsRedeemed.Add(float64(req.Points))
	s.logger.Info("Loyalty points redeemed",
		"customer_id", req.CustomerID.String(),
		"points", req.Points,
		"value", result.Value.StringFixed(2))

	s.emit(ctx, model.EventLoyaltyPointsRedeem, pointsRedeemedEvent{
		CustomerID:     req.CustomerID,
		Points:         req.Points,
		RedemptionType: string(req.RedemptionType),
		Value:          result.Value.StringFixed(2),
		CurrentPoints:  saved.CurrentPoints,
	})
	s.afterWrite(ctx, &saved, result.TierChanged, result.PreviousTier)

	return &saved, result, nil
}

// GetByCustomer returns the customer's account with expiringPoints
// recomputed for the current time. The stored value is kept if the program
// cannot be loaded.
func (s *Service) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CustomerLoyalty, error) {
	acct, err := s.accounts.GetByCustomer(ctx, customerID)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("loyalty account", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get loyalty account: %w", err)
	}

	program, err := s.provider.Active(ctx)
	if err != nil {
		s.logger.Warn("Failed to load program for expiring points", "customer_id", customerID.String(), "error", err.Error())
		return acct, nil
	}
	acct.ExpiringPoints = ExpiringPoints(acct.RecentTransactions, s.now().UTC(),
		program.RedemptionRules.ExpirationPolicy.ExpirationWarning)
	return acct, nil
}

// ActiveProgram lists the active program, which is at most one.
func (s *Service) ActiveProgram(ctx context.Context) (model.ListResult[model.LoyaltyProgram], error) {
	program, err := s.provider.Current(ctx)
	if err != nil {
		return model.ListResult[model.LoyaltyProgram]{}, err
	}
	if program == nil {
		return model.NewListResult[model.LoyaltyProgram](nil), nil
	}
	return model.NewListResult([]model.LoyaltyProgram{*program}), nil
}

// Tiers returns the active program's tiers, empty when there is no program.
func (s *Service) Tiers(ctx context.Context) ([]model.Tier, error) {
	program, err := s.provider.Current(ctx)
	if err != nil {
		return nil, err
	}
	if program == nil || program.Tiers == nil {
		return []model.Tier{}, nil
	}
	return program.Tiers, nil
}

// SaveProgram stores a new program. Saving an active program deactivates
// the previous one.
func (s *Service) SaveProgram(ctx context.Context, req *model.SaveProgramRequest) (*model.LoyaltyProgram, error) {
	now := s.now().UTC()
	program := &model.LoyaltyProgram{
		Base:            model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:            req.Name,
		Description:     req.Description,
		IsActive:        req.IsActive,
		PointsPerDollar: req.PointsPerDollar,
		Tiers:           NormalizeTiers(req.Tiers),
		RedemptionRules: req.RedemptionRules,
	}

	if err := s.programs.Save(ctx, program); err != nil {
		return nil, fmt.Errorf("failed to save loyalty program: %w", err)
	}
	s.provider.Invalidate()

	s.logger.Info("Loyalty program saved", "program_id", program.ID.String(), "active", program.IsActive)
	return program, nil
}

// afterWrite mirrors the account onto the customer and reports tier moves.
// Neither step fails the write that triggered it.
func (s *Service) afterWrite(ctx context.Context, acct *model.CustomerLoyalty, tierChanged bool, previousTier string) {
	if err := s.customers.UpdateLoyaltySummary(ctx, acct.Customer, acct.Summary()); err != nil {
		s.logger.Error(err, "Failed to update customer loyalty summary", "customer_id", acct.Customer.String())
	}

	if !tierChanged {
		return
	}
	s.metrics.TierChanges.WithLabelValues(acct.TierName).Inc()
	s.emit(ctx, model.EventLoyaltyTierChanged, tierChangedEvent{
		CustomerID:   acct.Customer,
		PreviousTier: previousTier,
		CurrentTier:  acct.TierName,
	})
}

func (s *Service) emit(ctx context.Context, eventType string, payload interface{}) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.Error(err, "Failed to record event", "event_type", eventType)
	}
}

func (s *Service) conflictRetried() {
	s.metrics.ConcurrencyRetries.WithLabelValues("loyalty_account").Inc()
}
