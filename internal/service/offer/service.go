package offer

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

const (
	ActiveLimit   = 50
	CategoryLimit = 20
)

type Service struct {
	repo    repository.OfferRepository
	events  event.Emitter
	logger  *logger.Logger
	metrics *metrics.Metrics
	policy  optimistic.Policy
	now     func() time.Time
}

func NewService(repo repository.OfferRepository, events event.Emitter, logger *logger.Logger, metrics *metrics.Metrics, policy optimistic.Policy) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		logger:  logger,
		metrics: metrics,
		policy:  policy,
		now:     time.Now,
	}
}

type redeemedEvent struct {
	OfferID       uuid.UUID  `json:"offerId"`
	CustomerID    uuid.UUID  `json:"customerId"`
	AppointmentID *uuid.UUID `json:"appointmentId,omitempty"`
	OrderValue    string     `json:"orderValue"`
	Redemptions   int        `json:"redemptions"`
}

func (s *Service) Create(ctx context.Context, req *model.CreateOfferRequest, principal *uuid.UUID) (*model.RewardsOffer, error) {
	if !req.ValidUntil.After(req.ValidFrom) {
		return nil, errors.Validation("validUntil must be after validFrom")
	}

	now := s.now().UTC()
	o := &model.RewardsOffer{
		Base:             model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Audit:            model.Audit{CreatedBy: principal},
		Name:             req.Name,
		Description:      req.Description,
		ShortDescription: req.ShortDescription,
		Type:             req.Type,
		Category:         req.Category,
		IsActive:         req.IsActive,
		IsPublic:         req.IsPublic,
		EligibleTiers:    req.EligibleTiers,
		ValidFrom:        req.ValidFrom.UTC(),
		ValidUntil:       req.ValidUntil.UTC(),
		RedemptionLimit: model.RedemptionLimit{
			MaxRedemptions: req.MaxRedemptions,
			MaxPerCustomer: req.MaxPerCustomer,
		},
		DiscountDetails: req.DiscountDetails,
		PromotionalCode: req.PromotionalCode,
		Tags:            req.Tags,
	}

	if err := s.repo.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("failed to create offer: %w", err)
	}
	return o, nil
}

// Active lists offers that are switched on and inside their validity window.
func (s *Service) Active(ctx context.Context) (model.ListResult[*model.RewardsOffer], error) {
	offers, err := s.repo.ListActive(ctx, s.now().UTC(), "", ActiveLimit)
	if err != nil {
		return model.ListResult[*model.RewardsOffer]{}, fmt.Errorf("failed to list offers: %w", err)
	}
	return model.NewListResult(offers), nil
}

func (s *Service) ByCategory(ctx context.Context, category string) (model.ListResult[*model.RewardsOffer], error) {
	offers, err := s.repo.ListActive(ctx, s.now().UTC(), category, CategoryLimit)
	if err != nil {
		return model.ListResult[*model.RewardsOffer]{}, fmt.Errorf("failed to list offers by category: %w", err)
	}
	return model.NewListResult(offers), nil
}

// Redeem records one redemption of an offer by a customer.
func (s *Service) Redeem(ctx context.Context, offerID uuid.UUID, req *model.RedeemOfferRequest) (*model.RewardsOffer, error) {
	if req.CustomerID == nil || *req.CustomerID == uuid.Nil {
		return nil, errors.Validation("Customer ID required")
	}

	var redeemed model.RewardsOffer
	err := optimistic.Retry(ctx, s.policy, "offer", s.conflictRetried, func() error {
		current, err := s.repo.Get(ctx, offerID)
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("offer", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get offer: %w", err)
		}

		now := s.now().UTC()
		if err := CheckRedeemable(*current, *req.CustomerID, now); err != nil {
			return err
		}

		next := ApplyRedemption(*current, *req.CustomerID, req.OrderValue)
		next.UpdatedAt = now
		if err := s.repo.Update(ctx, &next); err != nil {
			return err
		}
		redeemed = next
		return nil
	})
	s.metrics.OfferRedemptions.WithLabelValues(outcome(err)).Inc()
	if err != nil {
		return nil, err
	}

	s.logger.Info("Offer redeemed",
		"offer_id", offerID.String(),
		"customer_id", req.CustomerID.String())

	payload := redeemedEvent{
		OfferID:       offerID,
		CustomerID:    *req.CustomerID,
		AppointmentID: req.AppointmentID,
		OrderValue:    req.OrderValue.StringFixed(2),
		Redemptions:   redeemed.Analytics.Redemptions,
	}
	if err := s.events.Emit(ctx, model.EventOfferRedeemed, payload); err != nil {
		s.logger.Error(err, "Failed to record event", "event_type", model.EventOfferRedeemed)
	}
	return &redeemed, nil
}

func (s *Service) conflictRetried() {
	s.metrics.ConcurrencyRetries.WithLabelValues("offer").Inc()
}

func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch errors.CodeOf(err) {
	case errors.ErrNotFound:
		return "not_found"
	case errors.ErrExpiredOffer:
		return "expired"
	case errors.ErrLimitReached:
		return "limit_reached"
	case errors.ErrConflict:
		return "conflict"
	default:
		return "error"
	}
}
