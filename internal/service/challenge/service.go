package challenge

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

const ActiveLimit = 20

var openStatuses = []model.ChallengeStatus{
	model.ChallengeStatusRegistration,
	model.ChallengeStatusActive,
	model.ChallengeStatusVoting,
}

type Service struct {
	repo    repository.ChallengeRepository
	events  event.Emitter
	logger  *logger.Logger
	metrics *metrics.Metrics
	policy  optimistic.Policy
	now     func() time.Time
}

func NewService(repo repository.ChallengeRepository, events event.Emitter, logger *logger.Logger, metrics *metrics.Metrics, policy optimistic.Policy) *Service {
	return &Service{
		repo:    repo,
		events:  events,
		logger:  logger,
		metrics: metrics,
		policy:  policy,
		now:     time.Now,
	}
}

type joinedEvent struct {
	ChallengeID  uuid.UUID `json:"challengeId"`
	UserID       uuid.UUID `json:"userId"`
	Participants int       `json:"participants"`
}

// Create stores a challenge. The creator defaults to the calling principal.
func (s *Service) Create(ctx context.Context, req *model.CreateChallengeRequest, principal *uuid.UUID) (*model.Challenge, error) {
	creator := req.Creator
	if creator == nil {
		creator = principal
	}
	if creator == nil {
		return nil, errors.Validation("creator is required")
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, errors.Validation("endDate must not be before startDate")
	}
	if req.VotingEndDate != nil && req.EndDate != nil && req.VotingEndDate.Before(*req.EndDate) {
		return nil, errors.Validation("votingEndDate must not be before endDate")
	}

	now := s.now().UTC()
	c := &model.Challenge{
		Base:            model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Audit:           model.Audit{CreatedBy: principal},
		Title:           req.Title,
		Description:     req.Description,
		Creator:         *creator,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		VotingEndDate:   req.VotingEndDate,
		MaxParticipants: req.MaxParticipants,
		EntryFee:        req.EntryFee,
		Prizes:          req.Prizes,
		Rules:           req.Rules,
		Tags:            req.Tags,
		Participants:    []uuid.UUID{},
		Status:          model.ChallengeStatusRegistration,
	}
	if req.Draft {
		c.Status = model.ChallengeStatusDraft
	}
	c.Status = DeriveStatus(*c, now)

	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}
	return c, nil
}

// Active lists up to ActiveLimit challenges in registration, active or
// voting, newest first. Statuses are re-derived so a challenge whose dates
// have passed drops out before anything rewrites it; further pages are read
// until the limit is filled or the stored list runs out.
func (s *Service) Active(ctx context.Context) (model.ListResult[*model.Challenge], error) {
	now := s.now().UTC()
	open := make([]*model.Challenge, 0, ActiveLimit)

	for offset := 0; len(open) < ActiveLimit; offset += ActiveLimit {
		page, err := s.repo.ListByStatus(ctx, openStatuses, offset, ActiveLimit)
		if err != nil {
			return model.ListResult[*model.Challenge]{}, fmt.Errorf("failed to list challenges: %w", err)
		}
		for _, c := range page {
			c.Status = DeriveStatus(*c, now)
			if c.Status.Open() && len(open) < ActiveLimit {
				open = append(open, c)
			}
		}
		if len(page) < ActiveLimit {
			break
		}
	}
	return model.NewListResult(open), nil
}

// Join adds userID to a challenge. Joining twice is a no-op.
func (s *Service) Join(ctx context.Context, challengeID uuid.UUID, userID *uuid.UUID) (*model.Challenge, error) {
	if userID == nil || *userID == uuid.Nil {
		return nil, errors.Validation("User ID required")
	}

	var (
		joined *model.Challenge
		added  bool
	)
	err := optimistic.Retry(ctx, s.policy, "challenge", s.conflictRetried, func() error {
		c, err := s.repo.Get(ctx, challengeID)
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("challenge", err)
		}
		if err != nil {
			return fmt.Errorf("failed to get challenge: %w", err)
		}

		now := s.now().UTC()
		c.Status = DeriveStatus(*c, now)
		if !c.Status.Joinable() {
			return errors.Validation(fmt.Sprintf("challenge is %s and not accepting participants", c.Status))
		}
		if c.HasParticipant(*userID) {
			joined, added = c, false
			return nil
		}
		if c.MaxParticipants > 0 && len(c.Participants) >= c.MaxParticipants {
			return errors.LimitReached("challenge is full")
		}

		c.Participants = append(c.Participants, *userID)
		c.UpdatedAt = now
		if err := s.repo.Update(ctx, c); err != nil {
			return err
		}
		joined, added = c, true
		return nil
	})
	if err != nil {
		return nil, err
	}

	if added {
		s.metrics.ChallengeParticipation.Inc()
		payload := joinedEvent{ChallengeID: joined.ID, UserID: *userID, Participants: len(joined.Participants)}
		if err := s.events.Emit(ctx, model.EventChallengeJoined, payload); err != nil {
			s.logger.Error(err, "Failed to record event", "event_type", model.EventChallengeJoined)
		}
	}
	return joined, nil
}

func (s *Service) conflictRetried() {
	s.metrics.ConcurrencyRetries.WithLabelValues("challenge").Inc()
}
