package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a versioned update lost a race or a
	// unique key is already taken.
	ErrConflict = errors.New("record was modified concurrently")
)

// All repository interfaces in one file
type (
	CustomerRepository interface {
		Create(ctx context.Context, customer *model.Customer) error
		Get(ctx context.Context, id uuid.UUID) (*model.Customer, error)
		UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, summary model.LoyaltySummary) error
	}

	// AppointmentRepository updates are compare-and-swap on Version.
	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
	}

	// LoyaltyAccountRepository holds one account per customer. Create
	// returns ErrConflict when the customer already has one.
	LoyaltyAccountRepository interface {
		GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CustomerLoyalty, error)
		Create(ctx context.Context, account *model.CustomerLoyalty) error
		Update(ctx context.Context, account *model.CustomerLoyalty) error
	}

	// LoyaltyProgramRepository.Save deactivates every other program when
	// the saved one is active.
	LoyaltyProgramRepository interface {
		GetActive(ctx context.Context) (*model.LoyaltyProgram, error)
		Save(ctx context.Context, program *model.LoyaltyProgram) error
	}

	PostRepository interface {
		Create(ctx context.Context, post *model.Post) error
		Get(ctx context.Context, id uuid.UUID) (*model.Post, error)
		UpdateRating(ctx context.Context, id uuid.UUID, rating model.PostRating) error
		ListTrending(ctx context.Context, limit int) ([]*model.Post, error)
		ListByCategory(ctx context.Context, category string, limit int) ([]*model.Post, error)
		ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*model.Post, error)
	}

	RatingRepository interface {
		Create(ctx context.Context, rating *model.Rating) error
		Get(ctx context.Context, id uuid.UUID) (*model.Rating, error)
		Update(ctx context.Context, rating *model.Rating) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Rating, error)
	}

	ChallengeRepository interface {
		Create(ctx context.Context, challenge *model.Challenge) error
		Get(ctx context.Context, id uuid.UUID) (*model.Challenge, error)
		Update(ctx context.Context, challenge *model.Challenge) error
		ListByStatus(ctx context.Context, statuses []model.ChallengeStatus, offset, limit int) ([]*model.Challenge, error)
	}

	// OfferRepository.ListActive filters by category when it is non-empty.
	OfferRepository interface {
		Create(ctx context.Context, offer *model.RewardsOffer) error
		Get(ctx context.Context, id uuid.UUID) (*model.RewardsOffer, error)
		Update(ctx context.Context, offer *model.RewardsOffer) error
		ListActive(ctx context.Context, at time.Time, category string, limit int) ([]*model.RewardsOffer, error)
	}

	// OutboxRepository.ClaimPendingEvents moves up to limit events to
	// processing and returns them. Pending events, failed events with fewer
	// than maxRetries attempts, and processing events last touched before
	// staleBefore are eligible.
	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		ClaimPendingEvents(ctx context.Context, limit, maxRetries int, staleBefore time.Time) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}

	// Pinger reports whether the backing store is reachable.
	Pinger interface {
		Ping(ctx context.Context) error
	}
)

// Store bundles every repository over one backend.
type Store struct {
	Customers    CustomerRepository
	Appointments AppointmentRepository
	Accounts     LoyaltyAccountRepository
	Programs     LoyaltyProgramRepository
	Posts        PostRepository
	Ratings      RatingRepository
	Challenges   ChallengeRepository
	Offers       OfferRepository
	Outbox       OutboxRepository
	Health       Pinger
}
