package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/salon-api/internal/repository"
)

// NewStore wires every repository over one connection pool.
func NewStore(db *sqlx.DB) *repository.Store {
	return &repository.Store{
		Customers:    NewCustomerRepository(db),
		Appointments: NewAppointmentRepository(db),
		Accounts:     NewLoyaltyAccountRepository(db),
		Programs:     NewLoyaltyProgramRepository(db),
		Posts:        NewPostRepository(db),
		Ratings:      NewRatingRepository(db),
		Challenges:   NewChallengeRepository(db),
		Offers:       NewOfferRepository(db),
		Outbox:       NewOutboxRepository(db),
		Health:       pinger{db: db},
	}
}
