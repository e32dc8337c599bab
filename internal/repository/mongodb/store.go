package mongodb

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jwalitptl/salon-api/internal/repository"
)

// NewStore wires every repository over one database.
func NewStore(client *mongo.Client, database string) *repository.Store {
	db := client.Database(database)
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
		Health:       pinger{client: client},
	}
}
