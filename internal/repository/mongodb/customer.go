package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type customerRepository struct {
	coll *mongo.Collection
}

func NewCustomerRepository(db *mongo.Database) repository.CustomerRepository {
	return &customerRepository{coll: db.Collection(colCustomers)}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	stamp(&customer.Base)
	return insert(ctx, r.coll, customer)
}

func (r *customerRepository) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	return findOne[model.Customer](ctx, r.coll, bson.M{"_id": id})
}

func (r *customerRepository) UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, summary model.LoyaltySummary) error {
	update := bson.M{"$set": bson.M{
		"loyalty_status": summary.Status,
		"current_tier":   summary.Tier,
		"loyalty_points": summary.Points,
		"updated_at":     time.Now().UTC(),
	}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update customer loyalty summary: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}
