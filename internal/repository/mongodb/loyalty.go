package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type loyaltyAccountRepository struct {
	coll *mongo.Collection
}

func NewLoyaltyAccountRepository(db *mongo.Database) repository.LoyaltyAccountRepository {
	return &loyaltyAccountRepository{coll: db.Collection(colAccounts)}
}

func (r *loyaltyAccountRepository) GetByCustomer(ctx context.Context, customerID uuid.UUID) (*model.CustomerLoyalty, error) {
	return findOne[model.CustomerLoyalty](ctx, r.coll, bson.M{"customer": customerID})
}

// Create relies on the unique customer index to turn a duplicate into ErrConflict.
func (r *loyaltyAccountRepository) Create(ctx context.Context, account *model.CustomerLoyalty) error {
	stamp(&account.Base)
	account.Version = 1
	return insert(ctx, r.coll, account)
}

func (r *loyaltyAccountRepository) Update(ctx context.Context, account *model.CustomerLoyalty) error {
	return replaceVersioned(ctx, r.coll, account.ID, &account.Version, account)
}

type loyaltyProgramRepository struct {
	coll *mongo.Collection
}

func NewLoyaltyProgramRepository(db *mongo.Database) repository.LoyaltyProgramRepository {
	return &loyaltyProgramRepository{coll: db.Collection(colPrograms)}
}

func (r *loyaltyProgramRepository) GetActive(ctx context.Context) (*model.LoyaltyProgram, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updated_at", Value: -1}})
	return findOne[model.LoyaltyProgram](ctx, r.coll, bson.M{"is_active": true}, opts)
}

// Save upserts the program first and only then deactivates the others, so
// readers never observe a moment with no active program. Standalone servers
// have no multi-document transactions; GetActive's ordering covers the
// brief overlap.
func (r *loyaltyProgramRepository) Save(ctx context.Context, program *model.LoyaltyProgram) error {
	stamp(&program.Base)

	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": program.ID}, program, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save loyalty program: %w", err)
	}

	if !program.IsActive {
		return nil
	}
	_, err = r.coll.UpdateMany(ctx,
		bson.M{"is_active": true, "_id": bson.M{"$ne": program.ID}},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate loyalty programs: %w", err)
	}
	return nil
}
