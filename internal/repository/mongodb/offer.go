package mongodb

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type offerRepository struct {
	coll *mongo.Collection
}

func NewOfferRepository(db *mongo.Database) repository.OfferRepository {
	return &offerRepository{coll: db.Collection(colOffers)}
}

func (r *offerRepository) Create(ctx context.Context, offer *model.RewardsOffer) error {
	stamp(&offer.Base)
	offer.Version = 1
	return insert(ctx, r.coll, offer)
}

func (r *offerRepository) Get(ctx context.Context, id uuid.UUID) (*model.RewardsOffer, error) {
	return findOne[model.RewardsOffer](ctx, r.coll, bson.M{"_id": id})
}

func (r *offerRepository) Update(ctx context.Context, offer *model.RewardsOffer) error {
	return replaceVersioned(ctx, r.coll, offer.ID, &offer.Version, offer)
}

func (r *offerRepository) ListActive(ctx context.Context, at time.Time, category string, limit int) ([]*model.RewardsOffer, error) {
	return findMany[model.RewardsOffer](ctx, r.coll, activeOfferFilter(at, category), newestFirst(limit))
}

func activeOfferFilter(at time.Time, category string) bson.D {
	filter := bson.D{
		{Key: "is_active", Value: true},
		{Key: "valid_from", Value: bson.M{"$lte": at}},
		{Key: "valid_until", Value: bson.M{"$gte": at}},
	}
	if category != "" {
		filter = append(filter, bson.E{Key: "category", Value: category})
	}
	return filter
}
