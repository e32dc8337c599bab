package mongodb

import (
	"context"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type challengeRepository struct {
	coll *mongo.Collection
}

func NewChallengeRepository(db *mongo.Database) repository.ChallengeRepository {
	return &challengeRepository{coll: db.Collection(colChallenges)}
}

func (r *challengeRepository) Create(ctx context.Context, challenge *model.Challenge) error {
	stamp(&challenge.Base)
	challenge.Version = 1
	return insert(ctx, r.coll, challenge)
}

func (r *challengeRepository) Get(ctx context.Context, id uuid.UUID) (*model.Challenge, error) {
	return findOne[model.Challenge](ctx, r.coll, bson.M{"_id": id})
}

func (r *challengeRepository) Update(ctx context.Context, challenge *model.Challenge) error {
	return replaceVersioned(ctx, r.coll, challenge.ID, &challenge.Version, challenge)
}

func (r *challengeRepository) ListByStatus(ctx context.Context, statuses []model.ChallengeStatus, offset, limit int) ([]*model.Challenge, error) {
	opts := newestFirst(limit).SetSkip(int64(offset))
	return findMany[model.Challenge](ctx, r.coll, bson.M{"status": bson.M{"$in": statuses}}, opts)
}
