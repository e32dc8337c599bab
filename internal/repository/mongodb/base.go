package mongodb

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const defaultListLimit = 100

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOneOptions) (*T, error) {
	var out T
	err := coll.FindOne(ctx, filter, opts...).Decode(&out)
	if stderrors.Is(err, mongo.ErrNoDocuments) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find in %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, filter interface{}, opts ...*options.FindOptions) ([]*T, error) {
	cur, err := coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	out := []*T{}
	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", coll.Name(), err)
		}
		out = append(out, &doc)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s: %w", coll.Name(), err)
	}
	return out, nil
}

func insert(ctx context.Context, coll *mongo.Collection, doc interface{}) error {
	_, err := coll.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return repository.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", coll.Name(), err)
	}
	return nil
}

// replaceVersioned swaps in doc only if the stored version still matches.
// version is bumped on success and restored on failure.
func replaceVersioned(ctx context.Context, coll *mongo.Collection, id uuid.UUID, version *int, doc interface{}) error {
	expected := *version
	*version++

	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id, "version": expected}, doc)
	if err != nil {
		*version = expected
		return fmt.Errorf("failed to update %s: %w", coll.Name(), err)
	}
	if res.MatchedCount == 0 {
		*version = expected
		return repository.ErrConflict
	}
	return nil
}

func newestFirst(limit int) *options.FindOptions {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
}

func stamp(b *model.Base) {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	if b.UpdatedAt.IsZero() {
		b.UpdatedAt = b.CreatedAt
	}
}
