package mongodb

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type postRepository struct {
	coll *mongo.Collection
}

func NewPostRepository(db *mongo.Database) repository.PostRepository {
	return &postRepository{coll: db.Collection(colPosts)}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	stamp(&post.Base)
	return insert(ctx, r.coll, post)
}

func (r *postRepository) Get(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return findOne[model.Post](ctx, r.coll, bson.M{"_id": id})
}

func (r *postRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating model.PostRating) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"rating": rating}})
	if err != nil {
		return fmt.Errorf("failed to update post rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *postRepository) ListTrending(ctx context.Context, limit int) ([]*model.Post, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "rating.average_rating", Value: -1}, {Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))
	return findMany[model.Post](ctx, r.coll, bson.M{"is_public": true}, opts)
}

func (r *postRepository) ListByCategory(ctx context.Context, category string, limit int) ([]*model.Post, error) {
	return findMany[model.Post](ctx, r.coll, bson.M{"is_public": true, "category": category}, newestFirst(limit))
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*model.Post, error) {
	return findMany[model.Post](ctx, r.coll, bson.M{"is_public": true, "author": authorID}, newestFirst(limit))
}

type ratingRepository struct {
	coll *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) repository.RatingRepository {
	return &ratingRepository{coll: db.Collection(colRatings)}
}

func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	stamp(&rating.Base)
	return insert(ctx, r.coll, rating)
}

func (r *ratingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Rating, error) {
	return findOne[model.Rating](ctx, r.coll, bson.M{"_id": id})
}

func (r *ratingRepository) Update(ctx context.Context, rating *model.Rating) error {
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": rating.ID}, rating)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *ratingRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Rating, error) {
	docs, err := findMany[model.Rating](ctx, r.coll, bson.M{"post": postID}, options.Find())
	if err != nil {
		return nil, err
	}
	out := make([]model.Rating, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d)
	}
	return out, nil
}
