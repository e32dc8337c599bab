package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

type postRepository struct {
	db *sqlx.DB
}

func NewPostRepository(db *sqlx.DB) repository.PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	stamp(&post.Base)

	doc, err := marshalDoc(post)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO posts (
			id, author_id, category, is_public, average_rating, doc, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
	`
	_, err = r.db.ExecContext(ctx, query,
		post.ID,
		post.Author,
		post.Category,
		post.IsPublic,
		post.Rating.AverageRating,
		doc,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *postRepository) Get(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	return getDoc[model.Post](ctx, r.db, `SELECT doc FROM posts WHERE id = $1`, id)
}

func (r *postRepository) UpdateRating(ctx context.Context, id uuid.UUID, rating model.PostRating) error {
	value, err := marshalDoc(rating)
	if err != nil {
		return err
	}

	query := `
		UPDATE posts
		SET doc = jsonb_set(doc, '{rating}', $1::jsonb),
			average_rating = $2,
			updated_at = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, value, rating.AverageRating, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update post rating: %w", err)
	}
	return expectOne(res, repository.ErrNotFound)
}

func (r *postRepository) ListTrending(ctx context.Context, limit int) ([]*model.Post, error) {
	query := `
		SELECT doc FROM posts
		WHERE is_public
		ORDER BY average_rating DESC, created_at DESC
		LIMIT $1
	`
	return listDocs[model.Post](ctx, r.db, query, limit)
}

func (r *postRepository) ListByCategory(ctx context.Context, category string, limit int) ([]*model.Post, error) {
	query := `
		SELECT doc FROM posts
		WHERE is_public AND category = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return listDocs[model.Post](ctx, r.db, query, category, limit)
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uuid.UUID, limit int) ([]*model.Post, error) {
	query := `
		SELECT doc FROM posts
		WHERE is_public AND author_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	return listDocs[model.Post](ctx, r.db, query, authorID, limit)
}

type ratingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) repository.RatingRepository {
	return &ratingRepository{db: db}
}

func (r *ratingRepository) Create(ctx context.Context, rating *model.Rating) error {
	stamp(&rating.Base)

	doc, err := marshalDoc(rating)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO ratings (id, post_id, doc, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	if _, err := r.db.ExecContext(ctx, query, rating.ID, rating.Post, doc, rating.CreatedAt, rating.UpdatedAt); err != nil {
		return fmt.Errorf("failed to create rating: %w", err)
	}
	return nil
}

func (r *ratingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Rating, error) {
	return getDoc[model.Rating](ctx, r.db, `SELECT doc FROM ratings WHERE id = $1`, id)
}

func (r *ratingRepository) Update(ctx context.Context, rating *model.Rating) error {
	doc, err := marshalDoc(rating)
	if err != nil {
		return err
	}

	query := `
		UPDATE ratings
		SET post_id = $1, doc = $2, updated_at = $3
		WHERE id = $4
	`
	res, err := r.db.ExecContext(ctx, query, rating.Post, doc, rating.UpdatedAt, rating.ID)
	if err != nil {
		return fmt.Errorf("failed to update rating: %w", err)
	}
	return expectOne(res, repository.ErrNotFound)
}

func (r *ratingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM ratings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rating: %w", err)
	}
	return expectOne(res, repository.ErrNotFound)
}

func (r *ratingRepository) ListByPost(ctx context.Context, postID uuid.UUID) ([]model.Rating, error) {
	docs, err := listDocs[model.Rating](ctx, r.db, `SELECT doc FROM ratings WHERE post_id = $1`, postID)
	if err != nil {
		return nil, err
	}

	ratings := make([]model.Rating, 0, len(docs))
	for _, d := range docs {
		ratings = append(ratings, *d)
	}
	return ratings, nil
}
