package social

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/event"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

const (
	TrendingLimit = 20
	CategoryLimit = 50
	BarberLimit   = 50
)

type Service struct {
	posts   repository.PostRepository
	ratings repository.RatingRepository
	events  event.Emitter
	logger  *logger.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

func NewService(posts repository.PostRepository, ratings repository.RatingRepository, events event.Emitter, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		posts:   posts,
		ratings: ratings,
		events:  events,
		logger:  logger,
		metrics: metrics,
		now:     time.Now,
	}
}

type ratingRefreshedEvent struct {
	PostID uuid.UUID        `json:"postId"`
	Rating model.PostRating `json:"rating"`
}

// CreatePost stores a post. The author defaults to the calling principal.
func (s *Service) CreatePost(ctx context.Context, req *model.CreatePostRequest, principal *uuid.UUID) (*model.Post, error) {
	author := req.Author
	if author == nil {
		author = principal
	}
	if author == nil {
		return nil, errors.Validation("author is required")
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	now := s.now().UTC()
	post := &model.Post{
		Base:        model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Audit:       model.Audit{CreatedBy: principal},
		Title:       req.Title,
		Author:      *author,
		ClientName:  req.ClientName,
		Description: req.Description,
		Category:    req.Category,
		Tags:        req.Tags,
		IsPublic:    isPublic,
		IsFeatured:  req.IsFeatured,
		Challenge:   req.Challenge,
		Location:    req.Location,
		Rating:      AverageRating(nil),
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
	return post, nil
}

func (s *Service) GetPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("post", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// Trending lists public posts by average rating, best first.
func (s *Service) Trending(ctx context.Context) (model.ListResult[*model.Post], error) {
	posts, err := s.posts.ListTrending(ctx, TrendingLimit)
	if err != nil {
		return model.ListResult[*model.Post]{}, fmt.Errorf("failed to list trending posts: %w", err)
	}
	return model.NewListResult(posts), nil
}

func (s *Service) ByCategory(ctx context.Context, category string) (model.ListResult[*model.Post], error) {
	posts, err := s.posts.ListByCategory(ctx, category, CategoryLimit)
	if err != nil {
		return model.ListResult[*model.Post]{}, fmt.Errorf("failed to list posts by category: %w", err)
	}
	return model.NewListResult(posts), nil
}

func (s *Service) ByBarber(ctx context.Context, barberID uuid.UUID) (model.ListResult[*model.Post], error) {
	posts, err := s.posts.ListByAuthor(ctx, barberID, BarberLimit)
	if err != nil {
		return model.ListResult[*model.Post]{}, fmt.Errorf("failed to list posts by barber: %w", err)
	}
	return model.NewListResult(posts), nil
}

// CreateRating scores a post. The user defaults to the calling principal.
func (s *Service) CreateRating(ctx context.Context, req *model.CreateRatingRequest, principal *uuid.UUID) (*model.Rating, error) {
	if err := validateScore(req.Rating); err != nil {
		return nil, err
	}
	user := req.User
	if user == nil {
		user = principal
	}
	if user == nil {
		return nil, errors.Validation("user is required")
	}
	if _, err := s.GetPost(ctx, req.Post); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	rating := &model.Rating{
		Base:    model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Post:    req.Post,
		User:    *user,
		Rating:  req.Rating,
		Comment: req.Comment,
	}
	if err := s.ratings.Create(ctx, rating); err != nil {
		return nil, fmt.Errorf("failed to create rating: %w", err)
	}

	s.refreshPostRating(ctx, rating.Post)
	return rating, nil
}

func (s *Service) UpdateRating(ctx context.Context, id uuid.UUID, req *model.UpdateRatingRequest) (*model.Rating, error) {
	if err := validateScore(req.Rating); err != nil {
		return nil, err
	}

	rating, err := s.getRating(ctx, id)
	if err != nil {
		return nil, err
	}
	rating.Rating = req.Rating
	rating.Comment = req.Comment
	rating.UpdatedAt = s.now().UTC()

	if err := s.ratings.Update(ctx, rating); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NotFound("rating", err)
		}
		return nil, fmt.Errorf("failed to update rating: %w", err)
	}

	s.refreshPostRating(ctx, rating.Post)
	return rating, nil
}

func (s *Service) DeleteRating(ctx context.Context, id uuid.UUID) error {
	rating, err := s.getRating(ctx, id)
	if err != nil {
		return err
	}

	if err := s.ratings.Delete(ctx, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NotFound("rating", err)
		}
		return fmt.Errorf("failed to delete rating: %w", err)
	}

	s.refreshPostRating(ctx, rating.Post)
	return nil
}

func (s *Service) getRating(ctx context.Context, id uuid.UUID) (*model.Rating, error) {
	rating, err := s.ratings.Get(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("rating", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}
	return rating, nil
}

// refreshPostRating recomputes a post's rating from all of its ratings.
// Failures are logged and counted; the rating write already succeeded.
func (s *Service) refreshPostRating(ctx context.Context, postID uuid.UUID) {
	if err := s.recompute(ctx, postID); err != nil {
		s.metrics.RatingRefreshFailures.Inc()
		s.logger.Error(err, "Failed to refresh post rating", "post_id", postID.String())
	}
}

func (s *Service) recompute(ctx context.Context, postID uuid.UUID) error {
	ratings, err := s.ratings.ListByPost(ctx, postID)
	if err != nil {
		return fmt.Errorf("failed to list ratings: %w", err)
	}

	summary := AverageRating(ratings)
	if err := s.posts.UpdateRating(ctx, postID, summary); err != nil {
		return fmt.Errorf("failed to update post rating: %w", err)
	}

	if err := s.events.Emit(ctx, model.EventPostRatingRefreshed, ratingRefreshedEvent{PostID: postID, Rating: summary}); err != nil {
		s.logger.Error(err, "Failed to record event", "event_type", model.EventPostRatingRefreshed)
	}
	return nil
}

func validateScore(score int) error {
	if score < 1 || score > 10 {
		return errors.Validation("rating must be between 1 and 10")
	}
	return nil
}
