package customer

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

type Service struct {
	repo repository.CustomerRepository
	now  func() time.Time
}

func NewService(repo repository.CustomerRepository, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{repo: repo, now: now}
}

func (s *Service) Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error) {
	now := s.now().UTC()
	customer := &model.Customer{
		Base:  model.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	}

	if err := s.repo.Create(ctx, customer); err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return customer, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	customer, err := s.repo.Get(ctx, id)
	if stderrors.Is(err, repository.ErrNotFound) {
		return nil, errors.NotFound("customer", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// UpdateLoyaltySummary mirrors a loyalty account's status, tier and balance
// onto the customer record.
func (s *Service) UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, summary model.LoyaltySummary) error {
	err := s.repo.UpdateLoyaltySummary(ctx, id, summary)
	if stderrors.Is(err, repository.ErrNotFound) {
		return errors.NotFound("customer", err)
	}
	if err != nil {
		return fmt.Errorf("failed to update customer loyalty summary: %w", err)
	}
	return nil
}
