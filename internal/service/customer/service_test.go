package customer

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(ctx context.Context, c *model.Customer) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockRepo) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *mockRepo) UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, s model.LoyaltySummary) error {
	return m.Called(ctx, id, s).Error(0)
}

func TestCreate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	repo := &mockRepo{}
	svc := NewService(repo, func() time.Time { return now })

	repo.On("Create", ctx, mock.MatchedBy(func(c *model.Customer) bool {
		return c.Name == "Ana Silva" && c.CreatedAt.Equal(now) && c.ID != uuid.Nil
	})).Return(nil)

	c, err := svc.Create(ctx, &model.CreateCustomerRequest{Name: "Ana Silva", Email: "ana@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", c.Email)
	repo.AssertExpectations(t)
}

func TestGetNotFound(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	id := uuid.New()

	repo.On("Get", ctx, id).Return(nil, repository.ErrNotFound)

	_, err := svc.Get(ctx, id)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestUpdateLoyaltySummary(t *testing.T) {
	ctx := context.Background()
	repo := &mockRepo{}
	svc := NewService(repo, nil)
	id := uuid.New()
	summary := model.LoyaltySummary{Status: model.AccountStatusActive, Tier: "Silver", Points: 150}

	repo.On("UpdateLoyaltySummary", ctx, id, summary).Return(nil).Once()
	require.NoError(t, svc.UpdateLoyaltySummary(ctx, id, summary))

	repo.On("UpdateLoyaltySummary", ctx, id, model.LoyaltySummary{}).Return(repository.ErrNotFound).Once()
	err := svc.UpdateLoyaltySummary(ctx, id, model.LoyaltySummary{})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}
