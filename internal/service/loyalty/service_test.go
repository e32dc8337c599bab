package loyalty

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/internal/service/optimistic"
	"github.com/jwalitptl/salon-api/pkg/errors"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

// memAccounts is a versioned in-memory account store. conflicts makes the
// next n writes fail as if another writer got there first.
type memAccounts struct {
	mu        sync.Mutex
	byCust    map[uuid.UUID]model.CustomerLoyalty
	conflicts int
	writes    int
}

func newMemAccounts() *memAccounts {
	return &memAccounts{byCust: map[uuid.UUID]model.CustomerLoyalty{}}
}

func (m *memAccounts) GetByCustomer(_ context.Context, id uuid.UUID) (*model.CustomerLoyalty, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	acct, ok := m.byCust[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &acct, nil
}

func (m *memAccounts) Create(_ context.Context, acct *model.CustomerLoyalty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.byCust[acct.Customer]; ok {
		return repository.ErrConflict
	}
	acct.Version = 1
	m.byCust[acct.Customer] = *acct
	return nil
}

func (m *memAccounts) Update(_ context.Context, acct *model.CustomerLoyalty) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if m.conflicts > 0 {
		m.conflicts--
		return repository.ErrConflict
	}
	stored, ok := m.byCust[acct.Customer]
	if !ok || stored.Version != acct.Version {
		return repository.ErrConflict
	}
	acct.Version++
	m.byCust[acct.Customer] = *acct
	return nil
}

type fakePrograms struct {
	active *model.LoyaltyProgram
	saved  []*model.LoyaltyProgram
	gets   int
}

func (f *fakePrograms) GetActive(context.Context) (*model.LoyaltyProgram, error) {
	f.gets++
	if f.active == nil {
		return nil, repository.ErrNotFound
	}
	p := *f.active
	return &p, nil
}

func (f *fakePrograms) Save(_ context.Context, p *model.LoyaltyProgram) error {
	f.saved = append(f.saved, p)
	if p.IsActive {
		f.active = p
	}
	return nil
}

type mockCustomers struct {
	mock.Mock
}

func (m *mockCustomers) Get(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	args := m.Called(ctx, id)
	c, _ := args.Get(0).(*model.Customer)
	return c, args.Error(1)
}

func (m *mockCustomers) UpdateLoyaltySummary(ctx context.Context, id uuid.UUID, s model.LoyaltySummary) error {
	return m.Called(ctx, id, s).Error(0)
}

type recordedEvent struct {
	Type    string
	Payload interface{}
}

type recorder struct {
	events []recordedEvent
}

func (r *recorder) Emit(_ context.Context, eventType string, payload interface{}) error {
	r.events = append(r.events, recordedEvent{eventType, payload})
	return nil
}

func (r *recorder) types() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fixture struct {
	svc       *Service
	accounts  *memAccounts
	programs  *fakePrograms
	customers *mockCustomers
	events    *recorder
	metrics   *metrics.Metrics
}

func newFixture(program *model.LoyaltyProgram) *fixture {
	f := &fixture{
		accounts:  newMemAccounts(),
		programs:  &fakePrograms{active: program},
		customers: &mockCustomers{},
		events:    &recorder{},
		metrics:   metrics.New("test"),
	}
	provider := NewProgramProvider(f.programs, time.Minute, ProgramDefaults{})
	f.svc = NewService(f.accounts, f.programs, provider, f.customers, f.events, logger.Nop(), f.metrics,
		optimistic.Policy{MaxAttempts: 3, InitialDelay: time.Millisecond})
	f.svc.now = func() time.Time { return now }
	return f
}

func TestEarnThenRedeemThroughService(t *testing.T) {
	ctx := context.Background()
	program := testProgram
	f := newFixture(&program)
	customer := uuid.New()

	f.customers.On("Get", ctx, customer).Return(&model.Customer{Base: model.Base{ID: customer}, Name: "Jo Park"}, nil).Once()
	f.customers.On("UpdateLoyaltySummary", ctx, customer, mock.Anything).Return(nil)

	acct, err := f.svc.EarnPoints(ctx, &model.EarnPointsRequest{CustomerID: customer, Points: 50, Description: "Haircut"})
	require.NoError(t, err)
	assert.Equal(t, "Jo Park", acct.CustomerName)
	assert.Equal(t, 50, acct.CurrentPoints)
	assert.Equal(t, "Bronze", acct.TierName)

	acct, res, err := f.svc.RedeemPoints(ctx, &model.RedeemPointsRequest{
		CustomerID:     customer,
		Points:         30,
		Description:    "Beard trim discount",
		RedemptionType: model.RedemptionTypeServiceDiscount,
	})
	require.NoError(t, err)
	assert.Equal(t, 20, acct.CurrentPoints)
	assert.Equal(t, 50, acct.TotalPointsEarned)
	assert.Equal(t, 30, acct.TotalPointsRedeemed)
	assert.True(t, decimal.RequireFromString("0.30").Equal(res.Value))

	assert.Equal(t, []string{
		model.EventLoyaltyPointsEarned,
		model.EventLoyaltyTierChanged,
		model.EventLoyaltyPointsRedeem,
	}, f.events.types())
	assert.Equal(t, float64(50), testutil.ToFloat64(f.metrics.PointsEarned))
	assert.Equal(t, float64(30), testutil.ToFloat64(f.metrics.PointsRedeemed))

	f.customers.AssertCalled(t, "UpdateLoyaltySummary", ctx, customer, model.LoyaltySummary{
		Status: model.AccountStatusActive, Tier: "Bronze", Points: 20,
	})
}

func TestEarnPointsUnknownCustomer(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	customer := uuid.New()

	f.customers.On("Get", ctx, customer).Return(nil, errors.NotFound("customer", repository.ErrNotFound))

	_, err := f.svc.EarnPoints(ctx, &model.EarnPointsRequest{CustomerID: customer, Points: 10, Description: "Visit"})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.Zero(t, f.accounts.writes)
}

func TestEarnPointsRequiresFields(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.EarnPoints(context.Background(), &model.EarnPointsRequest{CustomerID: uuid.New()})
	assert.True(t, errors.Is(err, errors.ErrValidation))
}

func TestRedeemPointsWithoutAccount(t *testing.T) {
	f := newFixture(nil)
	_, _, err := f.svc.RedeemPoints(context.Background(), &model.RedeemPointsRequest{
		CustomerID:     uuid.New(),
		Points:         10,
		Description:    "Free wash",
		RedemptionType: model.RedemptionTypeFreeService,
	})
	assert.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRedeemInsufficientLeavesAccount(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	customer := uuid.New()
	f.accounts.byCust[customer] = model.CustomerLoyalty{
		Base: model.Base{ID: uuid.New()}, Customer: customer, Status: model.AccountStatusActive,
		TotalPointsEarned: 20, CurrentPoints: 20, Version: 4,
	}

	_, _, err := f.svc.RedeemPoints(ctx, &model.RedeemPointsRequest{
		CustomerID: customer, Points: 30, Description: "Color", RedemptionType: model.RedemptionTypeServiceDiscount,
	})
	assert.True(t, errors.Is(err, errors.ErrInsufficientPoints))

	stored := f.accounts.byCust[customer]
	assert.Equal(t, 20, stored.CurrentPoints)
	assert.Equal(t, 4, stored.Version)
	assert.Empty(t, f.events.events)
}

func TestEarnRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	customer := uuid.New()
	f.accounts.byCust[customer] = model.CustomerLoyalty{
		Base: model.Base{ID: uuid.New()}, Customer: customer, Status: model.AccountStatusActive, Version: 1,
	}
	f.accounts.conflicts = 2
	f.customers.On("UpdateLoyaltySummary", ctx, customer, mock.Anything).Return(nil)

	acct, err := f.svc.EarnPoints(ctx, &model.EarnPointsRequest{CustomerID: customer, Points: 5, Description: "Visit"})
	require.NoError(t, err)
	assert.Equal(t, 5, acct.CurrentPoints)
	assert.Equal(t, 3, f.accounts.writes)
	assert.Equal(t, float64(2), testutil.ToFloat64(f.metrics.ConcurrencyRetries.WithLabelValues("loyalty_account")))
}

func TestEarnConflictExhausted(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	customer := uuid.New()
	f.accounts.byCust[customer] = model.CustomerLoyalty{
		Base: model.Base{ID: uuid.New()}, Customer: customer, Status: model.AccountStatusActive, Version: 1,
	}
	f.accounts.conflicts = 10

	_, err := f.svc.EarnPoints(ctx, &model.EarnPointsRequest{CustomerID: customer, Points: 5, Description: "Visit"})
	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, 0, f.accounts.byCust[customer].CurrentPoints)
}

func TestSummaryFailureDoesNotFailEarn(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)
	customer := uuid.New()
	f.customers.On("Get", ctx, customer).Return(&model.Customer{Name: "Lee"}, nil)
	f.customers.On("UpdateLoyaltySummary", ctx, customer, mock.Anything).Return(errors.Internal(assert.AnError))

	acct, err := f.svc.EarnPoints(ctx, &model.EarnPointsRequest{CustomerID: customer, Points: 5, Description: "Visit"})
	require.NoError(t, err)
	assert.Equal(t, 5, acct.CurrentPoints)
}

func TestActiveProgramAndTiers(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		f := newFixture(nil)
		list, err := f.svc.ActiveProgram(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, list.TotalDocs)
		assert.NotNil(t, list.Docs)

		tiers, err := f.svc.Tiers(ctx)
		require.NoError(t, err)
		assert.Equal(t, []model.Tier{}, tiers)
	})

	t.Run("cached", func(t *testing.T) {
		program := testProgram
		f := newFixture(&program)

		list, err := f.svc.ActiveProgram(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, list.TotalDocs)
		assert.Equal(t, "Modern Rewards", list.Docs[0].Name)

		tiers, err := f.svc.Tiers(ctx)
		require.NoError(t, err)
		assert.Len(t, tiers, 3)
		assert.Equal(t, 1, f.programs.gets)
	})
}

func TestSaveProgramNormalizesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(nil)

	_, err := f.svc.Tiers(ctx)
	require.NoError(t, err)

	program, err := f.svc.SaveProgram(ctx, &model.SaveProgramRequest{
		Name:     "Spring",
		IsActive: true,
		Tiers: []model.Tier{
			{Name: "Gold", MinPoints: 500},
			{Name: "Bronze", MinPoints: 0},
			{Name: "Silver", MinPoints: 150},
		},
	})
	require.NoError(t, err)
	require.Len(t, program.Tiers, 3)
	assert.Equal(t, "Bronze", program.Tiers[0].Name)
	require.NotNil(t, program.Tiers[0].MaxPoints)
	assert.Equal(t, 149, *program.Tiers[0].MaxPoints)

	tiers, err := f.svc.Tiers(ctx)
	require.NoError(t, err)
	assert.Len(t, tiers, 3)
	assert.Equal(t, 2, f.programs.gets)
}

func TestProviderFallsBackToDefaults(t *testing.T) {
	provider := NewProgramProvider(&fakePrograms{}, time.Minute, ProgramDefaults{
		PointValue:      decimal.RequireFromString("0.05"),
		PointsPerDollar: decimal.NewFromInt(2),
	})

	program, err := provider.Active(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "0.05", program.RedemptionRules.PointValue.String())
	assert.Equal(t, "2", program.PointsPerDollar.String())
	assert.Empty(t, program.Tiers)
}

func TestGetByCustomerRefreshesExpiringPoints(t *testing.T) {
	ctx := context.Background()
	program := testProgram
	program.RedemptionRules.ExpirationPolicy = model.ExpirationPolicy{PointsExpire: true, ExpirationPeriod: 12, ExpirationWarning: 30}
	f := newFixture(&program)
	customer := uuid.New()

	f.accounts.byCust[customer] = model.CustomerLoyalty{
		Customer:      customer,
		CurrentPoints: 120,
		RecentTransactions: []model.LoyaltyTransaction{
			{Type: model.TransactionTypeEarned, Points: 40, ExpiresAt: model.TimePtr(now.AddDate(0, 0, 10))},
			{Type: model.TransactionTypeEarned, Points: 80, ExpiresAt: model.TimePtr(now.AddDate(0, 6, 0))},
		},
		Status: model.AccountStatusActive,
	}

	acct, err := f.svc.GetByCustomer(ctx, customer)
	require.NoError(t, err)
	assert.Equal(t, 40, acct.ExpiringPoints)
	assert.Equal(t, 0, acct.PendingPoints)
}
