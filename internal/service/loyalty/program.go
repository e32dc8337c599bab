package loyalty

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/internal/repository"
)

const activeProgramKey = "active"

// ProgramDefaults fill in for a missing active program so earning still works.
type ProgramDefaults struct {
	PointValue      decimal.Decimal
	PointsPerDollar decimal.Decimal
}

// ProgramProvider caches the active loyalty program. An absent program is
// cached too, so lookups stay cheap until the TTL runs out or Invalidate.
type ProgramProvider struct {
	repo     repository.LoyaltyProgramRepository
	cache    *cache.Cache
	defaults ProgramDefaults
}

func NewProgramProvider(repo repository.LoyaltyProgramRepository, ttl time.Duration, defaults ProgramDefaults) *ProgramProvider {
	if ttl <= 0 {
		ttl = time.Minute
	}
	if !defaults.PointValue.IsPositive() {
		defaults.PointValue = DefaultPointValue
	}
	return &ProgramProvider{
		repo:     repo,
		cache:    cache.New(ttl, 2*ttl),
		defaults: defaults,
	}
}

// Current returns the active program, or nil when none is configured.
func (p *ProgramProvider) Current(ctx context.Context) (*model.LoyaltyProgram, error) {
	if v, ok := p.cache.Get(activeProgramKey); ok {
		return copyProgram(v.(*model.LoyaltyProgram)), nil
	}

	program, err := p.repo.GetActive(ctx)
	if stderrors.Is(err, repository.ErrNotFound) {
		program, err = nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active loyalty program: %w", err)
	}

	p.cache.SetDefault(activeProgramKey, program)
	return copyProgram(program), nil
}

// Active returns the active program, falling back to an empty program
// carrying the configured defaults.
func (p *ProgramProvider) Active(ctx context.Context) (model.LoyaltyProgram, error) {
	program, err := p.Current(ctx)
	if err != nil {
		return model.LoyaltyProgram{}, err
	}
	if program == nil {
		return model.LoyaltyProgram{
			PointsPerDollar: p.defaults.PointsPerDollar,
			RedemptionRules: model.RedemptionRules{PointValue: p.defaults.PointValue},
		}, nil
	}
	if !program.RedemptionRules.PointValue.IsPositive() {
		program.RedemptionRules.PointValue = p.defaults.PointValue
	}
	return *program, nil
}

func (p *ProgramProvider) Invalidate() {
	p.cache.Delete(activeProgramKey)
}

func copyProgram(program *model.LoyaltyProgram) *model.LoyaltyProgram {
	if program == nil {
		return nil
	}
	out := *program
	out.Tiers = append([]model.Tier(nil), program.Tiers...)
	return &out
}
