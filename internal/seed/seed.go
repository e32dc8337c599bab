// Package seed loads demo data (a loyalty program, offers, challenges and
// customers) from a YAML fixture file through the domain services.
package seed

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/logger"
	salonvalidator "github.com/jwalitptl/salon-api/pkg/validator"
)

// SystemUser is the creator recorded on seeded offers and challenges when
// no user is given.
var SystemUser = uuid.NewSHA1(uuid.NameSpaceURL, []byte("salon-api/seed"))

type Fixtures struct {
	Program    *ProgramFixture    `yaml:"program"`
	Customers  []CustomerFixture  `yaml:"customers"`
	Offers     []OfferFixture     `yaml:"offers"`
	Challenges []ChallengeFixture `yaml:"challenges"`
}

type ProgramFixture struct {
	Name              string          `yaml:"name"`
	Description       string          `yaml:"description"`
	PointsPerDollar   decimal.Decimal `yaml:"points_per_dollar"`
	PointValue        decimal.Decimal `yaml:"point_value"`
	MinPointsToRedeem int             `yaml:"min_points_to_redeem"`
	Tiers             []TierFixture   `yaml:"tiers"`
}

type TierFixture struct {
	Name               string          `yaml:"name"`
	MinPoints          int             `yaml:"min_points"`
	MaxPoints          *int            `yaml:"max_points"`
	DiscountPercentage decimal.Decimal `yaml:"discount_percentage"`
	PointsMultiplier   decimal.Decimal `yaml:"points_multiplier"`
	Benefits           []string        `yaml:"benefits"`
	Color              string          `yaml:"color"`
}

type CustomerFixture struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
}

// OfferFixture validity is relative to the seed time so fixtures stay usable.
type OfferFixture struct {
	Name           string             `yaml:"name"`
	Description    string             `yaml:"description"`
	Type           string             `yaml:"type"`
	Category       string             `yaml:"category"`
	EligibleTiers  []string           `yaml:"eligible_tiers"`
	ValidFor       time.Duration      `yaml:"valid_for"`
	MaxRedemptions int                `yaml:"max_redemptions"`
	MaxPerCustomer int                `yaml:"max_per_customer"`
	DiscountType   model.DiscountType `yaml:"discount_type"`
	DiscountValue  decimal.Decimal    `yaml:"discount_value"`
	PromoCode      string             `yaml:"promo_code"`
	Tags           []string           `yaml:"tags"`
}

type ChallengeFixture struct {
	Title           string          `yaml:"title"`
	Description     string          `yaml:"description"`
	Category        string          `yaml:"category"`
	Difficulty      string          `yaml:"difficulty"`
	StartsIn        time.Duration   `yaml:"starts_in"`
	RunsFor         time.Duration   `yaml:"runs_for"`
	MaxParticipants int             `yaml:"max_participants"`
	EntryFee        decimal.Decimal `yaml:"entry_fee"`
	Rules           []string        `yaml:"rules"`
	Tags            []string        `yaml:"tags"`
}

// Load reads fixtures from a YAML file.
func Load(path string) (*Fixtures, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixtures: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// Decode parses fixtures, rejecting unknown keys.
func Decode(r io.Reader) (*Fixtures, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var fx Fixtures
	if err := dec.Decode(&fx); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse fixtures: %w", err)
	}
	return &fx, nil
}

type ProgramSaver interface {
	SaveProgram(ctx context.Context, req *model.SaveProgramRequest) (*model.LoyaltyProgram, error)
}

type CustomerCreator interface {
	Create(ctx context.Context, req *model.CreateCustomerRequest) (*model.Customer, error)
}

type OfferStore interface {
	Create(ctx context.Context, req *model.CreateOfferRequest, principal *uuid.UUID) (*model.RewardsOffer, error)
	Active(ctx context.Context) (model.ListResult[*model.RewardsOffer], error)
}

type ChallengeStore interface {
	Create(ctx context.Context, req *model.CreateChallengeRequest, principal *uuid.UUID) (*model.Challenge, error)
	Active(ctx context.Context) (model.ListResult[*model.Challenge], error)
}

// Result counts what a run created.
type Result struct {
	Program    bool
	Customers  int
	Offers     int
	Challenges int
}

type Seeder struct {
	programs   ProgramSaver
	customers  CustomerCreator
	offers     OfferStore
	challenges ChallengeStore
	validate   *validator.Validate
	logger     *logger.Logger
	now        func() time.Time
}

func NewSeeder(programs ProgramSaver, customers CustomerCreator, offers OfferStore, challenges ChallengeStore, log *logger.Logger) (*Seeder, error) {
	v := validator.New()
	v.SetTagName("binding")
	if err := salonvalidator.Register(v, model.ValidationRules()); err != nil {
		return nil, err
	}
	return &Seeder{
		programs:   programs,
		customers:  customers,
		offers:     offers,
		challenges: challenges,
		validate:   v,
		logger:     log,
		now:        time.Now,
	}, nil
}

// Run applies fx. Offers and challenges whose name is already active are
// skipped, so running twice does not duplicate them. Customers are always
// created. A nil creator means SystemUser.
func (s *Seeder) Run(ctx context.Context, fx *Fixtures, creator *uuid.UUID) (Result, error) {
	var res Result
	if creator == nil {
		creator = &SystemUser
	}
	now := s.now().UTC()

	if fx.Program != nil {
		req := fx.Program.request()
		if err := s.validate.Struct(req); err != nil {
			return res, fmt.Errorf("invalid program %q: %w", req.Name, err)
		}
		program, err := s.programs.SaveProgram(ctx, req)
		if err != nil {
			return res, fmt.Errorf("failed to seed program: %w", err)
		}
		res.Program = true
		s.logger.Info("Seeded loyalty program", "program_id", program.ID.String(), "tiers", len(program.Tiers))
	}

	for _, c := range fx.Customers {
		req := &model.CreateCustomerRequest{Name: c.Name, Email: c.Email, Phone: c.Phone}
		if err := s.validate.Struct(req); err != nil {
			return res, fmt.Errorf("invalid customer %q: %w", c.Name, err)
		}
		if _, err := s.customers.Create(ctx, req); err != nil {
			return res, fmt.Errorf("failed to seed customer %q: %w", c.Name, err)
		}
		res.Customers++
	}

	if len(fx.Offers) > 0 {
		active, err := s.offers.Active(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to list active offers: %w", err)
		}
		existing := make(map[string]bool, len(active.Docs))
		for _, o := range active.Docs {
			existing[o.Name] = true
		}

		for _, o := range fx.Offers {
			if existing[o.Name] {
				s.logger.Debug("Offer already active, skipping", "name", o.Name)
				continue
			}
			req := o.request(now)
			if err := s.validate.Struct(req); err != nil {
				return res, fmt.Errorf("invalid offer %q: %w", o.Name, err)
			}
			if _, err := s.offers.Create(ctx, req, creator); err != nil {
				return res, fmt.Errorf("failed to seed offer %q: %w", o.Name, err)
			}
			res.Offers++
		}
	}

	if len(fx.Challenges) > 0 {
		active, err := s.challenges.Active(ctx)
		if err != nil {
			return res, fmt.Errorf("failed to list active challenges: %w", err)
		}
		existing := make(map[string]bool, len(active.Docs))
		for _, c := range active.Docs {
			existing[c.Title] = true
		}

		for _, c := range fx.Challenges {
			if existing[c.Title] {
				s.logger.Debug("Challenge already active, skipping", "title", c.Title)
				continue
			}
			req := c.request(now)
			if err := s.validate.Struct(req); err != nil {
				return res, fmt.Errorf("invalid challenge %q: %w", c.Title, err)
			}
			if _, err := s.challenges.Create(ctx, req, creator); err != nil {
				return res, fmt.Errorf("failed to seed challenge %q: %w", c.Title, err)
			}
			res.Challenges++
		}
	}

	s.logger.Info("Seed complete",
		"program", res.Program,
		"customers", res.Customers,
		"offers", res.Offers,
		"challenges", res.Challenges)
	return res, nil
}

func (p *ProgramFixture) request() *model.SaveProgramRequest {
	tiers := make([]model.Tier, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		tiers = append(tiers, model.Tier{
			Name:               t.Name,
			MinPoints:          t.MinPoints,
			MaxPoints:          t.MaxPoints,
			DiscountPercentage: t.DiscountPercentage,
			PointsMultiplier:   t.PointsMultiplier,
			Benefits:           t.Benefits,
			Color:              t.Color,
		})
	}
	return &model.SaveProgramRequest{
		Name:            p.Name,
		Description:     p.Description,
		IsActive:        true,
		PointsPerDollar: p.PointsPerDollar,
		Tiers:           tiers,
		RedemptionRules: model.RedemptionRules{
			MinPointsToRedeem: p.MinPointsToRedeem,
			PointValue:        p.PointValue,
		},
	}
}

func (o *OfferFixture) request(now time.Time) *model.CreateOfferRequest {
	validFor := o.ValidFor
	if validFor <= 0 {
		validFor = 30 * 24 * time.Hour
	}
	req := &model.CreateOfferRequest{
		Name:            o.Name,
		Description:     o.Description,
		Type:            o.Type,
		Category:        o.Category,
		IsActive:        true,
		IsPublic:        true,
		EligibleTiers:   o.EligibleTiers,
		ValidFrom:       now,
		ValidUntil:      now.Add(validFor),
		MaxRedemptions:  o.MaxRedemptions,
		MaxPerCustomer:  o.MaxPerCustomer,
		PromotionalCode: o.PromoCode,
		Tags:            o.Tags,
	}
	if o.DiscountType != "" {
		req.DiscountDetails = &model.DiscountDetails{
			DiscountType:  o.DiscountType,
			DiscountValue: o.DiscountValue,
		}
	}
	return req
}

func (c *ChallengeFixture) request(now time.Time) *model.CreateChallengeRequest {
	runsFor := c.RunsFor
	if runsFor <= 0 {
		runsFor = 14 * 24 * time.Hour
	}
	start := now.Add(c.StartsIn)
	return &model.CreateChallengeRequest{
		Title:           c.Title,
		Description:     c.Description,
		Category:        c.Category,
		Difficulty:      c.Difficulty,
		StartDate:       model.TimePtr(start),
		EndDate:         model.TimePtr(start.Add(runsFor)),
		MaxParticipants: c.MaxParticipants,
		EntryFee:        c.EntryFee,
		Rules:           c.Rules,
		Tags:            c.Tags,
	}
}
