package offer

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

func TestRecomputeAnalytics(t *testing.T) {
	t.Run("rates", func(t *testing.T) {
		a := RecomputeAnalytics(model.OfferAnalytics{
			Views:       200,
			Redemptions: 7,
			TotalValue:  decimal.RequireFromString("245.50"),
		})

		// 7 / 200 = 3.5% rounds to 4
		assert.Equal(t, 4, a.ConversionRate)
		assert.True(t, decimal.RequireFromString("35.07").Equal(a.AverageOrderValue), "aov %s", a.AverageOrderValue)
	})

	t.Run("no views or redemptions", func(t *testing.T) {
		a := RecomputeAnalytics(model.OfferAnalytics{})
		assert.Equal(t, 0, a.ConversionRate)
		assert.True(t, a.AverageOrderValue.IsZero())
	})
}

func TestCheckRedeemable(t *testing.T) {
	now := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	customer := uuid.New()
	valid := model.RewardsOffer{
		IsActive:   true,
		ValidFrom:  now.AddDate(0, 0, -7),
		ValidUntil: now.AddDate(0, 0, 7),
		RedemptionLimit: model.RedemptionLimit{
			MaxRedemptions:     10,
			CurrentRedemptions: 3,
		},
	}

	assert.NoError(t, CheckRedeemable(valid, customer, now))

	inactive := valid
	inactive.IsActive = false
	err := CheckRedeemable(inactive, customer, now)
	assert.True(t, errors.Is(err, errors.ErrNotFound))
	assert.EqualError(t, err, "offer not available")

	expired := valid
	expired.ValidUntil = now.Add(-time.Minute)
	assert.True(t, errors.Is(CheckRedeemable(expired, customer, now), errors.ErrExpiredOffer))

	early := valid
	early.ValidFrom = now.Add(time.Minute)
	assert.True(t, errors.Is(CheckRedeemable(early, customer, now), errors.ErrExpiredOffer))

	full := valid
	full.RedemptionLimit.CurrentRedemptions = 10
	assert.True(t, errors.Is(CheckRedeemable(full, customer, now), errors.ErrLimitReached))

	unlimited := valid
	unlimited.RedemptionLimit = model.RedemptionLimit{CurrentRedemptions: 1000}
	assert.NoError(t, CheckRedeemable(unlimited, customer, now))
}

func TestCheckRedeemablePerCustomer(t *testing.T) {
	now := time.Date(2024, 8, 15, 12, 0, 0, 0, time.UTC)
	regular, newcomer := uuid.New(), uuid.New()
	o := model.RewardsOffer{
		IsActive:   true,
		ValidFrom:  now.AddDate(0, 0, -7),
		ValidUntil: now.AddDate(0, 0, 7),
		RedemptionLimit: model.RedemptionLimit{
			MaxPerCustomer:     2,
			CurrentRedemptions: 2,
			ByCustomer:         map[string]int{regular.String(): 2},
		},
	}

	assert.True(t, errors.Is(CheckRedeemable(o, regular, now), errors.ErrLimitReached))
	assert.NoError(t, CheckRedeemable(o, newcomer, now))

	o.RedemptionLimit.MaxPerCustomer = 0
	assert.NoError(t, CheckRedeemable(o, regular, now))
}

func TestApplyRedemption(t *testing.T) {
	customer := uuid.New()
	o := model.RewardsOffer{Analytics: model.OfferAnalytics{Views: 10, Clicks: 4, Redemptions: 1, TotalValue: decimal.NewFromInt(40)}}

	out := ApplyRedemption(o, customer, decimal.NewFromInt(60))

	assert.Equal(t, 1, out.RedemptionLimit.CurrentRedemptions)
	assert.Equal(t, 1, out.RedemptionLimit.ByCustomer[customer.String()])
	assert.Equal(t, 2, out.Analytics.Redemptions)
	assert.Equal(t, 5, out.Analytics.Clicks)
	assert.Equal(t, 20, out.Analytics.ConversionRate)
	assert.True(t, decimal.NewFromInt(50).Equal(out.Analytics.AverageOrderValue))
	assert.Equal(t, 1, o.Analytics.Redemptions)
	assert.Nil(t, o.RedemptionLimit.ByCustomer)

	again := ApplyRedemption(out, customer, decimal.NewFromInt(10))
	assert.Equal(t, 2, again.RedemptionLimit.ByCustomer[customer.String()])
	assert.Equal(t, 1, out.RedemptionLimit.ByCustomer[customer.String()])
}
