package offer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

var hundred = decimal.NewFromInt(100)

// RecomputeAnalytics derives the conversion rate (whole percent) and
// average order value (cents) from the raw counters.
func RecomputeAnalytics(a model.OfferAnalytics) model.OfferAnalytics {
	if a.Views > 0 {
		rate := decimal.NewFromInt(int64(a.Redemptions)).Mul(hundred).Div(decimal.NewFromInt(int64(a.Views)))
		a.ConversionRate = int(rate.Round(0).IntPart())
	}
	if a.Redemptions > 0 {
		a.AverageOrderValue = a.TotalValue.Div(decimal.NewFromInt(int64(a.Redemptions))).Round(2)
	}
	return a
}

// CheckRedeemable reports why customer cannot redeem o at now, if at all.
func CheckRedeemable(o model.RewardsOffer, customer uuid.UUID, now time.Time) error {
	if !o.IsActive {
		return errors.NotAvailable("offer")
	}
	if now.Before(o.ValidFrom) || now.After(o.ValidUntil) {
		return errors.ExpiredOffer("offer has expired or is not yet available")
	}
	limits := o.RedemptionLimit
	if limits.MaxRedemptions > 0 && limits.CurrentRedemptions >= limits.MaxRedemptions {
		return errors.LimitReached("offer redemption limit reached")
	}
	if limits.MaxPerCustomer > 0 && limits.ByCustomer[customer.String()] >= limits.MaxPerCustomer {
		return errors.LimitReached("offer redemption limit reached for this customer")
	}
	return nil
}

// ApplyRedemption records one redemption by customer worth orderValue on o.
func ApplyRedemption(o model.RewardsOffer, customer uuid.UUID, orderValue decimal.Decimal) model.RewardsOffer {
	byCustomer := make(map[string]int, len(o.RedemptionLimit.ByCustomer)+1)
	for id, n := range o.RedemptionLimit.ByCustomer {
		byCustomer[id] = n
	}
	byCustomer[customer.String()]++
	o.RedemptionLimit.ByCustomer = byCustomer

	o.RedemptionLimit.CurrentRedemptions++
	o.Analytics.Redemptions++
	o.Analytics.Clicks++
	o.Analytics.TotalValue = o.Analytics.TotalValue.Add(orderValue)
	o.Analytics = RecomputeAnalytics(o.Analytics)
	return o
}
