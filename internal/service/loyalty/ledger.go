package loyalty

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

// MaxRecentTransactions bounds CustomerLoyalty.RecentTransactions.
const MaxRecentTransactions = 50

// DefaultPointValue is used when the program does not set one.
var DefaultPointValue = decimal.RequireFromString("0.01")

type EarnEvent struct {
	Customer     uuid.UUID
	CustomerName string
	Points       int
	Description  string
	Appointment  *uuid.UUID
	Type         model.TransactionType
}

type RedeemRequest struct {
	Points         int
	Description    string
	RedemptionType model.RedemptionType
	Appointment    *uuid.UUID
}

// ApplyEarn credits points to acct, opening a new account when acct is nil.
// acct itself is left untouched.
func ApplyEarn(acct *model.CustomerLoyalty, ev EarnEvent, program model.LoyaltyProgram, now time.Time) (model.CustomerLoyalty, model.EarnResult) {
	if ev.Type == "" {
		ev.Type = model.TransactionTypeEarned
	}

	tx := model.LoyaltyTransaction{
		Type:        ev.Type,
		Points:      ev.Points,
		Description: ev.Description,
		Appointment: ev.Appointment,
		Date:        now,
		ExpiresAt:   expiry(program.RedemptionRules.ExpirationPolicy, now),
	}

	var out model.CustomerLoyalty
	result := model.EarnResult{}

	if acct == nil {
		out = model.CustomerLoyalty{
			Customer:          ev.Customer,
			CustomerName:      ev.CustomerName,
			EnrollmentDate:    now,
			ReferralCode:      ReferralCode(ev.Customer),
			Status:            model.AccountStatusActive,
			RedemptionHistory: []model.Redemption{},
		}
		if program.ID != uuid.Nil {
			id := program.ID
			out.LoyaltyProgram = &id
		}
		result.Created = true
	} else {
		out = clone(*acct)
		result.PreviousTier = acct.TierName
	}

	out.RecentTransactions = appendCapped(out.RecentTransactions, tx)
	out.TotalPointsEarned += ev.Points

	recompute(&out, program, now)
	result.TierChanged = out.TierName != result.PreviousTier

	return out, result
}

// ApplyRedeem debits points from acct. On any error acct is returned unchanged.
func ApplyRedeem(acct model.CustomerLoyalty, req RedeemRequest, program model.LoyaltyProgram, now time.Time) (model.CustomerLoyalty, model.RedeemResult, error) {
	if req.Points <= 0 {
		return acct, model.RedeemResult{}, errors.Validation("points must be greater than zero")
	}
	if !acct.Status.CanRedeem() {
		return acct, model.RedeemResult{}, errors.Validation(fmt.Sprintf("loyalty account is %s", acct.Status))
	}
	if floor := program.RedemptionRules.MinPointsToRedeem; floor > 0 && req.Points < floor {
		return acct, model.RedeemResult{}, errors.Validation(fmt.Sprintf("at least %d points must be redeemed", floor))
	}
	if req.Points > acct.CurrentPoints {
		return acct, model.RedeemResult{}, errors.InsufficientPoints(acct.CurrentPoints, req.Points)
	}

	value := decimal.NewFromInt(int64(req.Points)).Mul(PointValue(program))

	out := clone(acct)
	out.RedemptionHistory = append(out.RedemptionHistory, model.Redemption{
		RedemptionDate: now,
		PointsRedeemed: req.Points,
		Value:          value,
		RedemptionType: req.RedemptionType,
		Description:    req.Description,
		Appointment:    req.Appointment,
	})
	out.RecentTransactions = appendCapped(out.RecentTransactions, model.LoyaltyTransaction{
		Type:        model.TransactionTypeRedeemed,
		Points:      -req.Points,
		Description: "Redeemed: " + req.Description,
		Appointment: req.Appointment,
		Date:        now,
	})
	out.TotalPointsRedeemed += req.Points

	recompute(&out, program, now)

	return out, model.RedeemResult{
		Value:        value,
		PreviousTier: acct.TierName,
		TierChanged:  out.TierName != acct.TierName,
	}, nil
}

// PointValue is the currency value of a single point under program.
func PointValue(program model.LoyaltyProgram) decimal.Decimal {
	if v := program.RedemptionRules.PointValue; v.IsPositive() {
		return v
	}
	return DefaultPointValue
}

// ReferralCode derives a customer's referral code from their ID.
func ReferralCode(customer uuid.UUID) string {
	s := customer.String()
	return "REF" + strings.ToUpper(s[len(s)-6:])
}

// ExpiringPoints sums credited points that expire within warningDays of now.
func ExpiringPoints(txs []model.LoyaltyTransaction, now time.Time, warningDays int) int {
	if warningDays <= 0 {
		return 0
	}
	horizon := now.AddDate(0, 0, warningDays)

	total := 0
	for _, tx := range txs {
		if tx.Points <= 0 || tx.ExpiresAt == nil {
			continue
		}
		if tx.ExpiresAt.After(now) && !tx.ExpiresAt.After(horizon) {
			total += tx.Points
		}
	}
	return total
}

func recompute(acct *model.CustomerLoyalty, program model.LoyaltyProgram, now time.Time) {
	acct.CurrentPoints = acct.TotalPointsEarned - acct.TotalPointsRedeemed
	acct.LastActivityDate = model.TimePtr(now)

	tier, level, ok := ResolveTier(program.Tiers, acct.CurrentPoints)
	if ok {
		acct.TierName, acct.CurrentTier = tier.Name, level
	} else {
		acct.TierName, acct.CurrentTier = "", 0
	}

	acct.NextTierProgress = NextTierProgress(program.Tiers, acct.CurrentPoints)
	acct.ExpiringPoints = ExpiringPoints(acct.RecentTransactions, now,
		program.RedemptionRules.ExpirationPolicy.ExpirationWarning)

	if acct.ReferralCode == "" {
		acct.ReferralCode = ReferralCode(acct.Customer)
	}
}

func expiry(policy model.ExpirationPolicy, now time.Time) *time.Time {
	if !policy.PointsExpire || policy.ExpirationPeriod <= 0 {
		return nil
	}
	return model.TimePtr(now.AddDate(0, policy.ExpirationPeriod, 0))
}

// appendCapped appends tx, dropping the oldest entries beyond the cap.
// It always returns a fresh slice.
func appendCapped(txs []model.LoyaltyTransaction, tx model.LoyaltyTransaction) []model.LoyaltyTransaction {
	start := 0
	if len(txs)+1 > MaxRecentTransactions {
		start = len(txs) + 1 - MaxRecentTransactions
	}
	out := make([]model.LoyaltyTransaction, 0, len(txs)+1-start)
	out = append(out, txs[start:]...)
	return append(out, tx)
}

func clone(acct model.CustomerLoyalty) model.CustomerLoyalty {
	out := acct
	out.RecentTransactions = append(make([]model.LoyaltyTransaction, 0, len(acct.RecentTransactions)), acct.RecentTransactions...)
	out.RedemptionHistory = append(make([]model.Redemption, 0, len(acct.RedemptionHistory)), acct.RedemptionHistory...)
	return out
}
