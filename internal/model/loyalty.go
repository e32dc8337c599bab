package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeEarned      TransactionType = "earned"
	TransactionTypeRedeemed    TransactionType = "redeemed"
	TransactionTypeExpired     TransactionType = "expired"
	TransactionTypeBonus       TransactionType = "bonus"
	TransactionTypeReferral    TransactionType = "referral"
	TransactionTypeBirthday    TransactionType = "birthday"
	TransactionTypeAnniversary TransactionType = "anniversary"
	TransactionTypeAdjustment  TransactionType = "adjustment"
)

type RedemptionType string

const (
	RedemptionTypeServiceDiscount RedemptionType = "service_discount"
	RedemptionTypeFreeService     RedemptionType = "free_service"
	RedemptionTypeProductDiscount RedemptionType = "product_discount"
	RedemptionTypeCashValue       RedemptionType = "cash_value"
	RedemptionTypeSpecialOffer    RedemptionType = "special_offer"
)

type AccountStatus string

const (
	AccountStatusActive    AccountStatus = "active"
	AccountStatusSuspended AccountStatus = "suspended"
	AccountStatusInactive  AccountStatus = "inactive"
	AccountStatusPending   AccountStatus = "pending"
)

// CanRedeem reports whether an account in this status may spend points.
func (s AccountStatus) CanRedeem() bool {
	return s == AccountStatusActive || s == AccountStatusPending
}

type LoyaltyTransaction struct {
	Type        TransactionType `json:"type" bson:"type"`
	Points      int             `json:"points" bson:"points"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Appointment *uuid.UUID      `json:"appointment,omitempty" bson:"appointment,omitempty"`
	Date        time.Time       `json:"date" bson:"date"`
	ExpiresAt   *time.Time      `json:"expiresAt,omitempty" bson:"expires_at,omitempty"`
}

type Redemption struct {
	RedemptionDate time.Time       `json:"redemptionDate" bson:"redemption_date"`
	PointsRedeemed int             `json:"pointsRedeemed" bson:"points_redeemed"`
	Value          decimal.Decimal `json:"value" bson:"value"`
	RedemptionType RedemptionType  `json:"redemptionType" bson:"redemption_type"`
	Description    string          `json:"description,omitempty" bson:"description,omitempty"`
	Appointment    *uuid.UUID      `json:"appointment,omitempty" bson:"appointment,omitempty"`
}

type NextTierProgress struct {
	NextTier           string `json:"nextTier,omitempty" bson:"next_tier,omitempty"`
	PointsNeeded       int    `json:"pointsNeeded" bson:"points_needed"`
	ProgressPercentage int    `json:"progressPercentage" bson:"progress_percentage"`
}

// CustomerLoyalty is the per-customer points ledger. CurrentTier is the
// 1-based position of TierName in the program's sorted tiers, 0 for none.
// PendingPoints stays 0 since points are credited when earned.
type CustomerLoyalty struct {
	Base                `bson:",inline"`
	Audit               `bson:",inline"`
	Customer            uuid.UUID            `json:"customer" bson:"customer"`
	CustomerName        string               `json:"customerName,omitempty" bson:"customer_name,omitempty"`
	LoyaltyProgram      *uuid.UUID           `json:"loyaltyProgram,omitempty" bson:"loyalty_program,omitempty"`
	CurrentTier         int                  `json:"currentTier" bson:"current_tier"`
	TierName            string               `json:"tierName,omitempty" bson:"tier_name,omitempty"`
	TotalPointsEarned   int                  `json:"totalPointsEarned" bson:"total_points_earned"`
	TotalPointsRedeemed int                  `json:"totalPointsRedeemed" bson:"total_points_redeemed"`
	CurrentPoints       int                  `json:"currentPoints" bson:"current_points"`
	PendingPoints       int                  `json:"pendingPoints" bson:"pending_points"`
	ExpiringPoints      int                  `json:"expiringPoints" bson:"expiring_points"`
	EnrollmentDate      time.Time            `json:"enrollmentDate" bson:"enrollment_date"`
	LastActivityDate    *time.Time           `json:"lastActivityDate,omitempty" bson:"last_activity_date,omitempty"`
	NextTierProgress    NextTierProgress     `json:"nextTierProgress" bson:"next_tier_progress"`
	ReferralCode        string               `json:"referralCode,omitempty" bson:"referral_code,omitempty"`
	RecentTransactions  []LoyaltyTransaction `json:"recentTransactions" bson:"recent_transactions"`
	RedemptionHistory   []Redemption         `json:"redemptionHistory" bson:"redemption_history"`
	Notes               string               `json:"notes,omitempty" bson:"notes,omitempty"`
	Status              AccountStatus        `json:"status" bson:"status"`
	Version             int                  `json:"version" bson:"version"`
}

// Summary returns the fields mirrored onto the customer record.
func (l *CustomerLoyalty) Summary() LoyaltySummary {
	return LoyaltySummary{Status: l.Status, Tier: l.TierName, Points: l.CurrentPoints}
}

type ExpirationPolicy struct {
	PointsExpire bool `json:"pointsExpire" bson:"points_expire"`
	// ExpirationPeriod is in months.
	ExpirationPeriod int `json:"expirationPeriod" bson:"expiration_period"`
	// ExpirationWarning is in days.
	ExpirationWarning int `json:"expirationWarning" bson:"expiration_warning"`
}

type RedemptionRules struct {
	MinPointsToRedeem int              `json:"minPointsToRedeem" bson:"min_points_to_redeem"`
	PointValue        decimal.Decimal  `json:"pointValue" bson:"point_value"`
	ExpirationPolicy  ExpirationPolicy `json:"expirationPolicy" bson:"expiration_policy"`
}

type Tier struct {
	Name               string          `json:"name" bson:"name" binding:"required"`
	MinPoints          int             `json:"minPoints" bson:"min_points" binding:"gte=0"`
	MaxPoints          *int            `json:"maxPoints,omitempty" bson:"max_points,omitempty"`
	DiscountPercentage decimal.Decimal `json:"discountPercentage" bson:"discount_percentage"`
	PointsMultiplier   decimal.Decimal `json:"pointsMultiplier" bson:"points_multiplier"`
	Benefits           []string        `json:"benefits,omitempty" bson:"benefits,omitempty"`
	Color              string          `json:"color,omitempty" bson:"color,omitempty"`
}

type LoyaltyProgram struct {
	Base            `bson:",inline"`
	Name            string          `json:"name" bson:"name"`
	Description     string          `json:"description,omitempty" bson:"description,omitempty"`
	IsActive        bool            `json:"isActive" bson:"is_active"`
	PointsPerDollar decimal.Decimal `json:"pointsPerDollar" bson:"points_per_dollar"`
	Tiers           []Tier          `json:"tiers" bson:"tiers"`
	RedemptionRules RedemptionRules `json:"redemptionRules" bson:"redemption_rules"`
}

type EarnPointsRequest struct {
	CustomerID    uuid.UUID       `json:"customerId" binding:"required"`
	Points        int             `json:"points" binding:"required,gt=0"`
	Description   string          `json:"description" binding:"required"`
	AppointmentID *uuid.UUID      `json:"appointmentId"`
	Type          TransactionType `json:"type" binding:"omitempty,oneof=earned bonus referral birthday anniversary adjustment"`
}

type RedeemPointsRequest struct {
	CustomerID     uuid.UUID      `json:"customerId" binding:"required"`
	Points         int            `json:"points" binding:"required,gt=0"`
	Description    string         `json:"description" binding:"required"`
	RedemptionType RedemptionType `json:"redemptionType" binding:"required,oneof=service_discount free_service product_discount cash_value special_offer"`
	AppointmentID  *uuid.UUID     `json:"appointmentId"`
}

type SaveProgramRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	IsActive        bool            `json:"isActive"`
	PointsPerDollar decimal.Decimal `json:"pointsPerDollar" binding:"gte=0"`
	Tiers           []Tier          `json:"tiers" binding:"dive"`
	RedemptionRules RedemptionRules `json:"redemptionRules"`
}

// EarnResult and RedeemResult describe the effect of a ledger write.
type EarnResult struct {
	Created      bool
	PreviousTier string
	TierChanged  bool
}

type RedeemResult struct {
	Value        decimal.Decimal
	PreviousTier string
	TierChanged  bool
}
