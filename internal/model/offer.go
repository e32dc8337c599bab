package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RedemptionLimit caps redemptions overall and per customer. Zero means no
// cap. ByCustomer counts redemptions keyed by customer ID.
type RedemptionLimit struct {
	MaxRedemptions     int            `json:"maxRedemptions,omitempty" bson:"max_redemptions,omitempty"`
	MaxPerCustomer     int            `json:"maxPerCustomer,omitempty" bson:"max_per_customer,omitempty"`
	CurrentRedemptions int            `json:"currentRedemptions" bson:"current_redemptions"`
	ByCustomer         map[string]int `json:"byCustomer,omitempty" bson:"by_customer,omitempty"`
}

type OfferAnalytics struct {
	Views             int             `json:"views" bson:"views"`
	Clicks            int             `json:"clicks" bson:"clicks"`
	Redemptions       int             `json:"redemptions" bson:"redemptions"`
	ConversionRate    int             `json:"conversionRate" bson:"conversion_rate"`
	TotalValue        decimal.Decimal `json:"totalValue" bson:"total_value"`
	AverageOrderValue decimal.Decimal `json:"averageOrderValue" bson:"average_order_value"`
}

type DiscountDetails struct {
	DiscountType    DiscountType    `json:"discountType,omitempty" bson:"discount_type,omitempty" binding:"omitempty,oneof=fixed percentage"`
	DiscountValue   decimal.Decimal `json:"discountValue" bson:"discount_value" binding:"gte=0"`
	MaximumDiscount decimal.Decimal `json:"maximumDiscount" bson:"maximum_discount" binding:"gte=0"`
}

type RewardsOffer struct {
	Base             `bson:",inline"`
	Audit            `bson:",inline"`
	Name             string           `json:"name" bson:"name"`
	Description      string           `json:"description,omitempty" bson:"description,omitempty"`
	ShortDescription string           `json:"shortDescription,omitempty" bson:"short_description,omitempty"`
	Type             string           `json:"type" bson:"type"`
	Category         string           `json:"category" bson:"category"`
	IsActive         bool             `json:"isActive" bson:"is_active"`
	IsPublic         bool             `json:"isPublic" bson:"is_public"`
	EligibleTiers    []string         `json:"eligibleTiers,omitempty" bson:"eligible_tiers,omitempty"`
	ValidFrom        time.Time        `json:"validFrom" bson:"valid_from"`
	ValidUntil       time.Time        `json:"validUntil" bson:"valid_until"`
	RedemptionLimit  RedemptionLimit  `json:"redemptionLimit" bson:"redemption_limit"`
	DiscountDetails  *DiscountDetails `json:"discountDetails,omitempty" bson:"discount_details,omitempty"`
	PromotionalCode  string           `json:"promotionalCode,omitempty" bson:"promotional_code,omitempty"`
	Analytics        OfferAnalytics   `json:"analytics" bson:"analytics"`
	Tags             []string         `json:"tags,omitempty" bson:"tags,omitempty"`
	Version          int              `json:"version" bson:"version"`
}

type CreateOfferRequest struct {
	Name             string           `json:"name" binding:"required,max=200"`
	Description      string           `json:"description"`
	ShortDescription string           `json:"shortDescription" binding:"max=300"`
	Type             string           `json:"type" binding:"required"`
	Category         string           `json:"category" binding:"required"`
	IsActive         bool             `json:"isActive"`
	IsPublic         bool             `json:"isPublic"`
	EligibleTiers    []string         `json:"eligibleTiers"`
	ValidFrom        time.Time        `json:"validFrom" binding:"required"`
	ValidUntil       time.Time        `json:"validUntil" binding:"required,gtfield=ValidFrom"`
	MaxRedemptions   int              `json:"maxRedemptions" binding:"gte=0"`
	MaxPerCustomer   int              `json:"maxPerCustomer" binding:"gte=0"`
	DiscountDetails  *DiscountDetails `json:"discountDetails"`
	PromotionalCode  string           `json:"promotionalCode"`
	Tags             []string         `json:"tags"`
}

type RedeemOfferRequest struct {
	CustomerID    *uuid.UUID      `json:"customerId"`
	AppointmentID *uuid.UUID      `json:"appointmentId"`
	OrderValue    decimal.Decimal `json:"orderValue" binding:"gte=0"`
}
