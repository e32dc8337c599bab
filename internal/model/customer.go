package model

type Customer struct {
	Base          `bson:",inline"`
	Name          string        `json:"name" bson:"name"`
	Email         string        `json:"email,omitempty" bson:"email,omitempty"`
	Phone         string        `json:"phone,omitempty" bson:"phone,omitempty"`
	LoyaltyStatus AccountStatus `json:"loyaltyStatus,omitempty" bson:"loyalty_status,omitempty"`
	CurrentTier   string        `json:"currentTier,omitempty" bson:"current_tier,omitempty"`
	LoyaltyPoints int           `json:"loyaltyPoints" bson:"loyalty_points"`
}

type CreateCustomerRequest struct {
	Name  string `json:"name" binding:"required,max=200"`
	Email string `json:"email" binding:"omitempty,email"`
	Phone string `json:"phone" binding:"omitempty,max=40"`
}

// LoyaltySummary is the slice of a loyalty account mirrored onto the customer.
type LoyaltySummary struct {
	Status AccountStatus
	Tier   string
	Points int
}
