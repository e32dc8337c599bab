package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxStatusPending    OutboxStatus = "pending"
	OutboxStatusProcessing OutboxStatus = "processing"
	OutboxStatusProcessed  OutboxStatus = "processed"
	OutboxStatusFailed     OutboxStatus = "failed"
)

const (
	EventAppointmentCreated  = "appointment.created"
	EventAppointmentUpdated  = "appointment.updated"
	EventLoyaltyPointsEarned = "loyalty.points_earned"
	EventLoyaltyPointsRedeem = "loyalty.points_redeemed"
	EventLoyaltyTierChanged  = "loyalty.tier_changed"
	EventOfferRedeemed       = "offer.redeemed"
	EventChallengeJoined     = "challenge.joined"
	EventPostRatingRefreshed = "post.rating_refreshed"
)

type OutboxEvent struct {
	ID           uuid.UUID       `db:"id" json:"id" bson:"_id"`
	EventType    string          `db:"event_type" json:"eventType" bson:"event_type"`
	Payload      json.RawMessage `db:"payload" json:"payload" bson:"payload"`
	Status       OutboxStatus    `db:"status" json:"status" bson:"status"`
	ErrorMessage *string         `db:"error_message" json:"errorMessage,omitempty" bson:"error_message,omitempty"`
	RetryCount   int             `db:"retry_count" json:"retryCount" bson:"retry_count"`
	CreatedAt    time.Time       `db:"created_at" json:"createdAt" bson:"created_at"`
	ProcessedAt  *time.Time      `db:"processed_at" json:"processedAt,omitempty" bson:"processed_at,omitempty"`
	UpdatedAt    time.Time       `db:"updated_at" json:"updatedAt" bson:"updated_at"`
}
