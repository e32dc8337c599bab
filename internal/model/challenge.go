package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ChallengeStatus string

const (
	ChallengeStatusDraft        ChallengeStatus = "draft"
	ChallengeStatusRegistration ChallengeStatus = "registration"
	ChallengeStatusActive       ChallengeStatus = "active"
	ChallengeStatusVoting       ChallengeStatus = "voting"
	ChallengeStatusCompleted    ChallengeStatus = "completed"
	ChallengeStatusCancelled    ChallengeStatus = "cancelled"
)

// Open reports whether the challenge is listed as active.
func (s ChallengeStatus) Open() bool {
	return s == ChallengeStatusRegistration || s == ChallengeStatusActive || s == ChallengeStatusVoting
}

// Joinable reports whether participants may still sign up.
func (s ChallengeStatus) Joinable() bool {
	return s == ChallengeStatusRegistration || s == ChallengeStatusActive
}

type Prize struct {
	Place       int             `json:"place" bson:"place"`
	Description string          `json:"description,omitempty" bson:"description,omitempty"`
	Value       decimal.Decimal `json:"value" bson:"value"`
	Sponsor     string          `json:"sponsor,omitempty" bson:"sponsor,omitempty"`
}

type Challenge struct {
	Base            `bson:",inline"`
	Audit           `bson:",inline"`
	Title           string          `json:"title" bson:"title"`
	Description     string          `json:"description,omitempty" bson:"description,omitempty"`
	Creator         uuid.UUID       `json:"creator" bson:"creator"`
	Category        string          `json:"category,omitempty" bson:"category,omitempty"`
	Difficulty      string          `json:"difficulty,omitempty" bson:"difficulty,omitempty"`
	StartDate       *time.Time      `json:"startDate,omitempty" bson:"start_date,omitempty"`
	EndDate         *time.Time      `json:"endDate,omitempty" bson:"end_date,omitempty"`
	VotingEndDate   *time.Time      `json:"votingEndDate,omitempty" bson:"voting_end_date,omitempty"`
	MaxParticipants int             `json:"maxParticipants,omitempty" bson:"max_participants,omitempty"`
	EntryFee        decimal.Decimal `json:"entryFee" bson:"entry_fee"`
	Prizes          []Prize         `json:"prizes,omitempty" bson:"prizes,omitempty"`
	Rules           []string        `json:"rules,omitempty" bson:"rules,omitempty"`
	Status          ChallengeStatus `json:"status" bson:"status"`
	Participants    []uuid.UUID     `json:"participants" bson:"participants"`
	Tags            []string        `json:"tags,omitempty" bson:"tags,omitempty"`
	Version         int             `json:"version" bson:"version"`
}

// HasParticipant reports whether userID already joined.
func (c *Challenge) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}

type CreateChallengeRequest struct {
	Title           string          `json:"title" binding:"required,max=200"`
	Description     string          `json:"description"`
	Creator         *uuid.UUID      `json:"creator"`
	Category        string          `json:"category"`
	Difficulty      string          `json:"difficulty" binding:"omitempty,oneof=beginner intermediate advanced expert"`
	StartDate       *time.Time      `json:"startDate"`
	EndDate         *time.Time      `json:"endDate"`
	VotingEndDate   *time.Time      `json:"votingEndDate"`
	MaxParticipants int             `json:"maxParticipants" binding:"gte=0"`
	EntryFee        decimal.Decimal `json:"entryFee" binding:"gte=0"`
	Prizes          []Prize         `json:"prizes"`
	Rules           []string        `json:"rules"`
	Draft           bool            `json:"draft"`
	Tags            []string        `json:"tags"`
}

type JoinChallengeRequest struct {
	UserID *uuid.UUID `json:"userId"`
}
