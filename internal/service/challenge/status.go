package challenge

import (
	"time"

	"github.com/jwalitptl/salon-api/internal/model"
)

// DeriveStatus moves a scheduled challenge through its phases by date.
// Draft, cancelled and completed challenges, and challenges without both
// start and end dates, keep their status.
func DeriveStatus(c model.Challenge, now time.Time) model.ChallengeStatus {
	switch c.Status {
	case model.ChallengeStatusDraft, model.ChallengeStatusCancelled, model.ChallengeStatusCompleted:
		return c.Status
	}
	if c.StartDate == nil || c.EndDate == nil {
		return c.Status
	}

	switch {
	case now.Before(*c.StartDate):
		return model.ChallengeStatusRegistration
	case !now.After(*c.EndDate):
		return model.ChallengeStatusActive
	case c.VotingEndDate != nil && now.After(*c.VotingEndDate):
		return model.ChallengeStatusCompleted
	default:
		return model.ChallengeStatusVoting
	}
}
