package challenge

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/salon-api/internal/model"
)

func TestDeriveStatus(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	voting := end.AddDate(0, 0, 7)

	scheduled := model.Challenge{
		Status:        model.ChallengeStatusRegistration,
		StartDate:     &start,
		EndDate:       &end,
		VotingEndDate: &voting,
	}

	tests := []struct {
		name      string
		challenge model.Challenge
		now       time.Time
		want      model.ChallengeStatus
	}{
		{"before start", scheduled, start.Add(-time.Hour), model.ChallengeStatusRegistration},
		{"running", scheduled, start.AddDate(0, 0, 3), model.ChallengeStatusActive},
		{"voting", scheduled, end.Add(time.Hour), model.ChallengeStatusVoting},
		{"voting closed", scheduled, voting.Add(time.Hour), model.ChallengeStatusCompleted},
		{"draft is kept", withStatus(scheduled, model.ChallengeStatusDraft), start.AddDate(0, 0, 3), model.ChallengeStatusDraft},
		{"cancelled is kept", withStatus(scheduled, model.ChallengeStatusCancelled), start.AddDate(0, 0, 3), model.ChallengeStatusCancelled},
		{"no dates", model.Challenge{Status: model.ChallengeStatusRegistration}, start, model.ChallengeStatusRegistration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveStatus(tt.challenge, tt.now))
		})
	}
}

func TestDeriveStatus_NoVotingDeadline(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 14)
	c := model.Challenge{Status: model.ChallengeStatusActive, StartDate: &start, EndDate: &end}

	assert.Equal(t, model.ChallengeStatusVoting, DeriveStatus(c, end.AddDate(1, 0, 0)))
}

func withStatus(c model.Challenge, s model.ChallengeStatus) model.Challenge {
	c.Status = s
	return c
}
