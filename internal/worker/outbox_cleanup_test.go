package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/salon-api/internal/model"
	"github.com/jwalitptl/salon-api/pkg/logger"
	"github.com/jwalitptl/salon-api/pkg/metrics"
)

type fakeOutbox struct {
	cutoff  time.Time
	deleted int64
	err     error
}

func (f *fakeOutbox) Create(context.Context, *model.OutboxEvent) error { return nil }

func (f *fakeOutbox) ClaimPendingEvents(context.Context, int, int, time.Time) ([]*model.OutboxEvent, error) {
	return nil, nil
}

func (f *fakeOutbox) UpdateStatus(context.Context, uuid.UUID, model.OutboxStatus, *string) error {
	return nil
}

func (f *fakeOutbox) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	f.cutoff = before
	return f.deleted, f.err
}

func TestOutboxCleanup(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &fakeOutbox{deleted: 12}
	m := metrics.New("test")
	w := NewOutboxCleanupWorker(repo, 7*24*time.Hour, time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return now }

	n, err := w.Cleanup(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(12), n)
	assert.Equal(t, now.AddDate(0, 0, -7), repo.cutoff)
	assert.Equal(t, float64(12), testutil.ToFloat64(m.OutboxEventsCleaned))
}

func TestOutboxCleanupError(t *testing.T) {
	repo := &fakeOutbox{err: errors.New("db down")}
	w := NewOutboxCleanupWorker(repo, time.Hour, time.Hour, logger.Nop(), metrics.New("test"))

	_, err := w.Cleanup(context.Background())
	assert.ErrorContains(t, err, "failed to cleanup outbox events")
}
