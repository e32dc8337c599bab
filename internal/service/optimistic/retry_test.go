package optimistic

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

var fast = Policy{MaxAttempts: 3, InitialDelay: time.Millisecond}

func TestRetrySucceedsAfterConflicts(t *testing.T) {
	calls, conflicts := 0, 0
	err := Retry(context.Background(), fast, "offer", func() { conflicts++ }, func() error {
		calls++
		if calls < 3 {
			return repository.ErrConflict
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
	assert.Equal(t, 2, conflicts)
}

func TestRetryExhaustionIsConflict(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), fast, "loyalty account", nil, func() error {
		calls++
		return repository.ErrConflict
	})

	assert.True(t, errors.Is(err, errors.ErrConflict))
	assert.Equal(t, 3, calls)
}

func TestRetryStopsOnOtherErrors(t *testing.T) {
	calls := 0
	insufficient := errors.InsufficientPoints(5, 10)
	err := Retry(context.Background(), fast, "loyalty account", nil, func() error {
		calls++
		return insufficient
	})

	var appErr *errors.AppError
	assert.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrInsufficientPoints, appErr.Code)
	assert.Equal(t, 1, calls)
}
