// Package optimistic retries compare-and-swap writes that lost a race.
package optimistic

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jwalitptl/salon-api/internal/repository"
	"github.com/jwalitptl/salon-api/pkg/errors"
)

type Policy struct {
	MaxAttempts  int
	InitialDelay time.Duration
}

// DefaultPolicy is used when a service is built without one.
var DefaultPolicy = Policy{MaxAttempts: 5, InitialDelay: 20 * time.Millisecond}

// Retry runs op until it succeeds, fails with something other than
// repository.ErrConflict, or the policy runs out. onConflict is called
// before every retry. Exhaustion surfaces as a Conflict error for resource.
func Retry(ctx context.Context, policy Policy, resource string, onConflict func(), op func() error) error {
	if policy.MaxAttempts <= 0 {
		policy = DefaultPolicy
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = policy.InitialDelay
	exp.MaxElapsedTime = 0
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(policy.MaxAttempts-1)), ctx)

	attempt := 0
	err := backoff.Retry(func() error {
		if attempt > 0 && onConflict != nil {
			onConflict()
		}
		attempt++

		err := op()
		if err == nil || stderrors.Is(err, repository.ErrConflict) {
			return err
		}
		return backoff.Permanent(err)
	}, b)

	if stderrors.Is(err, repository.ErrConflict) {
		return errors.Conflict(resource, err)
	}
	return err
}
