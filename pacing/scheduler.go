// Package pacing provides the randomized delays between accounts and the fixed delay between retries.
package pacing

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAccountDelayMin = 30 * time.Second
	DefaultAccountDelayMax = 600 * time.Second
	DefaultRetryDelay      = time.Second
)

// Scheduler draws and sleeps the delays of a run.
type Scheduler struct {
	min    time.Duration
	max    time.Duration
	retry  time.Duration
	logger *logrus.Logger

	rngMutex sync.Mutex
	rng      *rand.Rand
}

// NewScheduler creates a new scheduler.
//
// Parameters:
// - minDelay: the inclusive lower bound of the delay between accounts.
// - maxDelay: the exclusive upper bound of the delay between accounts.
// - retry: the fixed delay between attempts on the same account.
// - rng: the random source, seeded by the caller.
// - logger: the logger for announcing delays.
//
// Returns:
// - *Scheduler: the new scheduler.
// - error: an error if the bounds are negative or inverted.
func NewScheduler(minDelay, maxDelay, retry time.Duration, rng *rand.Rand, logger *logrus.Logger) (*Scheduler, error) {
	if minDelay < 0 || maxDelay < 0 || retry < 0 {
		return nil, errors.New("delays must not be negative")
	}
	if maxDelay < minDelay {
		return nil, errors.Errorf("pacing max %s is below min %s", maxDelay, minDelay)
	}
	if rng == nil {
		return nil, errors.New("random source is required")
	}

	return &Scheduler{
		min:    minDelay,
		max:    maxDelay,
		retry:  retry,
		rng:    rng,
		logger: logger,
	}, nil
}

// AccountDelay returns a delay drawn uniformly from [min, max).
// When min equals max the delay is min.
func (s *Scheduler) AccountDelay() time.Duration {
	span := s.max - s.min
	if span <= 0 {
		return s.min
	}

	s.rngMutex.Lock()
	defer s.rngMutex.Unlock()
	return s.min + time.Duration(s.rng.Int63n(int64(span)))
}

// RetryDelay returns the fixed delay between attempts.
func (s *Scheduler) RetryDelay() time.Duration {
	return s.retry
}

// WaitBetweenAccounts sleeps for a fresh AccountDelay.
func (s *Scheduler) WaitBetweenAccounts(ctx context.Context) error {
	delay := s.AccountDelay()
	s.logger.WithField("delay", delay.Round(time.Second)).Info("Delay before next account")
	return sleep(ctx, delay)
}

// RetryBackOff returns a constant back-off of the retry delay.
func (s *Scheduler) RetryBackOff() backoff.BackOff {
	return backoff.NewConstantBackOff(s.RetryDelay())
}

// sleep blocks for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
