// Package retry drives the bridge operation over accounts with bounded retry.
package retry

import (
	"context"
	"fmt"
	"time"

	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

// DefaultMaxAttempts is the attempt ceiling per account.
const DefaultMaxAttempts = 10

// Operation is the pipeline run once per attempt.
type Operation interface {
	Execute(ctx context.Context, account types.Account) error
}

// OperationFunc adapts a function to the Operation interface.
type OperationFunc func(ctx context.Context, account types.Account) error

// Execute calls f(ctx, account).
func (f OperationFunc) Execute(ctx context.Context, account types.Account) error {
	return f(ctx, account)
}

// fieldsProvider is implemented by accounts that carry extra log fields.
type fieldsProvider interface {
	LogFields() logrus.Fields
}

// Pacer inserts the delays between attempts and between accounts.
type Pacer interface {
	// RetryBackOff returns the delay policy between attempts on the same account.
	// A fresh policy is requested for every account.
	RetryBackOff() backoff.BackOff
	// WaitBetweenAccounts blocks for the pacing delay or until ctx is done.
	WaitBetweenAccounts(ctx context.Context) error
}

// AccountResult is the terminal result of one account.
//
// Fields:
// - Address: the account address.
// - State: StateSucceeded or StateAbandoned.
// - Reason: why the account was abandoned, AbandonNone on success.
// - Attempts: the number of pipeline invocations made.
// - Err: the last failure, nil on success.
type AccountResult struct {
	Address  string
	State    types.AccountState
	Reason   types.AbandonReason
	Attempts int
	Err      error
}

// Summary aggregates the results of a run.
type Summary struct {
	Total     int
	Succeeded int
	Fatal     int
	Exhausted int
	Cancelled int
	Skipped   int
	Results   []*AccountResult
}

func (s *Summary) add(result *AccountResult) {
	s.Results = append(s.Results, result)
	switch result.Reason {
	case types.AbandonNone:
		s.Succeeded++
	case types.AbandonFatal:
		s.Fatal++
	case types.AbandonExhausted:
		s.Exhausted++
	case types.AbandonCancelled:
		s.Cancelled++
	}
}

// Orchestrator runs the operation for each account in turn.
// It is the only place that decides between retrying and abandoning.
type Orchestrator struct {
	operation   Operation
	classifier  Classifier
	pacer       Pacer
	maxAttempts int
	logger      *logrus.Logger
}

// NewOrchestrator creates a new orchestrator.
//
// Parameters:
// - operation: the pipeline run once per attempt.
// - classifier: decides whether a failure is retried.
// - pacer: the delay source.
// - maxAttempts: the attempt ceiling per account; values below 1 use DefaultMaxAttempts.
// - logger: the logger for progress lines.
//
// Returns:
// - *Orchestrator: the new orchestrator.
func NewOrchestrator(operation Operation, classifier Classifier, pacer Pacer, maxAttempts int, logger *logrus.Logger) *Orchestrator {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}

	return &Orchestrator{
		operation:   operation,
		classifier:  classifier,
		pacer:       pacer,
		maxAttempts: maxAttempts,
		logger:      logger,
	}
}

// Run processes the accounts sequentially. The pacing delay is inserted only after a
// successful account that is followed by another one. Cancellation stops the run and
// the accounts not started are counted as skipped.
//
// Parameters:
// - ctx: the context for the whole run.
// - accounts: the accounts in processing order.
//
// Returns:
// - *Summary: the per-account results and totals.
func (o *Orchestrator) Run(ctx context.Context, accounts []types.Account) *Summary {
	summary := &Summary{Total: len(accounts)}

	for i, account := range accounts {
		if ctx.Err() != nil {
			summary.Skipped = len(accounts) - i
			break
		}

		entry := o.logger.WithFields(logrus.Fields{
			"address": account.Address().Hex(),
			"account": fmt.Sprintf("%d/%d", i+1, len(accounts)),
		})
		if source, ok := account.(fieldsProvider); ok {
			entry = entry.WithFields(source.LogFields())
		}
		entry.Info("Processing account")

		result := o.RunAccount(ctx, account)
		summary.add(result)

		last := i == len(accounts)-1
		if result.State != types.StateSucceeded || last {
			continue
		}
		if err := o.pacer.WaitBetweenAccounts(ctx); err != nil {
			summary.Skipped = len(accounts) - i - 1
			break
		}
	}

	o.logger.WithFields(logrus.Fields{
		"total":     summary.Total,
		"succeeded": summary.Succeeded,
		"fatal":     summary.Fatal,
		"exhausted": summary.Exhausted,
		"cancelled": summary.Cancelled,
		"skipped":   summary.Skipped,
	}).Info("Run finished")

	return summary
}

// RunAccount drives one account from Attempting to a terminal state. Attempts are
// scheduled by the pacer's retry back-off, capped at the attempt ceiling; a fatal
// verdict or a cancelled context stops them early.
//
// Parameters:
// - ctx: the context for the account's attempts.
// - account: the signing account.
//
// Returns:
// - *AccountResult: the terminal result.
func (o *Orchestrator) RunAccount(ctx context.Context, account types.Account) *AccountResult {
	result := &AccountResult{
		Address: account.Address().Hex(),
		State:   types.StateAttempting,
	}
	log := o.logger.WithField("address", result.Address)

	var last types.AttemptOutcome
	operation := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}

		result.Attempts++
		last = o.attempt(ctx, account)
		if last.Succeeded() {
			return nil
		}

		log.WithFields(logrus.Fields{
			"attempt": fmt.Sprintf("%d/%d", result.Attempts, o.maxAttempts),
			"verdict": last.Kind,
		}).WithError(last.Err).Error("Attempt failed")

		if ctx.Err() != nil || last.Kind == types.OutcomeFatalFailure {
			return backoff.Permanent(last.Err)
		}
		return last.Err
	}

	notify := func(err error, delay time.Duration) {
		log.WithFields(logrus.Fields{
			"attempt": fmt.Sprintf("%d/%d", result.Attempts+1, o.maxAttempts),
			"delay":   delay,
		}).Info("Retrying")
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(o.pacer.RetryBackOff(), uint64(o.maxAttempts-1)), ctx)
	err := backoff.RetryNotify(operation, policy, notify)

	switch {
	case err == nil:
		result.State = types.StateSucceeded
		log.WithField("attempts", result.Attempts).Info("Account succeeded")
		return result
	case ctx.Err() != nil:
		if last.Err != nil {
			err = last.Err
		}
		return o.abandon(log, result, types.AbandonCancelled, err)
	case last.Kind == types.OutcomeFatalFailure:
		return o.abandon(log, result, types.AbandonFatal, err)
	default:
		return o.abandon(log, result, types.AbandonExhausted, err)
	}
}

// attempt runs the operation once and tags the result.
func (o *Orchestrator) attempt(ctx context.Context, account types.Account) types.AttemptOutcome {
	err := o.operation.Execute(ctx, account)
	if err == nil {
		return types.AttemptOutcome{Kind: types.OutcomeSuccess}
	}

	if o.classifier.Classify(err) == types.Fatal {
		return types.AttemptOutcome{Kind: types.OutcomeFatalFailure, Err: err}
	}
	return types.AttemptOutcome{Kind: types.OutcomeRetryableFailure, Err: err}
}

func (o *Orchestrator) abandon(log *logrus.Entry, result *AccountResult, reason types.AbandonReason, err error) *AccountResult {
	result.State = types.StateAbandoned
	result.Reason = reason
	result.Err = err

	entry := log.WithField("attempts", result.Attempts)
	if err != nil {
		entry = entry.WithError(err)
	}

	switch reason {
	case types.AbandonFatal:
		entry.Warn("Account abandoned: fatal error")
	case types.AbandonExhausted:
		entry.Warn("Account abandoned: attempt ceiling reached")
	case types.AbandonCancelled:
		entry.Warn("Account abandoned: cancelled")
	}

	return result
}
