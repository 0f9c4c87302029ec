package types

// Verdict is the retry decision for a failed attempt.
type Verdict int

const (
	// Retryable means the same account may be attempted again.
	Retryable Verdict = iota
	// Fatal means further attempts for the account are abandoned.
	Fatal
)

func (v Verdict) String() string {
	switch v {
	case Retryable:
		return "RETRYABLE"
	case Fatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// OutcomeKind tags the result of one attempt.
type OutcomeKind string

const (
	// OutcomeSuccess is the outcome of a fully confirmed attempt.
	OutcomeSuccess OutcomeKind = "SUCCESS"
	// OutcomeRetryableFailure is the outcome of a failed attempt that may be retried.
	OutcomeRetryableFailure OutcomeKind = "RETRYABLE_FAILURE"
	// OutcomeFatalFailure is the outcome of a failed attempt that must not be retried.
	OutcomeFatalFailure OutcomeKind = "FATAL_FAILURE"
)

// AttemptOutcome is the tagged result of one account's one attempt.
type AttemptOutcome struct {
	Kind OutcomeKind
	Err  error
}

// Succeeded reports whether the attempt completed end to end.
func (o AttemptOutcome) Succeeded() bool {
	return o.Kind == OutcomeSuccess
}

// AccountState is the state of an account in the retry state machine.
type AccountState string

const (
	// StateAttempting is the state while attempts remain.
	StateAttempting AccountState = "ATTEMPTING"
	// StateSucceeded is the terminal state after a successful attempt.
	StateSucceeded AccountState = "SUCCEEDED"
	// StateAbandoned is the terminal state after a fatal error, exhausted attempts or cancellation.
	StateAbandoned AccountState = "ABANDONED"
)

// AbandonReason explains why an account was abandoned.
type AbandonReason string

const (
	// AbandonNone is used for accounts that were not abandoned.
	AbandonNone AbandonReason = ""
	// AbandonFatal indicates a fatal error classification.
	AbandonFatal AbandonReason = "FATAL_ERROR"
	// AbandonExhausted indicates the attempt ceiling was reached.
	AbandonExhausted AbandonReason = "ATTEMPTS_EXHAUSTED"
	// AbandonCancelled indicates the run context was cancelled.
	AbandonCancelled AbandonReason = "CANCELLED"
)
