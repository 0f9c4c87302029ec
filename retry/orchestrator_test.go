package retry

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type fakeAccount struct {
	address common.Address
}

func (a *fakeAccount) Address() common.Address {
	return a.address
}

func (a *fakeAccount) SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error) {
	return tx, nil
}

// recordingPacer records the delays requested, in order.
type recordingPacer struct {
	events []string

	NextRetryFunc           func() time.Duration
	WaitBetweenAccountsFunc func(ctx context.Context) error
}

func (p *recordingPacer) RetryBackOff() backoff.BackOff {
	return &recordingBackOff{pacer: p}
}

func (p *recordingPacer) WaitBetweenAccounts(ctx context.Context) error {
	p.events = append(p.events, "pacing")
	if p.WaitBetweenAccountsFunc != nil {
		return p.WaitBetweenAccountsFunc(ctx)
	}
	return nil
}

type recordingBackOff struct {
	pacer *recordingPacer
}

func (b *recordingBackOff) NextBackOff() time.Duration {
	b.pacer.events = append(b.pacer.events, "retry")
	if b.pacer.NextRetryFunc != nil {
		return b.pacer.NextRetryFunc()
	}
	return 0
}

func (b *recordingBackOff) Reset() {}

func account(hex string) types.Account {
	return &fakeAccount{address: common.HexToAddress(hex)}
}

func newTestOrchestrator(op OperationFunc, pacer Pacer, maxAttempts int) (*Orchestrator, *test.Hook) {
	logger, hook := test.NewNullLogger()
	return NewOrchestrator(op, NewSubstringClassifier(DefaultFatalErrors), pacer, maxAttempts, logger), hook
}

func hasMessage(hook *test.Hook, level logrus.Level, message string) bool {
	for _, entry := range hook.AllEntries() {
		if entry.Level == level && entry.Message == message {
			return true
		}
	}
	return false
}

func TestRunAccount_NeverExceedsCeiling(t *testing.T) {
	for _, maxAttempts := range []int{1, 2, 5, 10} {
		calls := 0
		pacer := &recordingPacer{}
		o, hook := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
			calls++
			return errors.New("nonce too low")
		}, pacer, maxAttempts)

		result := o.RunAccount(context.Background(), account("0x01"))

		require.Equal(t, maxAttempts, calls)
		require.Equal(t, maxAttempts, result.Attempts)
		require.Equal(t, types.StateAbandoned, result.State)
		require.Equal(t, types.AbandonExhausted, result.Reason)
		require.Len(t, pacer.events, maxAttempts-1)
		require.True(t, hasMessage(hook, logrus.WarnLevel, "Account abandoned: attempt ceiling reached"))
	}
}

func TestRunAccount_DefaultCeiling(t *testing.T) {
	calls := 0
	o, _ := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls++
		return errors.New("timeout")
	}, &recordingPacer{}, 0)

	o.RunAccount(context.Background(), account("0x01"))
	require.Equal(t, DefaultMaxAttempts, calls)
}

func TestRunAccount_FatalAbandonsImmediately(t *testing.T) {
	calls := 0
	pacer := &recordingPacer{}
	o, hook := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls++
		return errors.Wrap(errors.New("insufficient funds for gas * price + value"), "failed to send transaction")
	}, pacer, 10)

	result := o.RunAccount(context.Background(), account("0x01"))

	require.Equal(t, 1, calls)
	require.Empty(t, pacer.events)
	require.Equal(t, types.AbandonFatal, result.Reason)
	require.ErrorContains(t, result.Err, "insufficient funds for gas")
	require.True(t, hasMessage(hook, logrus.WarnLevel, "Account abandoned: fatal error"))
	require.False(t, hasMessage(hook, logrus.WarnLevel, "Account abandoned: attempt ceiling reached"))
}

func TestRunAccount_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	o, _ := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls++
		cancel()
		return ctx.Err()
	}, &recordingPacer{}, 10)

	result := o.RunAccount(ctx, account("0x01"))

	require.Equal(t, 1, calls)
	require.Equal(t, types.AbandonCancelled, result.Reason)
}

func TestRun_FatalMovesToNextAccount(t *testing.T) {
	// Scenario: first account fails fatally, second succeeds.
	pacer := &recordingPacer{}
	calls := map[common.Address]int{}
	o, _ := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls[a.Address()]++
		if a.Address() == common.HexToAddress("0x01") {
			return errors.New("insufficient funds for gas")
		}
		return nil
	}, pacer, 10)

	summary := o.Run(context.Background(), []types.Account{account("0x01"), account("0x02")})

	require.Equal(t, 1, calls[common.HexToAddress("0x01")])
	require.Equal(t, 1, calls[common.HexToAddress("0x02")])
	require.Empty(t, pacer.events)
	require.Equal(t, 1, summary.Fatal)
	require.Equal(t, 1, summary.Succeeded)
}

func TestRun_RetryThenPacing(t *testing.T) {
	pacer := &recordingPacer{}
	calls := 0
	o, _ := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		if a.Address() != common.HexToAddress("0x01") {
			return nil
		}
		calls++
		if calls == 1 {
			return errors.New("replacement transaction underpriced")
		}
		return nil
	}, pacer, 10)

	summary := o.Run(context.Background(), []types.Account{account("0x01"), account("0x02")})

	require.Equal(t, 2, calls)
	require.Equal(t, []string{"retry", "pacing"}, pacer.events)
	require.Equal(t, 2, summary.Succeeded)
	require.Equal(t, 2, summary.Results[0].Attempts)
}

func TestRun_NoPacingAfterLastAccount(t *testing.T) {
	pacer := &recordingPacer{}
	o, hook := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		return nil
	}, pacer, 10)

	summary := o.Run(context.Background(), []types.Account{account("0x01"), account("0x02"), account("0x03")})

	require.Equal(t, []string{"pacing", "pacing"}, pacer.events)
	require.Equal(t, 3, summary.Total)
	require.Equal(t, 3, summary.Succeeded)
	require.True(t, hasMessage(hook, logrus.InfoLevel, "Run finished"))
}

func TestRun_NoPacingAfterAbandon(t *testing.T) {
	pacer := &recordingPacer{}
	o, _ := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		return errors.New("dropped")
	}, pacer, 2)

	summary := o.Run(context.Background(), []types.Account{account("0x01"), account("0x02")})

	require.Equal(t, []string{"retry", "retry"}, pacer.events)
	require.Equal(t, 2, summary.Exhausted)
}

func TestRun_CancelledDuringPacing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pacer := &recordingPacer{
		WaitBetweenAccountsFunc: func(ctx context.Context) error {
			cancel()
			return ctx.Err()
		},
	}
	calls := 0
	o, _ := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls++
		return nil
	}, pacer, 10)

	summary := o.Run(ctx, []types.Account{account("0x01"), account("0x02"), account("0x03")})

	require.Equal(t, 1, calls)
	require.Equal(t, 1, summary.Succeeded)
	require.Equal(t, 2, summary.Skipped)
}

func TestRunAccount_CancelledDuringRetryDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pacer := &recordingPacer{
		NextRetryFunc: func() time.Duration {
			cancel()
			return time.Hour
		},
	}
	calls := 0
	o, hook := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls++
		return errors.New("timeout")
	}, pacer, 10)

	result := o.RunAccount(ctx, account("0x01"))

	require.Equal(t, 1, calls)
	require.Equal(t, 1, result.Attempts)
	require.Equal(t, types.AbandonCancelled, result.Reason)
	require.ErrorContains(t, result.Err, "timeout")
	require.True(t, hasMessage(hook, logrus.WarnLevel, "Account abandoned: cancelled"))
}

func TestRunAccount_RetryLinesCarryNextAttempt(t *testing.T) {
	pacer := &recordingPacer{
		NextRetryFunc: func() time.Duration { return time.Millisecond },
	}
	calls := 0
	o, hook := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		calls++
		if calls < 3 {
			return errors.New("header not found")
		}
		return nil
	}, pacer, 5)

	result := o.RunAccount(context.Background(), account("0x01"))

	require.Equal(t, types.StateSucceeded, result.State)
	require.Equal(t, 3, result.Attempts)

	var retries []string
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Retrying" {
			retries = append(retries, entry.Data["attempt"].(string))
			require.Equal(t, time.Millisecond, entry.Data["delay"])
		}
	}
	require.Equal(t, []string{"2/5", "3/5"}, retries)
}

type sourcedAccount struct {
	fakeAccount
	line int
}

func (a *sourcedAccount) LogFields() logrus.Fields {
	return logrus.Fields{"line": a.line}
}

func TestRun_LogsAccountSourceFields(t *testing.T) {
	o, hook := newTestOrchestrator(func(ctx context.Context, a types.Account) error {
		return nil
	}, &recordingPacer{}, 1)

	acc := &sourcedAccount{fakeAccount: fakeAccount{address: common.HexToAddress("0x01")}, line: 7}
	o.Run(context.Background(), []types.Account{acc})

	var found bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Processing account" {
			found = true
			require.Equal(t, 7, entry.Data["line"])
			require.Equal(t, "1/1", entry.Data["account"])
		}
	}
	require.True(t, found)
}
