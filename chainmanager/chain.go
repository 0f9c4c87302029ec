package chainmanager

import (
	"context"
	"math/big"
	"sync"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

var _ types.Chain = (*Chain)(nil)

// Chain implements types.Chain interface with thread-safe access to dependencies.
// Each dependency is protected by a read-write mutex to ensure thread-safe access.
type Chain struct {
	config   *types.NodeConfig        // Node configuration.
	quoter   types.QuoteProvider      // Quote provider implementation.
	builder  types.TransactionBuilder // Transaction builder implementation.
	sender   types.TransactionSender  // Transaction sender implementation.
	watcher  types.TransactionWatcher // Transaction watcher implementation.
	provider types.BalanceProvider    // Balance provider implementation.
	closer   closer                   // Releases the node connection.

	// Mutexes for thread-safe access to dependencies.
	quoterMutex   sync.RWMutex // Mutex for quote provider.
	builderMutex  sync.RWMutex // Mutex for transaction builder.
	senderMutex   sync.RWMutex // Mutex for transaction sender.
	watcherMutex  sync.RWMutex // Mutex for transaction watcher.
	providerMutex sync.RWMutex // Mutex for balance provider.
	closeOnce     sync.Once
}

// NewChain creates a new Chain instance. Any component may be nil;
// the matching methods then return ErrNotImplemented.
//
// Parameters:
// - config: the node configuration.
// - quoter: the quote provider implementation.
// - builder: the transaction builder implementation.
// - sender: the transaction sender implementation.
// - watcher: the transaction watcher implementation.
// - provider: the balance provider implementation.
// - closer: releases the node connection, may be nil.
//
// Returns:
// - *Chain: a new Chain instance.
func NewChain(
	config *types.NodeConfig,
	quoter types.QuoteProvider,
	builder types.TransactionBuilder,
	sender types.TransactionSender,
	watcher types.TransactionWatcher,
	provider types.BalanceProvider,
	closer closer,
) *Chain {
	return &Chain{
		config:   config,
		quoter:   quoter,
		builder:  builder,
		sender:   sender,
		watcher:  watcher,
		provider: provider,
		closer:   closer,
	}
}

// GetQuote returns a swap quote with thread-safe access.
//
// Parameters:
// - ctx: the context for managing the request.
// - request: the quote request.
//
// Returns:
// - *big.Int: the quoted output amount.
// - error: an error if the quote provider is not implemented or the quote fails.
func (c *Chain) GetQuote(ctx context.Context, request *types.QuoteRequest) (*big.Int, error) {
	c.quoterMutex.RLock()
	defer c.quoterMutex.RUnlock()

	if c.quoter == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return c.quoter.GetQuote(ctx, request)
}

// BuildTransaction assembles an unsigned transaction with thread-safe access.
//
// Parameters:
// - ctx: the context for managing the request.
// - params: the call parameters.
//
// Returns:
// - *types.UnsignedTransaction: the built transaction.
// - error: an error if the builder is not implemented or building fails.
func (c *Chain) BuildTransaction(ctx context.Context, params *types.TxParams) (*types.UnsignedTransaction, error) {
	c.builderMutex.RLock()
	defer c.builderMutex.RUnlock()

	if c.builder == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return c.builder.BuildTransaction(ctx, params)
}

// SignAndSend signs and submits a transaction with thread-safe access.
//
// Parameters:
// - ctx: the context for managing the request.
// - tx: the unsigned transaction.
// - account: the signing account.
//
// Returns:
// - *types.SubmissionHandle: the handle of the pending transaction.
// - error: an error if the sender is not implemented or sending fails.
func (c *Chain) SignAndSend(ctx context.Context, tx *types.UnsignedTransaction, account types.Account) (*types.SubmissionHandle, error) {
	c.senderMutex.RLock()
	defer c.senderMutex.RUnlock()

	if c.sender == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return c.sender.SignAndSend(ctx, tx, account)
}

// WaitReceipt waits for the transaction receipt with thread-safe access.
//
// Parameters:
// - ctx: the context for managing the request.
// - handle: the handle of the pending transaction.
//
// Returns:
// - *ethtypes.Receipt: the receipt, also returned when the transaction reverted.
// - error: an error if the watcher is not implemented or waiting fails.
func (c *Chain) WaitReceipt(ctx context.Context, handle *types.SubmissionHandle) (*ethtypes.Receipt, error) {
	c.watcherMutex.RLock()
	defer c.watcherMutex.RUnlock()

	if c.watcher == nil {
		return nil, commonerrors.ErrNotImplemented
	}
	return c.watcher.WaitReceipt(ctx, handle)
}

// GetBalance returns the native balance of the address.
func (c *Chain) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	c.providerMutex.RLock()
	provider := c.provider
	c.providerMutex.RUnlock()

	if provider == nil {
		return nil, commonerrors.ErrNotImplemented
	}

	return provider.GetBalance(ctx, address)
}

// GetConfig returns node configuration.
//
// Returns:
// - *types.NodeConfig: the node configuration instance.
func (c *Chain) GetConfig() *types.NodeConfig {
	return c.config
}

// Close releases the node connection. Calls after the first are no-ops.
func (c *Chain) Close() {
	c.closeOnce.Do(func() {
		if c.closer != nil {
			c.closer.Close()
		}
	})
}
