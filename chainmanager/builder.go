package chainmanager

import (
	"github.com/ClipFinance/testnet-bridge/common/types"
)

// closer releases the resources held by a chain implementation.
type closer interface {
	Close()
}

// ChainBuilder is a builder pattern implementation for chain configuration.
// It allows setting the components of the chain such as quote provider,
// transaction builder, transaction sender, transaction watcher, and balance provider.
type ChainBuilder struct {
	config   *types.NodeConfig        // Node configuration.
	quoter   types.QuoteProvider      // Quote provider implementation.
	builder  types.TransactionBuilder // Transaction builder implementation.
	sender   types.TransactionSender  // Transaction sender implementation.
	watcher  types.TransactionWatcher // Transaction watcher implementation.
	provider types.BalanceProvider    // Balance provider implementation.
	closer   closer                   // Releases the node connection.
}

// NewChainBuilder creates a new chain builder instance.
//
// Parameters:
// - config: the node configuration.
//
// Returns:
// - *ChainBuilder: a new ChainBuilder instance.
func NewChainBuilder(config *types.NodeConfig) *ChainBuilder {
	return &ChainBuilder{
		config: config,
	}
}

// WithQuoteProvider sets quote provider implementation.
//
// Parameters:
// - quoter: the quote provider implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithQuoteProvider(quoter types.QuoteProvider) *ChainBuilder {
	b.quoter = quoter
	return b
}

// WithTransactionBuilder sets transaction builder implementation.
//
// Parameters:
// - builder: the transaction builder implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithTransactionBuilder(builder types.TransactionBuilder) *ChainBuilder {
	b.builder = builder
	return b
}

// WithTransactionSender sets transaction sender implementation.
//
// Parameters:
// - sender: the transaction sender implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithTransactionSender(sender types.TransactionSender) *ChainBuilder {
	b.sender = sender
	return b
}

// WithTransactionWatcher sets transaction watcher implementation.
//
// Parameters:
// - watcher: the transaction watcher implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithTransactionWatcher(watcher types.TransactionWatcher) *ChainBuilder {
	b.watcher = watcher
	return b
}

// WithBalanceProvider sets balance provider implementation.
//
// Parameters:
// - provider: the balance provider implementation.
//
// Returns:
// - *ChainBuilder: the updated ChainBuilder instance.
func (b *ChainBuilder) WithBalanceProvider(provider types.BalanceProvider) *ChainBuilder {
	b.provider = provider
	return b
}

// WithCloser sets the component that releases the node connection on Close.
func (b *ChainBuilder) WithCloser(c closer) *ChainBuilder {
	b.closer = c
	return b
}

// Build creates a new chain instance with configured implementations.
//
// Returns:
// - *Chain: a new Chain instance with the configured implementations.
func (b *ChainBuilder) Build() *Chain {
	return NewChain(b.config, b.quoter, b.builder, b.sender, b.watcher, b.provider, b.closer)
}
