package evm

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ClipFinance/testnet-bridge/chainmanager"
	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ClipFinance/testnet-bridge/connectionmonitor"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// defaultPollInterval is the receipt polling interval used when none is configured.
	defaultPollInterval = 2 * time.Second
	// defaultConfirmationTimeout is the receipt wait bound used when none is configured.
	defaultConfirmationTimeout = 5 * time.Minute
)

// ethClient is the subset of *ethclient.Client the chain relies on.
type ethClient interface {
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	ChainID(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *ethtypes.Transaction) error
	TransactionReceipt(ctx context.Context, txHash common.Hash) (*ethtypes.Receipt, error)
	TransactionByHash(ctx context.Context, hash common.Hash) (*ethtypes.Transaction, bool, error)
	BlockNumber(ctx context.Context) (uint64, error)
	SubscribeNewHead(ctx context.Context, ch chan<- *ethtypes.Header) (ethereum.Subscription, error)
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	Close()
}

// dialFunc opens a client for the given RPC URL.
type dialFunc func(ctx context.Context, rpcURL string) (ethClient, error)

func dialEthClient(ctx context.Context, rpcURL string) (ethClient, error) {
	return ethclient.DialContext(ctx, rpcURL)
}

// evm represents the EVM chain implementation.
type evm struct {
	config *types.NodeConfig // Node configuration.
	logger *logrus.Logger    // Logger for logging events.
	dial   dialFunc          // Client constructor, also used on reconnect.

	// Protected fields with their own mutexes.
	clientMutex sync.RWMutex // Mutex for client.
	client      ethClient    // Ethereum client.

	monitorMutex sync.RWMutex                        // Mutex for connection monitor.
	monitor      connectionmonitor.ConnectionMonitor // Connection monitor.
}

// NewEvmChain dials the node and creates a new EVM chain implementation.
//
// Parameters:
// - ctx: the context for managing the request and the connection monitor lifetime.
// - config: the node configuration.
// - logger: the logger for logging events.
//
// Returns:
// - *chainmanager.Chain: a new chain exposing quoting, building, sending, watching and balances.
// - error: an error if any issue occurs during creation.
func NewEvmChain(ctx context.Context, config *types.NodeConfig, logger *logrus.Logger) (*chainmanager.Chain, error) {
	chain, err := newEvm(ctx, config, logger, dialEthClient)
	if err != nil {
		return nil, err
	}

	if err := chain.initMonitor(ctx); err != nil {
		chain.Close()
		return nil, errors.Wrap(err, "failed to init connection monitor")
	}

	return chain.build(), nil
}

// newEvm dials the node with the given dial function.
func newEvm(ctx context.Context, config *types.NodeConfig, logger *logrus.Logger, dial dialFunc) (*evm, error) {
	if config == nil || config.RpcUrl == "" {
		return nil, errors.New("rpc url is required")
	}

	client, err := dial(ctx, config.RpcUrl)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create client")
	}

	return &evm{
		config: config,
		logger: logger,
		dial:   dial,
		client: client,
	}, nil
}

// build wires the chain into a chainmanager.Chain.
func (e *evm) build() *chainmanager.Chain {
	return chainmanager.NewChainBuilder(e.config).
		WithQuoteProvider(e).
		WithTransactionBuilder(e).
		WithTransactionSender(e).
		WithTransactionWatcher(e).
		WithBalanceProvider(e).
		WithCloser(e).
		Build()
}

// Close should be called when the chain is no longer needed.
// It stops the connection monitor and closes the client.
func (e *evm) Close() {
	e.monitorMutex.Lock()
	if e.monitor != nil {
		e.monitor.Stop()
	}
	e.monitorMutex.Unlock()

	e.clientMutex.Lock()
	if e.client != nil {
		e.client.Close()
		e.client = nil
	}
	e.clientMutex.Unlock()
}

// getClient returns the current client.
func (e *evm) getClient() (ethClient, error) {
	e.clientMutex.RLock()
	defer e.clientMutex.RUnlock()

	if e.client == nil {
		return nil, commonerrors.ErrClientNotInitialized
	}
	return e.client, nil
}

func (e *evm) pollInterval() time.Duration {
	if e.config.PollInterval > 0 {
		return e.config.PollInterval
	}
	return defaultPollInterval
}

func (e *evm) confirmationTimeout() time.Duration {
	if e.config.ConfirmationTimeout > 0 {
		return e.config.ConfirmationTimeout
	}
	return defaultConfirmationTimeout
}
