package types

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// NodeConfig holds the configuration for the connection to a chain node.
//
// Fields:
// - Name: the name of the chain, used in logs.
// - RpcUrl: the URL for the chain's RPC endpoint (http(s):// or ws(s)://).
// - WaitNBlocks: the number of extra blocks to wait for after a transaction is mined.
// - PollInterval: the interval between receipt checks on HTTP endpoints.
// - ConfirmationTimeout: the maximum time to wait for a receipt.
// - GasPriceCeiling: optional cap for both fee fields; nil means no cap.
type NodeConfig struct {
	Name                string
	RpcUrl              string
	WaitNBlocks         uint64
	PollInterval        time.Duration
	ConfirmationTimeout time.Duration
	GasPriceCeiling     *big.Int
}

// ChainBook holds the static addresses and parameters of one source/destination chain pair.
// It is created once at startup and shared read-only by every account operation.
//
// Fields:
// - Name: the name of the book.
// - ChainID: the source chain id.
// - Quoter: the address of the quoting contract.
// - Bridge: the address of the bridge contract.
// - TokenIn: the input token of the swap.
// - TokenOut: the output token of the swap.
// - ZroPaymentAddress: the ZRO payment address passed to the bridge (zero address pays in native).
// - ExplorerURL: the block explorer base URL, ending with a slash.
// - DefaultGasLimit: the gas ceiling used to build the transaction before estimation.
// - FeeTier: the pool fee tier of the quote, in hundredths of a bip.
// - DstChainID: the destination chain id in the bridge's own numbering.
// - AdapterParams: the adapter parameters passed to the bridge.
type ChainBook struct {
	Name              string
	ChainID           uint64
	Quoter            common.Address
	Bridge            common.Address
	TokenIn           common.Address
	TokenOut          common.Address
	ZroPaymentAddress common.Address
	ExplorerURL       string
	DefaultGasLimit   uint64
	FeeTier           uint32
	DstChainID        uint16
	AdapterParams     []byte
}

// TxURL returns the block explorer link for the given transaction hash.
func (b *ChainBook) TxURL(hash common.Hash) string {
	return b.ExplorerURL + "tx/" + hash.Hex()
}

// Validate checks that the book can be used to quote and bridge.
func (b *ChainBook) Validate() error {
	switch {
	case b.ChainID == 0:
		return errors.New("chain id is required")
	case b.Quoter == (common.Address{}):
		return errors.New("quoter address is required")
	case b.Bridge == (common.Address{}):
		return errors.New("bridge address is required")
	case b.TokenIn == (common.Address{}) || b.TokenOut == (common.Address{}):
		return errors.New("token addresses are required")
	case b.FeeTier == 0 || b.FeeTier >= 1<<24:
		return errors.Errorf("fee tier %d out of uint24 range", b.FeeTier)
	case b.DefaultGasLimit == 0:
		return errors.New("default gas limit is required")
	case b.DstChainID == 0:
		return errors.New("destination chain id is required")
	case !strings.HasSuffix(b.ExplorerURL, "/"):
		return errors.Errorf("explorer url %q must end with a slash", b.ExplorerURL)
	}
	return nil
}

// Account is a signing identity.
type Account interface {
	// Address returns the account's address.
	Address() common.Address

	// SignTx signs the given transaction with the specified chain ID and returns the signed transaction.
	SignTx(tx *ethtypes.Transaction, chainID *big.Int) (*ethtypes.Transaction, error)
}

// QuoteProvider provides swap quotes.
type QuoteProvider interface {
	// GetQuote returns the expected output amount for the given request.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - request: the quote request.
	//
	// Returns:
	// - *big.Int: the quoted output amount.
	// - error: an error if the quoting call fails.
	GetQuote(ctx context.Context, request *QuoteRequest) (*big.Int, error)
}

// TransactionBuilder assembles unsigned transactions.
type TransactionBuilder interface {
	// BuildTransaction assembles an unsigned fee-market transaction with fresh nonce,
	// chain id and gas parameters, and an estimated gas limit.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - params: the call parameters.
	//
	// Returns:
	// - *UnsignedTransaction: the built transaction.
	// - error: an error if any node call fails.
	BuildTransaction(ctx context.Context, params *TxParams) (*UnsignedTransaction, error)
}

// TransactionSender provides transaction signing and broadcasting.
type TransactionSender interface {
	// SignAndSend signs the transaction with the account and submits it to the node.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - tx: the unsigned transaction.
	// - account: the signing account.
	//
	// Returns:
	// - *SubmissionHandle: the handle of the pending transaction.
	// - error: an error if signing or broadcasting fails.
	SignAndSend(ctx context.Context, tx *UnsignedTransaction, account Account) (*SubmissionHandle, error)
}

// TransactionWatcher provides transaction confirmation functionality.
type TransactionWatcher interface {
	// WaitReceipt waits until the submitted transaction is mined.
	//
	// Parameters:
	// - ctx: the context for managing the request.
	// - handle: the handle of the pending transaction.
	//
	// Returns:
	// - *ethtypes.Receipt: the receipt, also returned when the transaction reverted.
	// - error: ErrDroppedTransaction, *RevertedTransactionError or a node error.
	WaitReceipt(ctx context.Context, handle *SubmissionHandle) (*ethtypes.Receipt, error)
}

// BalanceProvider provides native balance lookups.
type BalanceProvider interface {
	// GetBalance returns the native balance of the address.
	GetBalance(ctx context.Context, address common.Address) (*big.Int, error)
}

// Chain combines all chain-specific functionality used by the bridge operation.
type Chain interface {
	QuoteProvider
	TransactionBuilder
	TransactionSender
	TransactionWatcher
	BalanceProvider
}
