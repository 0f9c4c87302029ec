package errors

import (
	"fmt"

	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

var (
	ErrConfigDecode         = errors.New("failed to decode account source")
	ErrDroppedTransaction   = errors.New("transaction dropped: no receipt obtained")
	ErrInvalidChainBook     = errors.New("invalid chain book")
	ErrChainBookNotFound    = errors.New("chain book not found")
	ErrRPCNotFound          = errors.New("no active rpc found")
	ErrInvalidChainID       = errors.New("invalid chain id")
	ErrDatabaseConnect      = errors.New("failed to connect to database")
	ErrNotImplemented       = errors.New("functionality not implemented")
	ErrClientNotInitialized = errors.New("client not initialized")
)

// RevertedTransactionError is returned when a transaction was mined with a failing status.
// It carries the full receipt for diagnostics.
type RevertedTransactionError struct {
	Receipt *ethtypes.Receipt
}

func (e *RevertedTransactionError) Error() string {
	if e.Receipt == nil {
		return "transaction reverted"
	}
	return fmt.Sprintf("transaction %s reverted in block %v with status %d",
		e.Receipt.TxHash.Hex(), e.Receipt.BlockNumber, e.Receipt.Status)
}

// AsReverted returns the RevertedTransactionError in err's chain, if any.
func AsReverted(err error) (*RevertedTransactionError, bool) {
	var reverted *RevertedTransactionError
	if errors.As(err, &reverted) {
		return reverted, true
	}
	return nil, false
}

// IsDropped reports whether err is a dropped-transaction failure.
func IsDropped(err error) bool {
	return errors.Is(err, ErrDroppedTransaction)
}
