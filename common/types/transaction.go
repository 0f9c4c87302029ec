package types

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// QuoteRequest represents a single-pool exact input quote request.
//
// Fields:
// - Quoter: the quoting contract address.
// - TokenIn: the token being sold.
// - TokenOut: the token being bought.
// - Fee: the pool fee tier.
// - AmountIn: the input amount in the input token's base unit.
type QuoteRequest struct {
	Quoter   common.Address
	TokenIn  common.Address
	TokenOut common.Address
	Fee      uint32
	AmountIn *big.Int
}

// TxParams represents the call a transaction should carry.
//
// Fields:
// - From: the sender address.
// - To: the target contract address.
// - Value: the native value to send.
// - Data: the encoded call data.
// - GasLimit: the gas ceiling used until the estimate is known.
type TxParams struct {
	From     common.Address
	To       common.Address
	Value    *big.Int
	Data     []byte
	GasLimit uint64
}

// UnsignedTransaction represents a fee-market transaction before signing.
// GasLimit is patched once with the node's estimate; the value is not touched after signing.
type UnsignedTransaction struct {
	From                 common.Address
	To                   common.Address
	Value                *big.Int
	Data                 []byte
	Nonce                uint64
	ChainID              *big.Int
	GasLimit             uint64
	MaxPriorityFeePerGas *big.Int
	MaxFeePerGas         *big.Int
}

// ToTransaction converts the unsigned transaction into a go-ethereum dynamic fee transaction.
func (t *UnsignedTransaction) ToTransaction() *ethtypes.Transaction {
	to := t.To
	return ethtypes.NewTx(&ethtypes.DynamicFeeTx{
		ChainID:    t.ChainID,
		Nonce:      t.Nonce,
		GasTipCap:  t.MaxPriorityFeePerGas,
		GasFeeCap:  t.MaxFeePerGas,
		Gas:        t.GasLimit,
		To:         &to,
		Value:      t.Value,
		Data:       t.Data,
		AccessList: nil,
	})
}

// SubmissionHandle identifies a broadcast transaction pending confirmation.
//
// Fields:
// - Hash: the hash of the signed transaction.
// - From: the sender address.
// - Nonce: the nonce the transaction was sent with.
// - SubmittedAt: the time the node accepted the transaction.
type SubmissionHandle struct {
	Hash        common.Hash
	From        common.Address
	Nonce       uint64
	SubmittedAt time.Time
}
