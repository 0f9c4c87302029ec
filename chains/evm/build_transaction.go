package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BuildTransaction assembles an unsigned fee-market transaction.
// Gas price, nonce and chain id are fetched fresh on every call. Both fee fields are set
// to the gas price, and the gas limit is replaced by the node's estimate for this exact transaction.
//
// Parameters:
// - ctx: the context for managing the request.
// - params: the call the transaction carries.
//
// Returns:
// - *types.UnsignedTransaction: the prepared transaction.
// - error: an error if the gas price, nonce, chain id or gas estimation fails.
func (e *evm) BuildTransaction(ctx context.Context, params *types.TxParams) (*types.UnsignedTransaction, error) {
	if params == nil {
		return nil, errors.New("transaction params are required")
	}

	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	gasPrice, err := e.GasPrice(ctx)
	if err != nil {
		return nil, err
	}

	nonce, err := client.PendingNonceAt(ctx, params.From)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get nonce")
	}

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain id")
	}

	value := params.Value
	if value == nil {
		value = big.NewInt(0)
	}

	tx := &types.UnsignedTransaction{
		From:                 params.From,
		To:                   params.To,
		Value:                value,
		Data:                 params.Data,
		Nonce:                nonce,
		ChainID:              chainID,
		GasLimit:             params.GasLimit,
		MaxPriorityFeePerGas: gasPrice,
		MaxFeePerGas:         new(big.Int).Set(gasPrice),
	}

	estimatedGas, err := e.EstimateGas(ctx, tx)
	if err != nil {
		e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Failed to estimate gas")
		return nil, errors.Wrap(err, "failed to estimate gas")
	}
	tx.GasLimit = estimatedGas

	e.logger.WithFields(logrus.Fields{
		"from":     tx.From.Hex(),
		"nonce":    tx.Nonce,
		"chainId":  tx.ChainID,
		"gas":      tx.GasLimit,
		"gasPrice": gasPrice,
	}).Debug("Transaction built")

	return tx, nil
}
