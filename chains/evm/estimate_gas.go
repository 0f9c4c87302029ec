package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EstimateGas estimates the gas required for the given transaction.
// The transaction's current gas limit is passed as the cap of the estimate.
//
// Parameters:
// - ctx: the context for managing the request.
// - tx: the unsigned transaction to estimate.
//
// Returns:
// - uint64: the estimated gas required for the transaction.
// - error: an error if the client is not initialized or if the gas estimation fails.
func (e *evm) EstimateGas(ctx context.Context, tx *types.UnsignedTransaction) (uint64, error) {
	client, err := e.getClient()
	if err != nil {
		return 0, err
	}

	to := tx.To
	msg := ethereum.CallMsg{
		From:      tx.From,
		To:        &to,
		Gas:       tx.GasLimit,
		GasFeeCap: tx.MaxFeePerGas,
		GasTipCap: tx.MaxPriorityFeePerGas,
		Value:     tx.Value,
		Data:      tx.Data,
	}

	return client.EstimateGas(ctx, msg)
}

// GasPrice returns the node's current gas price, capped by the configured ceiling.
//
// Parameters:
// - ctx: the context for managing the request.
//
// Returns:
// - *big.Int: the gas price to use for both fee fields.
// - error: an error if the client is not initialized or the gas price cannot be fetched.
func (e *evm) GasPrice(ctx context.Context) (*big.Int, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	gasPrice, err := client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get gas price")
	}

	ceiling := e.config.GasPriceCeiling
	if ceiling != nil && ceiling.Sign() > 0 && gasPrice.Cmp(ceiling) > 0 {
		e.logger.WithFields(logrus.Fields{
			"chain":    e.config.Name,
			"gasPrice": gasPrice,
			"ceiling":  ceiling,
		}).Warn("Gas price above ceiling, using ceiling")
		return new(big.Int).Set(ceiling), nil
	}

	return gasPrice, nil
}
