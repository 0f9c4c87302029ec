package evm

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// GetBalance gets the native balance for the given address at the latest block.
//
// Parameters:
// - ctx: the context for managing the request
// - address: the address to check balance for
//
// Returns:
// - *big.Int: the native balance in wei
// - error: an error if the balance check fails
func (e *evm) GetBalance(ctx context.Context, address common.Address) (*big.Int, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	balance, err := client.BalanceAt(ctx, address, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get native token balance")
	}

	return balance, nil
}
