package evm

import (
	"context"
	"math/big"

	"github.com/ClipFinance/testnet-bridge/chains/evm/generated"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ethereum/go-ethereum"
	"github.com/pkg/errors"
)

// GetQuote asks the quoting contract for the expected output of an exact input swap.
// The call is a simulated read; no retry is done here.
//
// Parameters:
// - ctx: the context for managing the request.
// - request: the quote request, including the quoting contract address.
//
// Returns:
// - *big.Int: the quoted output amount.
// - error: an error if the client is not initialized, the call fails or the result cannot be decoded.
func (e *evm) GetQuote(ctx context.Context, request *types.QuoteRequest) (*big.Int, error) {
	if request == nil || request.AmountIn == nil || request.AmountIn.Sign() <= 0 {
		return nil, errors.New("quote amount must be positive")
	}

	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	data, err := generated.PackQuote(request.TokenIn, request.TokenOut, request.Fee, request.AmountIn)
	if err != nil {
		return nil, err
	}

	quoter := request.Quoter
	result, err := client.CallContract(ctx, ethereum.CallMsg{
		To:   &quoter,
		Data: data,
	}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to call quoter")
	}

	return generated.UnpackQuote(result)
}
