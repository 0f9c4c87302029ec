// Package bridge implements the per-attempt pipeline: quote, build, sign, send and confirm.
package bridge

import (
	"context"
	"math/big"
	"math/rand"
	"sync"
	"time"

	"github.com/ClipFinance/testnet-bridge/chains/evm/generated"
	"github.com/ClipFinance/testnet-bridge/chains/evm/utils"
	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Params holds the amounts and ratios applied to every attempt.
//
// Fields:
// - AmountMin: the inclusive lower bound of the input amount, in wei.
// - AmountMax: the exclusive upper bound of the input amount, in wei.
// - Slippage: the fraction of the quote accepted as minimum output.
// - ValueBuffer: the multiplier applied to the input amount for the transmitted value.
type Params struct {
	AmountMin   *big.Int
	AmountMax   *big.Int
	Slippage    types.Ratio
	ValueBuffer types.Ratio
}

// Validate checks the amount range and the ratios.
func (p *Params) Validate() error {
	if p.AmountMin == nil || p.AmountMax == nil || p.AmountMin.Sign() <= 0 {
		return errors.New("amount range must be positive")
	}
	if p.AmountMax.Cmp(p.AmountMin) < 0 {
		return errors.Errorf("amount max %s is below min %s", p.AmountMax, p.AmountMin)
	}
	if err := p.Slippage.ValidateFraction(); err != nil {
		return errors.Wrap(err, "invalid slippage")
	}
	if err := p.ValueBuffer.ValidateMultiplier(); err != nil {
		return errors.Wrap(err, "invalid value buffer")
	}
	return nil
}

// Operation runs one bridge attempt for an account against a chain.
type Operation struct {
	chain  types.Chain
	book   *types.ChainBook
	params Params
	logger *logrus.Logger

	rngMutex sync.Mutex
	rng      *rand.Rand
}

// NewOperation creates a new bridge operation.
//
// Parameters:
// - chain: the chain used for quoting, building, sending and watching.
// - book: the chain book with the contract addresses.
// - params: the amounts and ratios.
// - rng: the random source for input amounts.
// - logger: the logger for progress lines.
//
// Returns:
// - *Operation: the new operation.
// - error: an error if the book or the params are invalid.
func NewOperation(chain types.Chain, book *types.ChainBook, params Params, rng *rand.Rand, logger *logrus.Logger) (*Operation, error) {
	if chain == nil || book == nil || rng == nil {
		return nil, errors.New("chain, book and random source are required")
	}
	if err := book.Validate(); err != nil {
		return nil, errors.Wrap(commonerrors.ErrInvalidChainBook, err.Error())
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	return &Operation{
		chain:  chain,
		book:   book,
		params: params,
		rng:    rng,
		logger: logger,
	}, nil
}

// Execute runs the pipeline once. Every step error is returned as is so the
// caller can classify it; nothing is retried here.
//
// Parameters:
// - ctx: the context for managing the request.
// - account: the signing account.
//
// Returns:
// - error: nil once the transaction is confirmed successful.
func (o *Operation) Execute(ctx context.Context, account types.Account) error {
	from := account.Address()
	log := o.logger.WithField("address", from.Hex())

	amountIn := o.randomAmount()

	balance, err := o.chain.GetBalance(ctx, from)
	if err != nil {
		log.WithError(err).Warn("Failed to get balance")
	} else {
		log.WithField("balance", utils.FormatEther(balance)).Info("Native balance")
	}

	amountOut, err := o.chain.GetQuote(ctx, &types.QuoteRequest{
		Quoter:   o.book.Quoter,
		TokenIn:  o.book.TokenIn,
		TokenOut: o.book.TokenOut,
		Fee:      o.book.FeeTier,
		AmountIn: amountIn,
	})
	if err != nil {
		return errors.Wrap(err, "failed to get quote")
	}
	amountOutMin := o.params.Slippage.Apply(amountOut)

	log.WithFields(logrus.Fields{
		"amountIn":     utils.FormatEther(amountIn),
		"amountOut":    amountOut,
		"amountOutMin": amountOutMin,
	}).Info("Quote received")

	data, err := generated.PackBridge(&generated.BridgeCall{
		AmountIn:          amountIn,
		AmountOutMin:      amountOutMin,
		DstChainID:        o.book.DstChainID,
		To:                from,
		RefundAddress:     from,
		ZroPaymentAddress: o.book.ZroPaymentAddress,
		AdapterParams:     o.book.AdapterParams,
	})
	if err != nil {
		return err
	}

	tx, err := o.chain.BuildTransaction(ctx, &types.TxParams{
		From:     from,
		To:       o.book.Bridge,
		Value:    o.params.ValueBuffer.Apply(amountIn),
		Data:     data,
		GasLimit: o.book.DefaultGasLimit,
	})
	if err != nil {
		return errors.Wrap(err, "failed to build transaction")
	}

	handle, err := o.chain.SignAndSend(ctx, tx, account)
	if err != nil {
		return err
	}

	log = log.WithField("tx", o.book.TxURL(handle.Hash))
	log.WithField("nonce", handle.Nonce).Info("Bridge transaction sent")

	receipt, err := o.chain.WaitReceipt(ctx, handle)
	if err != nil {
		if reverted, ok := commonerrors.AsReverted(err); ok {
			log.Errorf("Bridge transaction reverted:\n%s", spew.Sdump(reverted.Receipt))
		} else if commonerrors.IsDropped(err) {
			log.WithField("waited", time.Since(handle.SubmittedAt).Round(time.Second)).Warn("Bridge transaction dropped")
		}
		return err
	}

	log.WithFields(logrus.Fields{
		"block":   receipt.BlockNumber,
		"gasUsed": receipt.GasUsed,
		"latency": time.Since(handle.SubmittedAt).Round(time.Millisecond),
	}).Info("Bridge transaction confirmed")

	return nil
}

// randomAmount draws the input amount uniformly from [AmountMin, AmountMax).
func (o *Operation) randomAmount() *big.Int {
	span := new(big.Int).Sub(o.params.AmountMax, o.params.AmountMin)
	if span.Sign() <= 0 {
		return new(big.Int).Set(o.params.AmountMin)
	}

	o.rngMutex.Lock()
	offset := new(big.Int).Rand(o.rng, span)
	o.rngMutex.Unlock()

	return offset.Add(offset, o.params.AmountMin)
}
