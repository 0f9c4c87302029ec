package evm

import (
	"context"
	"sync"
	"time"

	commonerrors "github.com/ClipFinance/testnet-bridge/common/errors"
	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/ethereum/go-ethereum"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// droppedAfterMisses is the number of consecutive checks in which the node knows neither
// a receipt nor the transaction itself before the transaction is considered dropped.
const droppedAfterMisses = 3

// subscriptionHandler manages block header subscriptions
type subscriptionHandler struct {
	subscription ethereum.Subscription
	headerChan   chan *ethtypes.Header
	sync.RWMutex
}

// close safely closes subscription and channel
func (h *subscriptionHandler) close() {
	h.Lock()
	defer h.Unlock()
	if h.subscription != nil {
		h.subscription.Unsubscribe()
		h.subscription = nil
	}
	if h.headerChan != nil {
		close(h.headerChan)
		h.headerChan = nil
	}
}

// receiptTracker counts consecutive checks in which the transaction was unknown.
type receiptTracker struct {
	handle *types.SubmissionHandle
	misses int
}

// WaitReceipt waits until the submitted transaction is mined, bounded by the confirmation timeout.
//
// Parameters:
// - ctx: the context for managing the request.
// - handle: the handle of the pending transaction.
//
// Returns:
// - *ethtypes.Receipt: the receipt, also returned when the transaction reverted.
// - error: ErrDroppedTransaction if no receipt was obtained in time or the node forgot the transaction,
// RevertedTransactionError if the receipt status is not successful, or the context error on cancellation.
func (e *evm) WaitReceipt(ctx context.Context, handle *types.SubmissionHandle) (*ethtypes.Receipt, error) {
	if handle == nil {
		return nil, errors.New("submission handle is required")
	}

	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	timeout := e.confirmationTimeout()
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tracker := &receiptTracker{handle: handle}

	var receipt *ethtypes.Receipt
	if types.GetReceiptMode(e.config.RpcUrl) == types.NewHeadMode {
		receipt, err = e.waitReceiptNewHead(waitCtx, client, tracker)
	} else {
		receipt, err = e.waitReceiptPolling(waitCtx, tracker)
	}

	if err != nil && ctx.Err() == nil && errors.Is(err, context.DeadlineExceeded) {
		return nil, errors.Wrapf(commonerrors.ErrDroppedTransaction, "no receipt for %s after %s", handle.Hash.Hex(), timeout)
	}

	return receipt, err
}

// waitReceiptNewHead checks for the receipt on every new block header.
// It falls back to polling if the subscription cannot be created or breaks.
func (e *evm) waitReceiptNewHead(ctx context.Context, client ethClient, tracker *receiptTracker) (*ethtypes.Receipt, error) {
	handler := &subscriptionHandler{
		headerChan: make(chan *ethtypes.Header),
	}
	defer handler.close()

	sub, err := client.SubscribeNewHead(ctx, handler.headerChan)
	if err != nil {
		e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Failed to subscribe to new headers, polling instead")
		return e.waitReceiptPolling(ctx, tracker)
	}

	handler.Lock()
	handler.subscription = sub
	handler.Unlock()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case err := <-sub.Err():
			e.logger.WithField("chain", e.config.Name).WithError(err).Warn("Header subscription failed, polling instead")
			return e.waitReceiptPolling(ctx, tracker)

		case header := <-handler.headerChan:
			if header == nil {
				continue
			}

			receipt, err := e.checkReceipt(ctx, tracker)
			if receipt != nil || err != nil {
				return receipt, err
			}
		}
	}
}

// waitReceiptPolling checks for the receipt on a fixed interval.
func (e *evm) waitReceiptPolling(ctx context.Context, tracker *receiptTracker) (*ethtypes.Receipt, error) {
	ticker := time.NewTicker(e.pollInterval())
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case <-ticker.C:
			receipt, err := e.checkReceipt(ctx, tracker)
			if receipt != nil || err != nil {
				return receipt, err
			}
		}
	}
}

// checkReceipt performs one receipt check. It returns (nil, nil) while the transaction is pending.
// Node errors are logged and the wait goes on: only the timeout turns a pending transaction into a failure.
func (e *evm) checkReceipt(ctx context.Context, tracker *receiptTracker) (*ethtypes.Receipt, error) {
	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	hash := tracker.handle.Hash
	receipt, err := client.TransactionReceipt(ctx, hash)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !errors.Is(err, ethereum.NotFound) {
			e.logger.WithField("tx", hash.Hex()).WithError(err).Warn("Failed to get transaction receipt")
			return nil, nil
		}
		return nil, e.checkPending(ctx, tracker)
	}
	tracker.misses = 0

	if e.config.WaitNBlocks > 0 {
		currentBlock, err := client.BlockNumber(ctx)
		if err != nil {
			e.logger.WithField("tx", hash.Hex()).WithError(err).Warn("Failed to get current block number")
			return nil, nil
		}
		if currentBlock < receipt.BlockNumber.Uint64()+e.config.WaitNBlocks {
			return nil, nil
		}
	}

	if receipt.Status != ethtypes.ReceiptStatusSuccessful {
		return receipt, &commonerrors.RevertedTransactionError{Receipt: receipt}
	}

	return receipt, nil
}

// checkPending looks the transaction up by hash when no receipt exists yet.
func (e *evm) checkPending(ctx context.Context, tracker *receiptTracker) error {
	client, err := e.getClient()
	if err != nil {
		return err
	}

	hash := tracker.handle.Hash
	_, _, err = client.TransactionByHash(ctx, hash)
	switch {
	case err == nil:
		tracker.misses = 0
		return nil
	case errors.Is(err, ethereum.NotFound):
		tracker.misses++
		e.logger.WithFields(logrus.Fields{
			"tx":     hash.Hex(),
			"misses": tracker.misses,
		}).Debug("Transaction unknown to node")
		if tracker.misses >= droppedAfterMisses {
			return errors.Wrapf(commonerrors.ErrDroppedTransaction, "transaction %s unknown to node", hash.Hex())
		}
		return nil
	default:
		if ctx.Err() != nil {
			return ctx.Err()
		}
		e.logger.WithField("tx", hash.Hex()).WithError(err).Warn("Failed to get transaction by hash")
		return nil
	}
}
