package evm

import (
	"context"
	"time"

	"github.com/ClipFinance/testnet-bridge/common/types"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// SignAndSend signs the transaction with the account and broadcasts it.
// The signed payload is checked against the unsigned fields before it leaves the process.
//
// Parameters:
// - ctx: the context for managing the request.
// - tx: the unsigned transaction.
// - account: the signing account, which must be the transaction's sender.
//
// Returns:
// - *types.SubmissionHandle: the handle of the pending transaction.
// - error: an error if the client is not initialized, or if signing, validation or sending fails.
func (e *evm) SignAndSend(ctx context.Context, tx *types.UnsignedTransaction, account types.Account) (*types.SubmissionHandle, error) {
	if tx == nil || account == nil {
		return nil, errors.New("transaction and account are required")
	}
	if account.Address() != tx.From {
		return nil, errors.Errorf("account %s is not the transaction sender %s", account.Address().Hex(), tx.From.Hex())
	}

	client, err := e.getClient()
	if err != nil {
		return nil, err
	}

	signedTx, err := account.SignTx(tx.ToTransaction(), tx.ChainID)
	if err != nil {
		e.logger.WithError(err).Error("Failed to sign transaction")
		return nil, errors.Wrap(err, "failed to sign transaction")
	}

	if err := validateSignedTransaction(tx, signedTx); err != nil {
		return nil, errors.Wrap(err, "signed transaction validation failed")
	}

	if err = client.SendTransaction(ctx, signedTx); err != nil {
		e.logger.WithFields(logrus.Fields{
			"address": tx.From.Hex(),
			"nonce":   tx.Nonce,
		}).WithError(err).Error("Failed to send transaction")
		return nil, errors.Wrap(err, "failed to send transaction")
	}

	return &types.SubmissionHandle{
		Hash:        signedTx.Hash(),
		From:        tx.From,
		Nonce:       tx.Nonce,
		SubmittedAt: time.Now(),
	}, nil
}
