package evm

import (
	"bytes"
	"math/big"

	"github.com/ClipFinance/testnet-bridge/common/types"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
)

// validateSignedTransaction checks that signing kept every field of the unsigned transaction
// and that the signature recovers to the declared sender.
func validateSignedTransaction(unsigned *types.UnsignedTransaction, signed *ethtypes.Transaction) error {
	if signed.Type() != ethtypes.DynamicFeeTxType {
		return errors.Errorf("unexpected transaction type %d", signed.Type())
	}

	if signed.To() == nil || *signed.To() != unsigned.To {
		return errors.New("recipient mismatch")
	}

	if !equalBig(signed.Value(), unsigned.Value) {
		return errors.New("value mismatch")
	}

	if signed.Nonce() != unsigned.Nonce {
		return errors.New("nonce mismatch")
	}

	if !equalBig(signed.ChainId(), unsigned.ChainID) {
		return errors.New("chain ID mismatch")
	}

	if !bytes.Equal(signed.Data(), unsigned.Data) {
		return errors.New("data mismatch")
	}

	if signed.Gas() != unsigned.GasLimit {
		return errors.New("gas limit mismatch")
	}

	if !equalBig(signed.GasTipCap(), unsigned.MaxPriorityFeePerGas) || !equalBig(signed.GasFeeCap(), unsigned.MaxFeePerGas) {
		return errors.New("gas price mismatch")
	}

	sender, err := ethtypes.Sender(ethtypes.LatestSignerForChainID(unsigned.ChainID), signed)
	if err != nil {
		return errors.Wrap(err, "failed to get transaction sender")
	}

	if sender != unsigned.From {
		return errors.New("sender address mismatch")
	}

	return nil
}

func equalBig(a, b *big.Int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Cmp(b) == 0
}
