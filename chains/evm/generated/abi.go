package generated

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// QuoterABI is the ABI of the single-pool quoting contract.
const QuoterABI = `[
	{
		"inputs": [
			{"internalType": "address", "name": "tokenIn", "type": "address"},
			{"internalType": "address", "name": "tokenOut", "type": "address"},
			{"internalType": "uint24", "name": "fee", "type": "uint24"},
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint160", "name": "sqrtPriceLimitX96", "type": "uint160"}
		],
		"name": "quoteExactInputSingle",
		"outputs": [
			{"internalType": "uint256", "name": "amountOut", "type": "uint256"}
		],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// BridgeABI is the ABI of the swap-and-bridge contract.
const BridgeABI = `[
	{
		"inputs": [
			{"internalType": "uint256", "name": "amountIn", "type": "uint256"},
			{"internalType": "uint256", "name": "amountOutMin", "type": "uint256"},
			{"internalType": "uint16", "name": "dstChainId", "type": "uint16"},
			{"internalType": "address", "name": "to", "type": "address"},
			{"internalType": "address payable", "name": "refundAddress", "type": "address"},
			{"internalType": "address", "name": "zroPaymentAddress", "type": "address"},
			{"internalType": "bytes", "name": "adapterParams", "type": "bytes"}
		],
		"name": "swapAndBridge",
		"outputs": [],
		"stateMutability": "payable",
		"type": "function"
	}
]`

const (
	// QuoteMethod is the quoting method name.
	QuoteMethod = "quoteExactInputSingle"
	// BridgeMethod is the bridging method name.
	BridgeMethod = "swapAndBridge"
)

var (
	quoterABI = mustParseABI(QuoterABI)
	bridgeABI = mustParseABI(BridgeABI)
)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// BridgeCall holds the arguments of swapAndBridge.
type BridgeCall struct {
	AmountIn          *big.Int
	AmountOutMin      *big.Int
	DstChainID        uint16
	To                common.Address
	RefundAddress     common.Address
	ZroPaymentAddress common.Address
	AdapterParams     []byte
}

// PackQuote encodes a quoteExactInputSingle call with no price limit.
func PackQuote(tokenIn, tokenOut common.Address, fee uint32, amountIn *big.Int) ([]byte, error) {
	data, err := quoterABI.Pack(QuoteMethod, tokenIn, tokenOut, new(big.Int).SetUint64(uint64(fee)), amountIn, big.NewInt(0))
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack quote data")
	}
	return data, nil
}

// UnpackQuote decodes the output amount of a quoteExactInputSingle call.
func UnpackQuote(result []byte) (*big.Int, error) {
	if len(result) == 0 {
		return nil, errors.New("empty result from quote call")
	}

	out, err := quoterABI.Unpack(QuoteMethod, result)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unpack quote result")
	}
	if len(out) != 1 {
		return nil, errors.Errorf("unexpected quote result length %d", len(out))
	}

	amountOut, ok := out[0].(*big.Int)
	if !ok {
		return nil, errors.Errorf("unexpected quote result type %T", out[0])
	}
	return amountOut, nil
}

// PackBridge encodes a swapAndBridge call.
func PackBridge(call *BridgeCall) ([]byte, error) {
	adapterParams := call.AdapterParams
	if adapterParams == nil {
		adapterParams = []byte{}
	}

	data, err := bridgeABI.Pack(
		BridgeMethod,
		call.AmountIn,
		call.AmountOutMin,
		call.DstChainID,
		call.To,
		call.RefundAddress,
		call.ZroPaymentAddress,
		adapterParams,
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack bridge data")
	}
	return data, nil
}
