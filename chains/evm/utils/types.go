package utils

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"
)

// EtherDecimals is the number of decimals of the native token.
const EtherDecimals = 18

// ParseUnits converts a decimal string such as "0.0001" into base units with the given decimals.
// Fractions finer than the unit are rejected rather than rounded.
func ParseUnits(amount string, decimals int) (*big.Int, error) {
	amount = strings.TrimSpace(amount)
	if amount == "" {
		return nil, errors.New("empty amount")
	}
	if strings.HasPrefix(amount, "-") {
		return nil, errors.Errorf("negative amount %q", amount)
	}

	whole, frac, _ := strings.Cut(amount, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return nil, errors.Errorf("amount %q has more than %d decimals", amount, decimals)
	}
	frac += strings.Repeat("0", decimals-len(frac))

	value, ok := new(big.Int).SetString(whole+frac, 10)
	if !ok {
		return nil, errors.Errorf("invalid amount %q", amount)
	}
	return value, nil
}

// ParseEther converts an ether amount into wei.
func ParseEther(amount string) (*big.Int, error) {
	return ParseUnits(amount, EtherDecimals)
}

// FormatUnits renders base units as a decimal string without trailing zeros.
func FormatUnits(value *big.Int, decimals int) string {
	if value == nil {
		return "0"
	}

	sign := ""
	abs := new(big.Int).Set(value)
	if abs.Sign() < 0 {
		sign = "-"
		abs.Neg(abs)
	}

	digits := abs.String()
	if len(digits) <= decimals {
		digits = strings.Repeat("0", decimals-len(digits)+1) + digits
	}

	whole := digits[:len(digits)-decimals]
	frac := strings.TrimRight(digits[len(digits)-decimals:], "0")
	if frac == "" {
		return sign + whole
	}
	return sign + whole + "." + frac
}

// FormatEther renders wei as ether.
func FormatEther(wei *big.Int) string {
	return FormatUnits(wei, EtherDecimals)
}

// GweiToWei converts a whole gwei amount to wei.
func GweiToWei(gwei uint64) *big.Int {
	return new(big.Int).Mul(new(big.Int).SetUint64(gwei), big.NewInt(params.GWei))
}
