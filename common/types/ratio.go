package types

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	// DefaultSlippage keeps 94% of the quoted output as the minimum accepted output.
	DefaultSlippage = Ratio{Numerator: 94, Denominator: 100}
	// DefaultValueBuffer inflates the transmitted value by 20% to cover protocol fees.
	DefaultValueBuffer = Ratio{Numerator: 120, Denominator: 100}
)

// Ratio is an integer fraction applied to token amounts with floor rounding.
type Ratio struct {
	Numerator   uint64
	Denominator uint64
}

// Apply returns floor(x * Numerator / Denominator) as a new value.
func (r Ratio) Apply(x *big.Int) *big.Int {
	out := new(big.Int).Mul(x, new(big.Int).SetUint64(r.Numerator))
	return out.Div(out, new(big.Int).SetUint64(r.Denominator))
}

// String returns the ratio as "numerator/denominator".
func (r Ratio) String() string {
	return fmt.Sprintf("%d/%d", r.Numerator, r.Denominator)
}

// ValidateFraction checks that the ratio lies in (0, 1].
func (r Ratio) ValidateFraction() error {
	if r.Denominator == 0 {
		return errors.New("ratio denominator is zero")
	}
	if r.Numerator == 0 || r.Numerator > r.Denominator {
		return errors.Errorf("ratio %s is not in (0, 1]", r)
	}
	return nil
}

// ValidateMultiplier checks that the ratio is at least 1.
func (r Ratio) ValidateMultiplier() error {
	if r.Denominator == 0 {
		return errors.New("ratio denominator is zero")
	}
	if r.Numerator < r.Denominator {
		return errors.Errorf("ratio %s is below 1", r)
	}
	return nil
}

// ParseRatio parses "numerator/denominator".
func ParseRatio(s string) (Ratio, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 2 {
		return Ratio{}, errors.Errorf("invalid ratio %q, expected numerator/denominator", s)
	}

	num, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return Ratio{}, errors.Wrapf(err, "invalid ratio numerator %q", parts[0])
	}
	den, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return Ratio{}, errors.Wrapf(err, "invalid ratio denominator %q", parts[1])
	}
	if den == 0 {
		return Ratio{}, errors.Errorf("invalid ratio %q: zero denominator", s)
	}

	return Ratio{Numerator: num, Denominator: den}, nil
}
