package fee

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// DefaultCapBps is the default policy cap on swap_fee_bps (10%).
// Plans with a custom cap override may exceed it.
const DefaultCapBps = 1000

// bpsDenominator converts basis points to a fraction (1 bps = 1/10000).
var bpsDenominator = big.NewInt(10000)

// ErrInvalidParameter is returned when a fee parameter violates its
// documented range. It is the only error kind this package produces;
// everything else (network, auth, chain availability) belongs to the
// venue client and is surfaced unmodified.
var ErrInvalidParameter = errors.New("invalid parameter")

// Side identifies which leg of the trade a fee token designates.
type Side string

const (
	SideSell Side = "sell"
	SideBuy  Side = "buy"
)

// ComputeAffiliateFee returns floor(swapFeeBps * amount / 10000) in the fee
// token's base units. amount is the trade size on the side the fee token
// designates. capBps is the plan cap; pass DefaultCapBps unless the
// integrator carries a custom cap override.
func ComputeAffiliateFee(amount *big.Int, swapFeeBps, capBps int) (*big.Int, error) {
	if amount == nil || amount.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount must be >= 0", ErrInvalidParameter)
	}
	if swapFeeBps < 0 {
		return nil, fmt.Errorf("%w: swapFeeBps must be >= 0, got %d", ErrInvalidParameter, swapFeeBps)
	}
	if swapFeeBps > capBps {
		return nil, fmt.Errorf("%w: swapFeeBps %d exceeds cap %d", ErrInvalidParameter, swapFeeBps, capBps)
	}

	out := new(big.Int).Mul(amount, big.NewInt(int64(swapFeeBps)))
	return out.Quo(out, bpsDenominator), nil
}

// FeeSide returns which trade leg swapFeeToken designates. The fee token
// must equal either the sell token or the buy token; anything else is an
// invalid parameter. Comparison is case-insensitive since token addresses
// arrive in mixed checksum casings.
func FeeSide(swapFeeToken, sellToken, buyToken string) (Side, error) {
	switch {
	case strings.EqualFold(swapFeeToken, sellToken):
		return SideSell, nil
	case strings.EqualFold(swapFeeToken, buyToken):
		return SideBuy, nil
	default:
		return "", fmt.Errorf("%w: swapFeeToken %q must equal sellToken or buyToken", ErrInvalidParameter, swapFeeToken)
	}
}

// ParseAmount parses a base-unit token amount from its decimal string form.
// Negative and non-numeric inputs are invalid parameters.
func ParseAmount(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("%w: amount %q is not a base-10 integer", ErrInvalidParameter, s)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("%w: amount %q must be >= 0", ErrInvalidParameter, s)
	}
	return v, nil
}
