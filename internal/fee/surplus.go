package fee

import (
	"math/big"
	"strings"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// ResolveSurplusRecipient selects where positive slippage routes. The
// requested recipient wins only when present and the plan authorizes custom
// routing; otherwise all surplus goes to the taker. This is a pure selection
// rule with no failure path.
func ResolveSurplusRecipient(tradeSurplusRecipient, taker string, plan model.FeePlan) string {
	r := strings.TrimSpace(tradeSurplusRecipient)
	if r == "" || !plan.SurplusRouting {
		return taker
	}
	return r
}

// RealizedSurplus returns settled - quoted when the settlement came in above
// the quote, else zero. Both amounts are base units of the buy token.
func RealizedSurplus(quotedBuyAmount, settledBuyAmount *big.Int) *big.Int {
	diff := new(big.Int).Sub(settledBuyAmount, quotedBuyAmount)
	if diff.Sign() < 0 {
		return big.NewInt(0)
	}
	return diff
}
