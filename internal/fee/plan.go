package fee

import (
	"fmt"
	"math/big"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// DefaultPlan returns the policy applied to integrators with no stored plan:
// the default bps cap and surplus routing enabled.
func DefaultPlan(integratorID string) model.FeePlan {
	return model.FeePlan{
		IntegratorID:   integratorID,
		MaxFeeBps:      DefaultCapBps,
		SurplusRouting: true,
	}
}

// EffectiveCap returns the bps cap for a plan. Only plans flagged with a
// custom cap may raise it above the default; a stored plan without the flag
// can still lower it.
func EffectiveCap(p model.FeePlan) int {
	if p.MaxFeeBps <= 0 {
		return DefaultCapBps
	}
	if p.MaxFeeBps > DefaultCapBps && !p.CustomCap {
		return DefaultCapBps
	}
	return p.MaxFeeBps
}

// ValidateParams checks a request's fee parameters against a plan without
// computing amounts. This runs before any upstream call so an out-of-range
// swap_fee_bps never reaches the venue.
func ValidateParams(req model.SwapQuoteRequest, plan model.FeePlan) error {
	if req.SwapFeeBps == nil {
		return nil
	}
	if _, err := FeeSide(req.SwapFeeToken, req.SellToken, req.BuyToken); err != nil {
		return err
	}
	capBps := EffectiveCap(plan)
	if *req.SwapFeeBps < 0 || *req.SwapFeeBps > capBps {
		return fmt.Errorf("%w: swapFeeBps %d out of range [0,%d]", ErrInvalidParameter, *req.SwapFeeBps, capBps)
	}
	return nil
}

// Breakdown computes the integrator fee leg for a validated request under a
// plan. sellAmount and buyAmount are base units of their respective tokens;
// buyAmount may be nil for indicative requests where the fee is sell-side.
// Requests without fee parameters yield a nil fee.
func Breakdown(req model.SwapQuoteRequest, sellAmount, buyAmount *big.Int, plan model.FeePlan) (*model.IntegratorFee, error) {
	if req.SwapFeeBps == nil {
		return nil, nil
	}

	side, err := FeeSide(req.SwapFeeToken, req.SellToken, req.BuyToken)
	if err != nil {
		return nil, err
	}

	base := sellAmount
	if side == SideBuy {
		base = buyAmount
	}

	amount, err := ComputeAffiliateFee(base, *req.SwapFeeBps, EffectiveCap(plan))
	if err != nil {
		return nil, err
	}

	return &model.IntegratorFee{
		Amount: amount.String(),
		Token:  req.SwapFeeToken,
		Type:   model.FeeTypeVolume,
		Bps:    *req.SwapFeeBps,
	}, nil
}
