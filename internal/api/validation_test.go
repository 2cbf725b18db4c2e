package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intp(v int) *int { return &v }

func validRequest() SwapRequest {
	return SwapRequest{
		IntegratorID: "intg-01",
		ChainID:      1,
		SellToken:    usdc,
		BuyToken:     weth,
		SellAmount:   "100000000",
		Taker:        takr,
	}
}

func TestSwapRequest_Validate_OK(t *testing.T) {
	assert.NoError(t, validRequest().Validate())
}

func TestSwapRequest_Validate_FullFee_OK(t *testing.T) {
	r := validRequest()
	r.SwapFeeRecipient = "0x1111111111111111111111111111111111111111"
	r.SwapFeeBps = intp(100)
	r.SwapFeeToken = usdc
	assert.NoError(t, r.Validate())
}

func TestSwapRequest_Validate_FeeTokenCaseInsensitive(t *testing.T) {
	r := validRequest()
	r.SwapFeeRecipient = "0x1111111111111111111111111111111111111111"
	r.SwapFeeBps = intp(100)
	r.SwapFeeToken = "0xa0b86991c6218b36c1d19d4a2e9eb0ce3606eb48" // usdc, lowercased
	assert.NoError(t, r.Validate())
}

func TestSwapRequest_Validate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SwapRequest)
		want   string
	}{
		{"empty integrator", func(r *SwapRequest) { r.IntegratorID = " " }, "integratorId"},
		{"zero chain", func(r *SwapRequest) { r.ChainID = 0 }, "chainId"},
		{"bad sell token", func(r *SwapRequest) { r.SellToken = "0x123" }, "sellToken"},
		{"bad buy token", func(r *SwapRequest) { r.BuyToken = "weth" }, "buyToken"},
		{"same tokens", func(r *SwapRequest) { r.BuyToken = r.SellToken }, "must differ"},
		{"decimal amount", func(r *SwapRequest) { r.SellAmount = "1.5" }, "sellAmount"},
		{"negative amount", func(r *SwapRequest) { r.SellAmount = "-100" }, "sellAmount"},
		{"empty amount", func(r *SwapRequest) { r.SellAmount = "" }, "sellAmount"},
		{"bad taker", func(r *SwapRequest) { r.Taker = "taker" }, "taker"},
		{"fee bps alone", func(r *SwapRequest) { r.SwapFeeBps = intp(100) }, "together"},
		{"fee token alone", func(r *SwapRequest) { r.SwapFeeToken = usdc }, "together"},
		{"fee recipient alone", func(r *SwapRequest) { r.SwapFeeRecipient = takr }, "together"},
		{
			"fee token outside pair",
			func(r *SwapRequest) {
				r.SwapFeeRecipient = takr
				r.SwapFeeBps = intp(100)
				r.SwapFeeToken = "0x3333333333333333333333333333333333333333"
			},
			"swapFeeToken",
		},
		{
			"bad fee recipient",
			func(r *SwapRequest) {
				r.SwapFeeRecipient = "treasury"
				r.SwapFeeBps = intp(100)
				r.SwapFeeToken = usdc
			},
			"swapFeeRecipient",
		},
		{"bad surplus recipient", func(r *SwapRequest) { r.TradeSurplusRecipient = "me" }, "tradeSurplusRecipient"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRequest()
			tt.mutate(&r)
			err := r.Validate()
			assert.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestSettlementRequest_Validate(t *testing.T) {
	ok := SettlementRequest{QuoteID: "qt-001", SettledBuyAmount: "100"}
	assert.NoError(t, ok.Validate())

	missing := SettlementRequest{SettledBuyAmount: "100"}
	assert.Error(t, missing.Validate())

	badAmount := SettlementRequest{QuoteID: "qt-001", SettledBuyAmount: "1.5"}
	assert.Error(t, badAmount.Validate())
}

func TestFeePlanRequest_Validate(t *testing.T) {
	ok := FeePlanRequest{IntegratorID: "intg-01", MaxFeeBps: 1000}
	assert.NoError(t, ok.Validate())

	tooHigh := FeePlanRequest{IntegratorID: "intg-01", MaxFeeBps: 10001}
	assert.Error(t, tooHigh.Validate())

	missing := FeePlanRequest{MaxFeeBps: 100}
	assert.Error(t, missing.Validate())
}
