package zeroex

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

const (
	usdc = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	weth = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
	takr = "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
)

func intp(v int) *int { return &v }

func baseRequest() model.SwapQuoteRequest {
	return model.SwapQuoteRequest{
		IntegratorID: "intg-01",
		ChainID:      1,
		SellToken:    usdc,
		BuyToken:     weth,
		SellAmount:   "100000000",
		Taker:        takr,
	}
}

// --- ToSwapQuery ---

func TestToSwapQuery_BaseParams(t *testing.T) {
	m := NewMapper()
	q := m.ToSwapQuery(baseRequest(), takr)

	assert.Equal(t, "1", q.Get(paramChainID))
	assert.Equal(t, usdc, q.Get(paramSellToken))
	assert.Equal(t, weth, q.Get(paramBuyToken))
	assert.Equal(t, "100000000", q.Get(paramSellAmount))
	assert.Equal(t, takr, q.Get(paramTaker))
	assert.Equal(t, takr, q.Get(paramTradeSurplusRecipient))

	// No fee requested, no fee params on the wire
	assert.Empty(t, q.Get(paramSwapFeeBps))
	assert.Empty(t, q.Get(paramSwapFeeRecipient))
	assert.Empty(t, q.Get(paramSwapFeeToken))
}

func TestToSwapQuery_WithFeeParams(t *testing.T) {
	req := baseRequest()
	req.SwapFeeBps = intp(100)
	req.SwapFeeToken = usdc
	req.SwapFeeRecipient = "0x1111111111111111111111111111111111111111"

	q := NewMapper().ToSwapQuery(req, takr)

	assert.Equal(t, "100", q.Get(paramSwapFeeBps))
	assert.Equal(t, usdc, q.Get(paramSwapFeeToken))
	assert.Equal(t, "0x1111111111111111111111111111111111111111", q.Get(paramSwapFeeRecipient))
}

func TestToSwapQuery_EmptySurplusRecipientOmitted(t *testing.T) {
	q := NewMapper().ToSwapQuery(baseRequest(), "")
	_, present := q[paramTradeSurplusRecipient]
	assert.False(t, present)
}

// --- FromPriceResponse / FromQuoteResponse ---

func TestFromPriceResponse(t *testing.T) {
	resp := &PriceResponse{
		LiquidityAvailable: true,
		SellAmount:         "100000000",
		BuyAmount:          "40000000000000000",
		MinBuyAmount:       "39800000000000000",
	}
	feeLeg := &model.IntegratorFee{Amount: "1000000", Token: usdc, Type: model.FeeTypeVolume, Bps: 100}

	quote := NewMapper().FromPriceResponse(resp, baseRequest(), feeLeg, takr)

	require.NotEmpty(t, quote.ID)
	assert.Equal(t, "intg-01", quote.IntegratorID)
	assert.Equal(t, "40000000000000000", quote.BuyAmount)
	assert.Equal(t, "39800000000000000", quote.MinBuyAmount)
	assert.Equal(t, takr, quote.SurplusRecipient)
	assert.Equal(t, "CREATED", quote.Status)
	assert.Equal(t, "ZEROEX", quote.Venue)
	assert.True(t, quote.LiquidityAvailable)
	require.NotNil(t, quote.IntegratorFee)
	assert.Equal(t, "1000000", quote.IntegratorFee.Amount)
	assert.True(t, quote.ExpiresAt.IsZero(), "indicative prices carry no expiry")

	// price = buy / sell in base-unit terms
	assert.Equal(t, "400000000", quote.Price.String())
}

func TestFromPriceResponse_NoLiquidity(t *testing.T) {
	resp := &PriceResponse{LiquidityAvailable: false}

	quote := NewMapper().FromPriceResponse(resp, baseRequest(), nil, takr)

	assert.False(t, quote.LiquidityAvailable)
	assert.True(t, quote.Price.IsZero())
	assert.Nil(t, quote.IntegratorFee)
}

func TestFromQuoteResponse_StampsExpiry(t *testing.T) {
	resp := &QuoteResponse{
		PriceResponse: PriceResponse{
			LiquidityAvailable: true,
			SellAmount:         "100000000",
			BuyAmount:          "40000000000000000",
		},
		Transaction: &QuoteTransaction{To: "0x2222222222222222222222222222222222222222", Data: "0xabcdef"},
	}

	quote := NewMapper().FromQuoteResponse(resp, baseRequest(), nil, takr, 30*time.Second)

	assert.False(t, quote.ExpiresAt.IsZero())
	assert.Equal(t, quote.Timestamp.Add(30*time.Second), quote.ExpiresAt)
}

// --- ToQuoteRecord ---

func TestToQuoteRecord(t *testing.T) {
	req := baseRequest()
	req.SwapFeeBps = intp(100)
	req.SwapFeeToken = usdc
	req.SwapFeeRecipient = "0x1111111111111111111111111111111111111111"

	quote := &model.SwapQuote{
		ID:               "qt-001",
		IntegratorID:     "intg-01",
		ChainID:          1,
		SellToken:        usdc,
		BuyToken:         weth,
		SellAmount:       "100000000",
		BuyAmount:        "40000000000000000",
		SurplusRecipient: takr,
		Status:           "CREATED",
		Timestamp:        time.Now().UTC(),
		IntegratorFee: &model.IntegratorFee{
			Amount: "1000000",
			Token:  usdc,
			Type:   model.FeeTypeVolume,
			Bps:    100,
		},
	}

	rec := NewMapper().ToQuoteRecord(quote, req)

	assert.Equal(t, "qt-001", rec.QuoteID)
	assert.Equal(t, takr, rec.Taker)
	assert.Equal(t, "1000000", rec.FeeAmount)
	assert.Equal(t, usdc, rec.FeeToken)
	assert.Equal(t, 100, rec.FeeBps)
	assert.Equal(t, "0x1111111111111111111111111111111111111111", rec.FeeRecipient)
}

func TestToQuoteRecord_NoFee(t *testing.T) {
	quote := &model.SwapQuote{ID: "qt-002", Status: "CREATED"}

	rec := NewMapper().ToQuoteRecord(quote, baseRequest())

	assert.Empty(t, rec.FeeAmount)
	assert.Zero(t, rec.FeeBps)
}

// --- effectivePrice ---

func TestEffectivePrice(t *testing.T) {
	tests := []struct {
		name string
		buy  string
		sell string
		want string
	}{
		{"normal", "40000000000000000", "100000000", "400000000"},
		{"zero sell", "1000", "0", "0"},
		{"empty buy", "", "100", "0"},
		{"empty sell", "100", "", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, effectivePrice(tt.buy, tt.sell).String())
		})
	}
}

// --- ToAPIQuoteResponse ---

func TestToAPIQuoteResponse_WithFee(t *testing.T) {
	quote := &model.SwapQuote{
		ID:         "qt-001",
		SellAmount: "100000000",
		BuyAmount:  "40000000000000000",
		Status:     "CREATED",
		Venue:      "ZEROEX",
		IntegratorFee: &model.IntegratorFee{
			Amount: "1000000",
			Token:  usdc,
			Type:   model.FeeTypeVolume,
		},
	}

	out := NewMapper().ToAPIQuoteResponse(quote)

	fees, ok := out["fees"].(map[string]any)
	require.True(t, ok)
	integratorFee, ok := fees["integratorFee"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "1000000", integratorFee["amount"])
	assert.Equal(t, usdc, integratorFee["token"])
	assert.Equal(t, "volume", integratorFee["type"])
}

func TestToAPIQuoteResponse_NoFee(t *testing.T) {
	out := NewMapper().ToAPIQuoteResponse(&model.SwapQuote{ID: "qt-002"})
	_, present := out["fees"]
	assert.False(t, present)
	_, present = out["expires_at"]
	assert.False(t, present)
}
