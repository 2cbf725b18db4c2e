package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

// FeeLeg is the integrator-fee portion of a quote response.
type FeeLeg struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
	Type   string `json:"type"`
	Bps    int    `json:"bps,omitempty"`
}

// QuoteResponse is the API projection of a served price or quote.
type QuoteResponse struct {
	QuoteID            string          `json:"quoteId"`
	ChainID            int64           `json:"chainId"`
	SellToken          string          `json:"sellToken"`
	BuyToken           string          `json:"buyToken"`
	SellAmount         string          `json:"sellAmount"`
	BuyAmount          string          `json:"buyAmount"`
	MinBuyAmount       string          `json:"minBuyAmount,omitempty"`
	Price              decimal.Decimal `json:"price"`
	IntegratorFee      *FeeLeg         `json:"integratorFee,omitempty"`
	SurplusRecipient   string          `json:"surplusRecipient"`
	LiquidityAvailable bool            `json:"liquidityAvailable"`
	ExpiresAt          *time.Time      `json:"expiresAt,omitempty"`
	Status             string          `json:"status"`
	Venue              string          `json:"venue"`
	ErrorMsg           string          `json:"error,omitempty"`
}

// SettlementResponse reports the outcome of settlement reconciliation.
type SettlementResponse struct {
	QuoteID          string    `json:"quoteId"`
	IntegratorID     string    `json:"integratorId"`
	SurplusAmount    string    `json:"surplusAmount"`
	SurplusToken     string    `json:"surplusToken"`
	SurplusRecipient string    `json:"surplusRecipient"`
	Status           string    `json:"status"`
	SettledAt        time.Time `json:"settledAt"`
	ErrorMsg         string    `json:"error,omitempty"`
}

// toQuoteResponse projects a canonical SwapQuote into its API shape.
func toQuoteResponse(q *model.SwapQuote) QuoteResponse {
	resp := QuoteResponse{
		QuoteID:            q.ID,
		ChainID:            q.ChainID,
		SellToken:          q.SellToken,
		BuyToken:           q.BuyToken,
		SellAmount:         q.SellAmount,
		BuyAmount:          q.BuyAmount,
		MinBuyAmount:       q.MinBuyAmount,
		Price:              q.Price,
		SurplusRecipient:   q.SurplusRecipient,
		LiquidityAvailable: q.LiquidityAvailable,
		Status:             q.Status,
		Venue:              q.Venue,
	}
	if q.IntegratorFee != nil {
		resp.IntegratorFee = &FeeLeg{
			Amount: q.IntegratorFee.Amount,
			Token:  q.IntegratorFee.Token,
			Type:   q.IntegratorFee.Type,
			Bps:    q.IntegratorFee.Bps,
		}
	}
	if !q.ExpiresAt.IsZero() {
		t := q.ExpiresAt
		resp.ExpiresAt = &t
	}
	return resp
}
