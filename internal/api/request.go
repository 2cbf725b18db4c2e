package api

import "time"

// SwapRequest is the payload for indicative price and firm quote requests.
// Amounts are decimal strings in the token's base units. The fee fields are
// optional but all-or-none: a request that monetizes must carry recipient,
// bps, and token together.
type SwapRequest struct {
	IntegratorID          string `json:"integratorId" example:"intg-demo-01"`
	ChainID               int64  `json:"chainId" example:"1"`
	SellToken             string `json:"sellToken" example:"0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"`
	BuyToken              string `json:"buyToken" example:"0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"`
	SellAmount            string `json:"sellAmount" example:"100000000"`
	Taker                 string `json:"taker" example:"0x70997970C51812dc3A010C7d01b50e0d17dc79C8"`
	SwapFeeRecipient      string `json:"swapFeeRecipient,omitempty"`
	SwapFeeBps            *int   `json:"swapFeeBps,omitempty" example:"100"`
	SwapFeeToken          string `json:"swapFeeToken,omitempty"`
	TradeSurplusRecipient string `json:"tradeSurplusRecipient,omitempty"`
}

// SettlementRequest reports an on-chain fill of a previously served quote.
type SettlementRequest struct {
	QuoteID          string    `json:"quoteId"`
	TxHash           string    `json:"txHash"`
	SettledBuyAmount string    `json:"settledBuyAmount"`
	SettledAt        time.Time `json:"settledAt,omitempty"`
}

// FeePlanRequest creates or updates an integrator's monetization plan.
type FeePlanRequest struct {
	IntegratorID   string `json:"integratorId"`
	MaxFeeBps      int    `json:"maxFeeBps"`
	CustomCap      bool   `json:"customCap"`
	SurplusRouting bool   `json:"surplusRouting"`
}
