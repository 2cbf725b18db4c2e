package zeroex

import (
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

//
// ────────────────────────────────────────────────
//   Mapper – Converts between 0x and Canonical
// ────────────────────────────────────────────────
//

// Mapper translates between 0x wire payloads and the canonical domain models.
type Mapper struct{}

// NewMapper constructs a Mapper instance.
func NewMapper() *Mapper { return &Mapper{} }

//
// ────────────────────────────────────────────────
//   CANONICAL → 0x : Query Values
// ────────────────────────────────────────────────
//

// ToSwapQuery converts a canonical request to the 0x query-string contract.
// surplusRecipient is the already-resolved recipient; it is always forwarded
// so the venue never applies its own default.
func (m *Mapper) ToSwapQuery(r model.SwapQuoteRequest, surplusRecipient string) url.Values {
	q := url.Values{}
	q.Set(paramChainID, strconv.FormatInt(r.ChainID, 10))
	q.Set(paramSellToken, r.SellToken)
	q.Set(paramBuyToken, r.BuyToken)
	q.Set(paramSellAmount, r.SellAmount)
	q.Set(paramTaker, r.Taker)

	if r.SwapFeeBps != nil {
		q.Set(paramSwapFeeRecipient, r.SwapFeeRecipient)
		q.Set(paramSwapFeeBps, strconv.Itoa(*r.SwapFeeBps))
		q.Set(paramSwapFeeToken, r.SwapFeeToken)
	}
	if surplusRecipient != "" {
		q.Set(paramTradeSurplusRecipient, surplusRecipient)
	}
	return q
}

//
// ────────────────────────────────────────────────
//   0x → CANONICAL : Price / Quote Response
// ────────────────────────────────────────────────
//

// FromPriceResponse converts a 0x price response to a canonical SwapQuote.
// The canonical fee leg is supplied by the caller (the locally computed
// breakdown is authoritative for attribution).
func (m *Mapper) FromPriceResponse(resp *PriceResponse, req model.SwapQuoteRequest, feeLeg *model.IntegratorFee, surplusRecipient string) *model.SwapQuote {
	return &model.SwapQuote{
		ID:                 uuid.NewString(),
		IntegratorID:       req.IntegratorID,
		ChainID:            req.ChainID,
		SellToken:          req.SellToken,
		BuyToken:           req.BuyToken,
		SellAmount:         resp.SellAmount,
		BuyAmount:          resp.BuyAmount,
		MinBuyAmount:       resp.MinBuyAmount,
		Price:              effectivePrice(resp.BuyAmount, resp.SellAmount),
		IntegratorFee:      feeLeg,
		SurplusRecipient:   surplusRecipient,
		LiquidityAvailable: resp.LiquidityAvailable,
		Status:             "CREATED",
		Venue:              "ZEROEX",
		Timestamp:          time.Now().UTC(),
	}
}

// FromQuoteResponse converts a 0x firm quote response to a canonical
// SwapQuote. Firm quotes carry a settlement transaction and a short validity
// window; the venue does not return an explicit expiry, so the adapter
// stamps one.
func (m *Mapper) FromQuoteResponse(resp *QuoteResponse, req model.SwapQuoteRequest, feeLeg *model.IntegratorFee, surplusRecipient string, validity time.Duration) *model.SwapQuote {
	quote := m.FromPriceResponse(&resp.PriceResponse, req, feeLeg, surplusRecipient)
	quote.ExpiresAt = quote.Timestamp.Add(validity)
	return quote
}

// ToQuoteRecord projects a canonical quote into its persisted form.
func (m *Mapper) ToQuoteRecord(q *model.SwapQuote, req model.SwapQuoteRequest) model.QuoteRecord {
	rec := model.QuoteRecord{
		QuoteID:          q.ID,
		IntegratorID:     q.IntegratorID,
		ChainID:          q.ChainID,
		SellToken:        q.SellToken,
		BuyToken:         q.BuyToken,
		SellAmount:       q.SellAmount,
		BuyAmount:        q.BuyAmount,
		SurplusRecipient: q.SurplusRecipient,
		Taker:            req.Taker,
		Status:           q.Status,
		CreatedAt:        q.Timestamp,
	}
	if q.IntegratorFee != nil {
		rec.FeeAmount = q.IntegratorFee.Amount
		rec.FeeToken = q.IntegratorFee.Token
		rec.FeeBps = q.IntegratorFee.Bps
		rec.FeeRecipient = req.SwapFeeRecipient
	}
	return rec
}

// effectivePrice computes buy-per-sell in base-unit terms. Returns zero when
// either side is missing or zero to avoid division by zero on
// liquidityAvailable=false responses.
func effectivePrice(buyAmount, sellAmount string) decimal.Decimal {
	buy, err := decimal.NewFromString(buyAmount)
	if err != nil {
		return decimal.Zero
	}
	sell, err := decimal.NewFromString(sellAmount)
	if err != nil || sell.IsZero() {
		return decimal.Zero
	}
	return buy.DivRound(sell, 18)
}

//
// ────────────────────────────────────────────────
//   API Response Mappers
// ────────────────────────────────────────────────
//

// ToAPIQuoteResponse formats a canonical SwapQuote for API response.
func (m *Mapper) ToAPIQuoteResponse(q *model.SwapQuote) map[string]any {
	out := map[string]any{
		"quote_id":            q.ID,
		"chain_id":            q.ChainID,
		"sell_token":          q.SellToken,
		"buy_token":           q.BuyToken,
		"sell_amount":         q.SellAmount,
		"buy_amount":          q.BuyAmount,
		"min_buy_amount":      q.MinBuyAmount,
		"price":               q.Price,
		"surplus_recipient":   q.SurplusRecipient,
		"liquidity_available": q.LiquidityAvailable,
		"status":              q.Status,
		"venue":               q.Venue,
		"timestamp":           q.Timestamp,
	}
	if q.IntegratorFee != nil {
		out["fees"] = map[string]any{
			"integratorFee": map[string]any{
				"amount": q.IntegratorFee.Amount,
				"token":  q.IntegratorFee.Token,
				"type":   q.IntegratorFee.Type,
			},
		}
	}
	if !q.ExpiresAt.IsZero() {
		out["expires_at"] = q.ExpiresAt
	}
	return out
}
