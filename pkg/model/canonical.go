package model

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Envelope is the canonical event/command envelope.
// All messages published to or consumed from NATS must follow this format.
type Envelope struct {
	ID            uuid.UUID       `json:"id"`
	CorrelationID uuid.UUID       `json:"correlation_id"`
	TenantID      string          `json:"tenant_id"`
	IntegratorID  string          `json:"integrator_id"`
	Topic         string          `json:"topic"`
	EventType     string          `json:"event_type"`
	Version       string          `json:"version"`
	Timestamp     time.Time       `json:"timestamp"`
	Payload       json.RawMessage `json:"payload"`
	Context       Context         `json:"context,omitempty"`
}

type Context struct {
	ChainID    int64  `json:"chain_id,omitempty"`
	SellToken  string `json:"sell_token,omitempty"`
	BuyToken   string `json:"buy_token,omitempty"`
	SellAmount string `json:"sell_amount,omitempty"`
	Original   string `json:"original,omitempty"`
}

// SwapQuoteRequest is the canonical request for an indicative price or a firm
// quote. Token amounts are decimal strings in the token's base units, as they
// travel on the 0x wire contract; fee fields are optional and all-or-none.
type SwapQuoteRequest struct {
	// Identifiers
	IntegratorID string `json:"integrator_id"`
	RequestID    string `json:"request_id,omitempty"`

	// Trade parameters
	ChainID    int64  `json:"chain_id"`
	SellToken  string `json:"sell_token"`
	BuyToken   string `json:"buy_token"`
	SellAmount string `json:"sell_amount"` // base units
	Taker      string `json:"taker"`

	// Monetization (optional)
	SwapFeeRecipient      string `json:"swap_fee_recipient,omitempty"`
	SwapFeeBps            *int   `json:"swap_fee_bps,omitempty"`
	SwapFeeToken          string `json:"swap_fee_token,omitempty"` // must equal sell_token or buy_token
	TradeSurplusRecipient string `json:"trade_surplus_recipient,omitempty"`

	// Meta
	RequestTime   time.Time `json:"request_time,omitempty"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// IntegratorFee is the affiliate-fee leg of a quote.
// Amount is in base units of Token. Type is currently always "volume".
type IntegratorFee struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
	Type   string `json:"type"`
	Bps    int    `json:"bps,omitempty"`
}

// FeeTypeVolume is the only fee type the venue currently settles.
const FeeTypeVolume = "volume"

// SwapQuote is the canonical quote produced by the adapter.
type SwapQuote struct {
	ID           string `json:"id"`
	TenantID     string `json:"tenant_id,omitempty"`
	IntegratorID string `json:"integrator_id"`

	ChainID      int64  `json:"chain_id"`
	SellToken    string `json:"sell_token"`
	BuyToken     string `json:"buy_token"`
	SellAmount   string `json:"sell_amount"`
	BuyAmount    string `json:"buy_amount"`
	MinBuyAmount string `json:"min_buy_amount,omitempty"`

	// Price is buy-per-sell in base-unit terms (buyAmount / sellAmount).
	Price decimal.Decimal `json:"price"`

	IntegratorFee    *IntegratorFee `json:"integrator_fee,omitempty"`
	SurplusRecipient string         `json:"surplus_recipient"`

	LiquidityAvailable bool      `json:"liquidity_available"`
	ExpiresAt          time.Time `json:"expires_at,omitempty"`
	Status             string    `json:"status"` // CREATED | EXPIRED | SETTLED | REJECTED
	Venue              string    `json:"venue"`
	Timestamp          time.Time `json:"timestamp"`
}

// FeePlan is the per-integrator monetization policy. MaxFeeBps caps
// swap_fee_bps; plans without a custom cap use the default 1000.
// SurplusRouting gates whether trade_surplus_recipient may override the taker.
type FeePlan struct {
	IntegratorID   string    `json:"integrator_id"`
	MaxFeeBps      int       `json:"max_fee_bps"`
	CustomCap      bool      `json:"custom_cap"`
	SurplusRouting bool      `json:"surplus_routing"`
	UpdatedAt      time.Time `json:"updated_at,omitempty"`
}

// QuoteRecord is the persisted projection of a served quote, used for
// settlement reconciliation and fee attribution.
type QuoteRecord struct {
	QuoteID          string    `json:"quote_id"`
	IntegratorID     string    `json:"integrator_id"`
	ChainID          int64     `json:"chain_id"`
	SellToken        string    `json:"sell_token"`
	BuyToken         string    `json:"buy_token"`
	SellAmount       string    `json:"sell_amount"`
	BuyAmount        string    `json:"buy_amount"`
	FeeAmount        string    `json:"fee_amount,omitempty"`
	FeeToken         string    `json:"fee_token,omitempty"`
	FeeBps           int       `json:"fee_bps,omitempty"`
	FeeRecipient     string    `json:"fee_recipient,omitempty"`
	SurplusRecipient string    `json:"surplus_recipient"`
	Taker            string    `json:"taker"`
	Status           string    `json:"status"`
	CreatedAt        time.Time `json:"created_at"`
}

// SettlementReport is a fill report posted back to the adapter once a quoted
// swap lands on chain. SettledBuyAmount is base units of the buy token.
type SettlementReport struct {
	QuoteID          string    `json:"quote_id"`
	TxHash           string    `json:"tx_hash"`
	SettledBuyAmount string    `json:"settled_buy_amount"`
	SettledAt        time.Time `json:"settled_at"`
}

// TradeSurplus is the realized positive slippage of a settled swap,
// attributed to the recipient resolved at quote time.
type TradeSurplus struct {
	QuoteID          string    `json:"quote_id"`
	IntegratorID     string    `json:"integrator_id"`
	Recipient        string    `json:"recipient"`
	QuotedBuyAmount  string    `json:"quoted_buy_amount"`
	SettledBuyAmount string    `json:"settled_buy_amount"`
	SurplusAmount    string    `json:"surplus_amount"`
	Token            string    `json:"token"`
	TxHash           string    `json:"tx_hash,omitempty"`
	SettledAt        time.Time `json:"settled_at"`
}
