package zeroex

import "context"

//
// ────────────────────────────────────────────────
//   Integrator Configuration (per-client, from AWS SM)
// ────────────────────────────────────────────────
//

// IntegratorConfig holds per-integrator 0x API configuration resolved from
// AWS Secrets Manager.
// Secret format: {"api_key": "...", "base_url": "https://api.0x.org", "version": "v2"}
type IntegratorConfig struct {
	BaseURL string // 0x API base URL
	APIKey  string // key for the 0x-api-key header
	Version string // value for the 0x-version header, currently "v2"
}

// rateLimitKey isolates rate limits per integrator key, derived from the
// base URL so each 0x endpoint gets its own bucket.
func (c *IntegratorConfig) rateLimitKey() string {
	return "zeroex_api:" + c.BaseURL + ":" + c.APIKey
}

// ConfigResolver resolves per-integrator 0x configuration.
type ConfigResolver interface {
	// Resolve fetches the IntegratorConfig for a given integrator ID, using cache when available.
	Resolve(ctx context.Context, integratorID string) (*IntegratorConfig, error)

	// DiscoverIntegrators lists all integrator IDs that have 0x secrets configured.
	DiscoverIntegrators(ctx context.Context) ([]string, error)
}

//
// ────────────────────────────────────────────────
//   CANONICAL → 0x  : Price / Quote Query
// ────────────────────────────────────────────────
//

// Query parameter names of the 0x Swap API. The adapter forwards the
// canonical request on this contract verbatim; fee and surplus parameters
// are validated locally first.
const (
	paramChainID               = "chainId"
	paramSellToken             = "sellToken"
	paramBuyToken              = "buyToken"
	paramSellAmount            = "sellAmount"
	paramTaker                 = "taker"
	paramSwapFeeRecipient      = "swapFeeRecipient"
	paramSwapFeeBps            = "swapFeeBps"
	paramSwapFeeToken          = "swapFeeToken"
	paramTradeSurplusRecipient = "tradeSurplusRecipient"
)

//
// ────────────────────────────────────────────────
//   0x → CANONICAL : Price / Quote Response
// ────────────────────────────────────────────────
//

// WireFee is a single fee leg as returned in the 0x fees object.
// Amount is a base-unit decimal string.
type WireFee struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
	Type   string `json:"type"` // "volume" | "gas"
}

// WireFees is the fee breakdown of a 0x price/quote response.
type WireFees struct {
	IntegratorFee *WireFee `json:"integratorFee"`
	ZeroExFee     *WireFee `json:"zeroExFee"`
	GasFee        *WireFee `json:"gasFee"`
}

// BalanceIssue reports an insufficient taker balance.
type BalanceIssue struct {
	Token    string `json:"token"`
	Actual   string `json:"actual"`
	Expected string `json:"expected"`
}

// AllowanceIssue reports a missing or insufficient allowance.
type AllowanceIssue struct {
	Actual  string `json:"actual"`
	Spender string `json:"spender"`
}

// WireIssues lists validation problems the venue found with the request.
type WireIssues struct {
	Allowance            *AllowanceIssue `json:"allowance"`
	Balance              *BalanceIssue   `json:"balance"`
	SimulationIncomplete bool            `json:"simulationIncomplete"`
	InvalidSourcesPassed []string        `json:"invalidSourcesPassed"`
}

// PriceResponse is the 0x indicative price response.
// GET /swap/permit2/price
type PriceResponse struct {
	LiquidityAvailable bool       `json:"liquidityAvailable"`
	BuyAmount          string     `json:"buyAmount"`
	MinBuyAmount       string     `json:"minBuyAmount"`
	SellAmount         string     `json:"sellAmount"`
	BuyToken           string     `json:"buyToken"`
	SellToken          string     `json:"sellToken"`
	Fees               WireFees   `json:"fees"`
	Issues             WireIssues `json:"issues"`
	Gas                string     `json:"gas,omitempty"`
	GasPrice           string     `json:"gasPrice,omitempty"`
	TotalNetworkFee    string     `json:"totalNetworkFee,omitempty"`
	Zid                string     `json:"zid,omitempty"`
}

// QuoteTransaction is the settlement transaction of a firm quote.
type QuoteTransaction struct {
	To       string `json:"to"`
	Data     string `json:"data"`
	Value    string `json:"value"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
}

// QuoteResponse is the 0x firm quote response.
// GET /swap/permit2/quote
type QuoteResponse struct {
	PriceResponse
	Transaction *QuoteTransaction `json:"transaction,omitempty"`
}

//
// ────────────────────────────────────────────────
//   0x : Error Response
// ────────────────────────────────────────────────
//

// ErrorResponse is the error shape returned by the 0x API.
type ErrorResponse struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}
