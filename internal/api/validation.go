package api

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	addressRe = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	amountRe  = regexp.MustCompile(`^[0-9]+$`)
)

func validAddress(s string) bool { return addressRe.MatchString(strings.TrimSpace(s)) }

func (r SwapRequest) Validate() error {
	if strings.TrimSpace(r.IntegratorID) == "" {
		return fmt.Errorf("integratorId is required")
	}
	if r.ChainID <= 0 {
		return fmt.Errorf("chainId must be greater than 0")
	}
	if !validAddress(r.SellToken) {
		return fmt.Errorf("sellToken must be a 0x-prefixed 20-byte hex address")
	}
	if !validAddress(r.BuyToken) {
		return fmt.Errorf("buyToken must be a 0x-prefixed 20-byte hex address")
	}
	if strings.EqualFold(strings.TrimSpace(r.SellToken), strings.TrimSpace(r.BuyToken)) {
		return fmt.Errorf("sellToken and buyToken must differ")
	}
	if !amountRe.MatchString(strings.TrimSpace(r.SellAmount)) {
		return fmt.Errorf("sellAmount must be a base-unit integer string")
	}
	if !validAddress(r.Taker) {
		return fmt.Errorf("taker must be a 0x-prefixed 20-byte hex address")
	}

	// Fee fields are all-or-none.
	hasRecipient := strings.TrimSpace(r.SwapFeeRecipient) != ""
	hasToken := strings.TrimSpace(r.SwapFeeToken) != ""
	hasBps := r.SwapFeeBps != nil
	if hasRecipient || hasToken || hasBps {
		if !hasRecipient || !hasToken || !hasBps {
			return fmt.Errorf("swapFeeRecipient, swapFeeBps, and swapFeeToken must be provided together")
		}
		if !validAddress(r.SwapFeeRecipient) {
			return fmt.Errorf("swapFeeRecipient must be a 0x-prefixed 20-byte hex address")
		}
		if !strings.EqualFold(r.SwapFeeToken, r.SellToken) && !strings.EqualFold(r.SwapFeeToken, r.BuyToken) {
			return fmt.Errorf("swapFeeToken must equal sellToken or buyToken")
		}
	}

	if r.TradeSurplusRecipient != "" && !validAddress(r.TradeSurplusRecipient) {
		return fmt.Errorf("tradeSurplusRecipient must be a 0x-prefixed 20-byte hex address")
	}

	return nil
}

func (r SettlementRequest) Validate() error {
	if strings.TrimSpace(r.QuoteID) == "" {
		return fmt.Errorf("quoteId is required")
	}
	if !amountRe.MatchString(strings.TrimSpace(r.SettledBuyAmount)) {
		return fmt.Errorf("settledBuyAmount must be a base-unit integer string")
	}
	return nil
}

func (r FeePlanRequest) Validate() error {
	if strings.TrimSpace(r.IntegratorID) == "" {
		return fmt.Errorf("integratorId is required")
	}
	if r.MaxFeeBps < 0 || r.MaxFeeBps > 10000 {
		return fmt.Errorf("maxFeeBps must be within [0,10000]")
	}
	return nil
}
