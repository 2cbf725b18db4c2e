package fee

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Checker-Finance/zeroex-adapter/pkg/model"
)

func TestResolveSurplusRecipient(t *testing.T) {
	taker := "0x70997970C51812dc3A010C7d01b50e0d17dc79C8"
	recipient := "0x3C44CdDdB6a900fa2b585dd299e03d12FA4293BC"

	tests := []struct {
		name      string
		requested string
		plan      model.FeePlan
		expected  string
	}{
		{"unset routes to taker", "", DefaultPlan("intg-01"), taker},
		{"whitespace routes to taker", "   ", DefaultPlan("intg-01"), taker},
		{"set and authorized", recipient, DefaultPlan("intg-01"), recipient},
		{"set but plan forbids routing", recipient, model.FeePlan{SurplusRouting: false}, taker},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveSurplusRecipient(tt.requested, taker, tt.plan)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestRealizedSurplus(t *testing.T) {
	tests := []struct {
		name     string
		quoted   string
		settled  string
		expected string
	}{
		{"positive slippage", "1000000", "1001500", "1500"},
		{"exact fill", "1000000", "1000000", "0"},
		{"negative slippage clamps to zero", "1000000", "999000", "0"},
		{"wei scale", "40000000000000000", "40000000000000123", "123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RealizedSurplus(amt(tt.quoted), amt(tt.settled))
			assert.Equal(t, tt.expected, got.String())
		})
	}
}
