package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradegate/internal/domain"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		text string
		want float64
		ok   bool
	}{
		{"50000", 50000, true},
		{"50000.50", 50000.50, true},
		{"$50,000.50", 50000.50, true},
		{" 1.0850 ", 1.0850, true},
		{"$1,250,000", 1250000, true},
		{"", 0, false},
		{"$", 0, false},
		{"around 50k", 0, false},
		{"-100", 0, false},
		{"0", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, ok := parsePrice(tt.text)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseTrade(t *testing.T) {
	trade, ok := ParseTrade(&domain.TradeSetup{
		EntryPrice: "$50,000",
		TakeProfit: "53000",
		StopLoss:   "48,800.50",
	})
	require.True(t, ok)
	assert.Equal(t, 50000.0, trade.Entry)
	assert.Equal(t, 53000.0, trade.TakeProfit)
	assert.Equal(t, 48800.50, trade.StopLoss)

	_, ok = ParseTrade(nil)
	assert.False(t, ok)

	_, ok = ParseTrade(&domain.TradeSetup{EntryPrice: "fifty thousand", TakeProfit: "53000", StopLoss: "48800"})
	assert.False(t, ok, "one bad price fails the whole setup")
}

func TestValidStructure(t *testing.T) {
	long := ParsedTrade{Entry: 100, TakeProfit: 110, StopLoss: 95}
	assert.True(t, long.ValidStructure(domain.SignalBuy))
	assert.False(t, long.ValidStructure(domain.SignalSell))
	assert.False(t, long.ValidStructure(domain.SignalNeutral))

	short := ParsedTrade{Entry: 100, TakeProfit: 90, StopLoss: 105}
	assert.True(t, short.ValidStructure(domain.SignalSell))
	assert.False(t, short.ValidStructure(domain.SignalBuy))

	// Stops and targets exactly at entry are rejected.
	flat := ParsedTrade{Entry: 100, TakeProfit: 100, StopLoss: 95}
	assert.False(t, flat.ValidStructure(domain.SignalBuy))
	flatStop := ParsedTrade{Entry: 100, TakeProfit: 110, StopLoss: 100}
	assert.False(t, flatStop.ValidStructure(domain.SignalBuy))
}

func TestImpliedRR(t *testing.T) {
	long := ParsedTrade{Entry: 100, TakeProfit: 110, StopLoss: 95}
	assert.InDelta(t, 2.0, long.ImpliedRR(domain.SignalBuy), 1e-9)

	short := ParsedTrade{Entry: 100, TakeProfit: 94, StopLoss: 103}
	assert.InDelta(t, 2.0, short.ImpliedRR(domain.SignalSell), 1e-9)

	assert.Equal(t, 0.0, long.ImpliedRR(domain.SignalSell), "wrong-side structure implies nothing")
	assert.Equal(t, 0.0, long.ImpliedRR(domain.SignalNeutral))
}
