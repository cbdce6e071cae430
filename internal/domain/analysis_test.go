package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVolatilityBucket_DefaultsToMedium(t *testing.T) {
	result := &AnalysisResult{}
	assert.Equal(t, VolatilityMedium, result.VolatilityBucket())

	result.MarketConditions = &MarketConditions{}
	assert.Equal(t, VolatilityMedium, result.VolatilityBucket())

	result.MarketConditions.Volatility = VolatilityExtreme
	assert.Equal(t, VolatilityExtreme, result.VolatilityBucket())
}

func TestClone_NilReceiver(t *testing.T) {
	var result *AnalysisResult
	assert.Nil(t, result.Clone())
}

func TestClone_DeepCopiesPointers(t *testing.T) {
	ratio := "2.5:1"
	original := &AnalysisResult{
		Signal:                 SignalBuy,
		Confidence:             ConfidenceHigh,
		OverallConfidenceScore: 82,
		Trade: &TradeSetup{
			EntryPrice: "50000",
			TakeProfit: "53000",
			StopLoss:   "48800",
		},
		RiskRewardRatio: &ratio,
		SMC: &SMCAnalysis{
			MarketStructure: "CLEAR_BULLISH",
			TradingBias:     TradingBias{Direction: "BULLISH", Confidence: 80},
			CriticalLevels:  []float64{49500, 48000},
		},
		MarketConditions: &MarketConditions{Phase: "MARKUP", Volatility: VolatilityLow},
		Volume:           &VolumeAnalysis{ProfileShape: "TRENDING", KeyLevels: []float64{50100}},
	}

	clone := original.Clone()
	require.NotNil(t, clone)
	assert.Equal(t, original, clone)

	// Mutating the clone must not reach the original.
	clone.Trade.EntryPrice = "1"
	*clone.RiskRewardRatio = "9:1"
	clone.SMC.CriticalLevels[0] = 0
	clone.Volume.KeyLevels[0] = 0
	clone.MarketConditions.Phase = "MARKDOWN"

	assert.Equal(t, "50000", original.Trade.EntryPrice)
	assert.Equal(t, "2.5:1", *original.RiskRewardRatio)
	assert.Equal(t, 49500.0, original.SMC.CriticalLevels[0])
	assert.Equal(t, 50100.0, original.Volume.KeyLevels[0])
	assert.Equal(t, "MARKUP", original.MarketConditions.Phase)
}

func TestClone_PatternWyckoff(t *testing.T) {
	original := &AnalysisResult{
		Signal: SignalSell,
		Pattern: &PatternAnalysis{
			PatternConfluenceScore: 77,
			TrendDirection:         "STRONG_BEARISH",
			ClassicPatterns:        []ClassicPattern{{Name: "head_and_shoulders", Reliability: 0.8}},
			Wyckoff:                &WyckoffContext{Phase: "DISTRIBUTION", VolumeCharacter: "CLIMACTIC"},
		},
	}

	clone := original.Clone()
	require.NotNil(t, clone.Pattern)
	require.NotNil(t, clone.Pattern.Wyckoff)

	clone.Pattern.Wyckoff.Phase = "ACCUMULATION"
	clone.Pattern.ClassicPatterns[0].Reliability = 0.1

	assert.Equal(t, "DISTRIBUTION", original.Pattern.Wyckoff.Phase)
	assert.Equal(t, 0.8, original.Pattern.ClassicPatterns[0].Reliability)
}
