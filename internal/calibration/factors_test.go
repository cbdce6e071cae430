package calibration

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sawpanic/tradegate/internal/domain"
)

var quietHour = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

func TestScoreTechnicalConfluence(t *testing.T) {
	engine := NewEngine(nil)

	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}
	assert.Equal(t, 50.0, engine.scoreTechnicalConfluence(bare), "no context stays at the neutral base")

	mtf := &domain.AnalysisResult{
		Signal: domain.SignalBuy,
		MultiTimeframe: &domain.MultiTimeframeContext{
			ConfluenceScore: 80,
			OverallTrend:    "BULLISH",
		},
	}
	// 50 + 80*0.4 + 10 trend agreement
	assert.Equal(t, 92.0, engine.scoreTechnicalConfluence(mtf))

	mtf.MultiTimeframe.ConflictingSignals = []string{"1h momentum", "15m divergence"}
	assert.Equal(t, 82.0, engine.scoreTechnicalConfluence(mtf), "each conflict costs 5")

	smc := &domain.AnalysisResult{
		Signal: domain.SignalBuy,
		SMC: &domain.SMCAnalysis{
			TradingBias:          domain.TradingBias{Direction: "BULLISH", Confidence: 80},
			LiquidityConfluence:  []string{"a", "b", "c"},
			OrderBlockConfluence: []string{"a", "b"},
		},
	}
	// 50 + 80*0.2 + 8 + 6
	assert.Equal(t, 80.0, engine.scoreTechnicalConfluence(smc))
}

func TestScoreHistoricalSuccess(t *testing.T) {
	engine := NewEngine(nil)

	neutral := &domain.AnalysisResult{Signal: domain.SignalNeutral}
	assert.Equal(t, 60.0, engine.scoreHistoricalSuccess(neutral))

	strong := &domain.AnalysisResult{Signal: domain.SignalBuy, OverallConfidenceScore: 82}
	assert.Equal(t, 75.0, engine.scoreHistoricalSuccess(strong))

	weak := &domain.AnalysisResult{Signal: domain.SignalSell, OverallConfidenceScore: 40}
	assert.Equal(t, 50.0, engine.scoreHistoricalSuccess(weak))

	patterned := &domain.AnalysisResult{
		Signal:                 domain.SignalBuy,
		OverallConfidenceScore: 82,
		Pattern: &domain.PatternAnalysis{
			ClassicPatterns: []domain.ClassicPattern{
				{Name: "bull_flag", Reliability: 80},
				{Name: "ascending_triangle", Reliability: 70},
			},
		},
	}
	// 60 + 15 + (75-50)*0.4
	assert.Equal(t, 85.0, engine.scoreHistoricalSuccess(patterned))
}

func TestScoreMarketConditions(t *testing.T) {
	engine := NewEngine(nil)

	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}
	assert.Equal(t, 52.0, engine.scoreMarketConditions(bare), "absent conditions default to the MEDIUM bucket")

	markup := &domain.AnalysisResult{
		Signal:           domain.SignalBuy,
		MarketConditions: &domain.MarketConditions{Phase: "MARKUP", Volatility: domain.VolatilityLow},
	}
	assert.Equal(t, 68.0, engine.scoreMarketConditions(markup))

	markdown := &domain.AnalysisResult{
		Signal:           domain.SignalSell,
		MarketConditions: &domain.MarketConditions{Phase: "MARKDOWN", Volatility: domain.VolatilityExtreme},
	}
	assert.Equal(t, 33.0, engine.scoreMarketConditions(markdown))
}

func TestScoreVolatilityAdjustment(t *testing.T) {
	engine := NewEngine(nil)

	medium := &domain.AnalysisResult{Signal: domain.SignalBuy, OverallConfidenceScore: 75}
	assert.Equal(t, 70.0, engine.scoreVolatilityAdjustment(medium, quietHour))

	overlap := time.Date(2026, 1, 15, 14, 0, 0, 0, time.UTC)
	assert.Equal(t, 75.0, engine.scoreVolatilityAdjustment(medium, overlap))

	overnight := time.Date(2026, 1, 15, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, 65.0, engine.scoreVolatilityAdjustment(medium, overnight))

	nyClose := time.Date(2026, 1, 15, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, 67.0, engine.scoreVolatilityAdjustment(medium, nyClose))

	shakyExtreme := &domain.AnalysisResult{
		Signal:                 domain.SignalBuy,
		OverallConfidenceScore: 55,
		MarketConditions:       &domain.MarketConditions{Volatility: domain.VolatilityExtreme},
	}
	// 25 base, -15 weak signal in rough conditions
	assert.Equal(t, 10.0, engine.scoreVolatilityAdjustment(shakyExtreme, quietHour))
}

func TestScoreVolumeConfirmation(t *testing.T) {
	engine := NewEngine(nil)

	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}
	assert.Equal(t, 50.0, engine.scoreVolumeConfirmation(bare))

	confirmed := &domain.AnalysisResult{
		Signal: domain.SignalBuy,
		Volume: &domain.VolumeAnalysis{
			ProfileShape:        "TRENDING",
			ValueAreaAcceptance: true,
			BreakoutVolume:      "CONFIRMED",
		},
	}
	// 50 + 12 + 10 + 15
	assert.Equal(t, 87.0, engine.scoreVolumeConfirmation(confirmed))

	drying := &domain.AnalysisResult{
		Signal: domain.SignalSell,
		Pattern: &domain.PatternAnalysis{
			VolumeTrend: "DECREASING",
			Wyckoff:     &domain.WyckoffContext{VolumeCharacter: "DRYING"},
		},
	}
	// 50 - 5 - 8
	assert.Equal(t, 37.0, engine.scoreVolumeConfirmation(drying))
}

func TestScoreStructuralIntegrity(t *testing.T) {
	engine := NewEngine(nil)

	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}
	assert.Equal(t, 50.0, engine.scoreStructuralIntegrity(bare))

	clean := &domain.AnalysisResult{
		Signal: domain.SignalBuy,
		SMC: &domain.SMCAnalysis{
			MarketStructure:      "CLEAR_BULLISH",
			TradingBias:          domain.TradingBias{Direction: "BULLISH", Confidence: 80},
			CriticalLevels:       []float64{49500, 48000},
			OrderBlockConfluence: []string{"4h demand", "1d breaker"},
		},
	}
	// 50 + 20 + 12 + 4 + 4
	assert.Equal(t, 90.0, engine.scoreStructuralIntegrity(clean))

	risky := &domain.AnalysisResult{
		Signal: domain.SignalSell,
		SMC: &domain.SMCAnalysis{
			MarketStructure: "TRANSITIONAL",
			TradingBias:     domain.TradingBias{Direction: "NEUTRAL", Confidence: 50},
			LiquidityRisks:  []string{"sweep above"},
			StructuralRisks: []string{"no HTF confirmation", "late entry"},
		},
	}
	// 50 - 10 + 0 - 3 - 8
	assert.Equal(t, 29.0, engine.scoreStructuralIntegrity(risky))
}

func TestFactorsClampToRange(t *testing.T) {
	engine := NewEngine(nil)

	// Stack enough structural evidence to overflow 100 before the clamp.
	maxed := &domain.AnalysisResult{
		Signal:                 domain.SignalBuy,
		OverallConfidenceScore: 95,
		MultiTimeframe: &domain.MultiTimeframeContext{
			ConfluenceScore: 100,
			OverallTrend:    "BULLISH",
		},
		SMC: &domain.SMCAnalysis{
			TradingBias:          domain.TradingBias{Direction: "BULLISH", Confidence: 100},
			LiquidityConfluence:  []string{"a", "b", "c", "d"},
			OrderBlockConfluence: []string{"a", "b", "c"},
		},
	}
	score := engine.scoreTechnicalConfluence(maxed)
	assert.Equal(t, 100.0, score)

	// And enough conflicts to underflow 0.
	floored := &domain.AnalysisResult{
		Signal: domain.SignalSell,
		MultiTimeframe: &domain.MultiTimeframeContext{
			ConfluenceScore:    0,
			OverallTrend:       "MIXED",
			ConflictingSignals: make([]string, 20),
		},
	}
	assert.Equal(t, 0.0, engine.scoreTechnicalConfluence(floored))
}
