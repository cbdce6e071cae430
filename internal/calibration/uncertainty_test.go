package calibration

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradegate/internal/domain"
)

func TestComputeInterval_AgreementTightensBounds(t *testing.T) {
	agreeing := Factors{
		TechnicalConfluence:  80,
		HistoricalSuccess:    80,
		MarketConditions:     80,
		VolatilityAdjustment: 80,
		VolumeConfirmation:   80,
		StructuralIntegrity:  80,
	}
	rich := &domain.AnalysisResult{
		Signal:                 domain.SignalBuy,
		OverallConfidenceScore: 82,
		MultiTimeframe:         &domain.MultiTimeframeContext{ConfluenceScore: 80, OverallTrend: "BULLISH"},
		SMC:                    &domain.SMCAnalysis{},
		Pattern:                &domain.PatternAnalysis{PatternConfluenceScore: 75},
	}

	interval := computeInterval(agreeing, rich, 80)

	assert.Equal(t, 5.0, interval.Uncertainty, "full context and zero dispersion hit the floor")
	assert.Equal(t, ReliabilityVeryHigh, interval.Reliability)
	assert.Equal(t, 75.0, interval.LowerBound)
	assert.Equal(t, 85.0, interval.UpperBound)
}

func TestComputeInterval_DispersionWidensBounds(t *testing.T) {
	disagreeing := Factors{
		TechnicalConfluence:  100,
		HistoricalSuccess:    0,
		MarketConditions:     100,
		VolatilityAdjustment: 0,
		VolumeConfirmation:   100,
		StructuralIntegrity:  0,
	}
	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}

	interval := computeInterval(disagreeing, bare, 50)

	assert.Equal(t, 30.0, interval.Uncertainty, "maximal dispersion clamps at the ceiling")
	assert.Equal(t, ReliabilityLow, interval.Reliability)
	assert.Equal(t, 20.0, interval.LowerBound)
	assert.Equal(t, 80.0, interval.UpperBound)
}

func TestComputeInterval_BoundsClampToRange(t *testing.T) {
	factors := Factors{
		TechnicalConfluence:  95,
		HistoricalSuccess:    5,
		MarketConditions:     95,
		VolatilityAdjustment: 5,
		VolumeConfirmation:   95,
		StructuralIntegrity:  5,
	}
	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}

	high := computeInterval(factors, bare, 95)
	assert.LessOrEqual(t, high.UpperBound, 100.0)
	assert.InDelta(t, 95-high.Uncertainty, high.LowerBound, 1e-9)

	low := computeInterval(factors, bare, 5)
	assert.GreaterOrEqual(t, low.LowerBound, 0.0)
	assert.InDelta(t, 5+low.Uncertainty, low.UpperBound, 1e-9)
}

func TestComputeInterval_UncertaintyStaysInBand(t *testing.T) {
	cases := []Factors{
		{},
		{TechnicalConfluence: 100, HistoricalSuccess: 100, MarketConditions: 100, VolatilityAdjustment: 100, VolumeConfirmation: 100, StructuralIntegrity: 100},
		{TechnicalConfluence: 55, HistoricalSuccess: 62, MarketConditions: 48, VolatilityAdjustment: 70, VolumeConfirmation: 51, StructuralIntegrity: 66},
	}
	bare := &domain.AnalysisResult{Signal: domain.SignalNeutral}

	for _, factors := range cases {
		interval := computeInterval(factors, bare, 50)
		require.GreaterOrEqual(t, interval.Uncertainty, 5.0)
		require.LessOrEqual(t, interval.Uncertainty, 30.0)
	}
}

func TestIntervalViaCalibrate(t *testing.T) {
	engine := NewEngine(nil)

	result, err := engine.Calibrate(Input{Result: strongBullish(), EvaluatedAt: quietHour})
	require.NoError(t, err)

	interval := result.Interval
	assert.Equal(t, result.Score, interval.Center)
	assert.InDelta(t, result.Score-interval.Uncertainty, interval.LowerBound, 1e-9)
	assert.InDelta(t, result.Score+interval.Uncertainty, interval.UpperBound, 1e-9)
	assert.NotEmpty(t, interval.Reliability)
}
