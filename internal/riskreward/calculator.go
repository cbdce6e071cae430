// Package riskreward derives the minimum acceptable reward-to-risk ratio for
// a recommendation from asset class, volatility regime, session timing, and
// historical outcome statistics.
package riskreward

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/sawpanic/tradegate/internal/domain"
	"github.com/sawpanic/tradegate/internal/history"
)

// Config contains the base requirements and adjustment sizes.
type Config struct {
	StandardBaseRR float64 `yaml:"standard_base_rr"` // 1.8
	UltraBaseRR    float64 `yaml:"ultra_base_rr"`    // 2.2

	// Floors and ladder spacing
	MinRRFloor    float64 `yaml:"min_rr_floor"`   // 1.0
	OptimalFloor  float64 `yaml:"optimal_floor"`  // 1.3
	MaxFloor      float64 `yaml:"max_floor"`      // 1.6
	OptimalSpread float64 `yaml:"optimal_spread"` // +0.3 over min
	MaxSpread     float64 `yaml:"max_spread"`     // +0.6 over min

	// Adjustment sizes
	HighVolAdjust      float64 `yaml:"high_vol_adjust"`      // -0.3
	ExtremeVolAdjust   float64 `yaml:"extreme_vol_adjust"`   // -0.5
	HighProfileAdjust  float64 `yaml:"high_profile_adjust"`  // -0.2
	GoodHistoryBonus   float64 `yaml:"good_history_bonus"`   // +0.1
	PoorHistoryPenalty float64 `yaml:"poor_history_penalty"` // -0.2
	StrongSessionBonus float64 `yaml:"strong_session_bonus"` // +0.1
	WeakSessionPenalty float64 `yaml:"weak_session_penalty"` // -0.1
	HighScoreBonus     float64 `yaml:"high_score_bonus"`     // +0.1
	LowScorePenalty    float64 `yaml:"low_score_penalty"`    // -0.2

	// Adjustment trigger thresholds
	GoodSuccessRate float64 `yaml:"good_success_rate"` // >0.7
	PoorSuccessRate float64 `yaml:"poor_success_rate"` // <0.5
	HighScore       float64 `yaml:"high_score"`        // ≥85
	LowScore        float64 `yaml:"low_score"`         // <70
}

// DefaultConfig returns the production requirement ladder.
func DefaultConfig() *Config {
	return &Config{
		StandardBaseRR: 1.8,
		UltraBaseRR:    2.2,

		MinRRFloor:    1.0,
		OptimalFloor:  1.3,
		MaxFloor:      1.6,
		OptimalSpread: 0.3,
		MaxSpread:     0.6,

		HighVolAdjust:      -0.3,
		ExtremeVolAdjust:   -0.5,
		HighProfileAdjust:  -0.2,
		GoodHistoryBonus:   0.1,
		PoorHistoryPenalty: -0.2,
		StrongSessionBonus: 0.1,
		WeakSessionPenalty: -0.1,
		HighScoreBonus:     0.1,
		LowScorePenalty:    -0.2,

		GoodSuccessRate: 0.7,
		PoorSuccessRate: 0.5,
		HighScore:       85.0,
		LowScore:        70.0,
	}
}

// Input carries everything one RequiredRR evaluation needs.
type Input struct {
	AssetType       AssetType
	Timeframe       string
	Volatility      domain.VolatilityLevel
	ConfidenceScore float64
	UltraMode       bool
	EvaluatedAt     time.Time // zero value means "now"
}

// Recommendation is the derived requirement ladder with full attribution.
type Recommendation struct {
	MinRR     float64 `json:"min_rr"`
	OptimalRR float64 `json:"optimal_rr"`
	MaxRR     float64 `json:"max_rr"`

	Mode        string              `json:"mode"` // standard or ultra
	AssetType   AssetType           `json:"asset_type"`
	BaseRR      float64             `json:"base_rr"`
	Adjustments map[string]float64  `json:"adjustments"`
	Session     SessionStrength     `json:"session"`
	Performance history.Performance `json:"performance"`
	Degraded    bool                `json:"degraded"` // history lookup failed, neutral default used
}

// Calculator derives RR requirements; its only dependency is the read-only
// performance lookup.
type Calculator struct {
	reader history.PerformanceReader
	config *Config
}

// NewCalculator creates a calculator. A nil reader is allowed and behaves as
// an always-neutral history; a nil config selects the defaults.
func NewCalculator(reader history.PerformanceReader, config *Config) *Calculator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Calculator{reader: reader, config: config}
}

// RequiredRR computes the {min, optimal, max} requirement ladder for the
// input. History-store failures degrade to the neutral default and mark the
// recommendation Degraded; only context cancellation propagates as an error.
func (c *Calculator) RequiredRR(ctx context.Context, in Input) (*Recommendation, error) {
	base := c.config.StandardBaseRR
	mode := "standard"
	if in.UltraMode {
		base = c.config.UltraBaseRR
		mode = "ultra"
	}

	at := in.EvaluatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	perf := history.NeutralPerformance(string(in.AssetType), in.Timeframe)
	degraded := false
	if c.reader != nil {
		got, err := c.reader.GetPerformance(ctx, string(in.AssetType), in.Timeframe)
		switch {
		case err == nil:
			perf = got
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			degraded = true
		}
	}

	adjustments := make(map[string]float64)

	// Volatility regime: looser requirements when the market is moving.
	switch in.Volatility {
	case domain.VolatilityHigh:
		adjustments["volatility_regime"] = c.config.HighVolAdjust
	case domain.VolatilityExtreme:
		adjustments["volatility_regime"] = c.config.ExtremeVolAdjust
	default:
		adjustments["volatility_regime"] = 0
	}

	// Intrinsic asset volatility profile.
	if in.AssetType.VolatilityProfile() == domain.VolatilityHigh {
		adjustments["asset_profile"] = c.config.HighProfileAdjust
	} else {
		adjustments["asset_profile"] = 0
	}

	// Historical success for this (asset, timeframe). An empty aggregate is
	// neutral; the bonus and penalty bands apply only to measured outcomes.
	switch {
	case perf.SampleSize == 0:
		adjustments["historical_success"] = 0
	case perf.SuccessRate > c.config.GoodSuccessRate:
		adjustments["historical_success"] = c.config.GoodHistoryBonus
	case perf.SuccessRate < c.config.PoorSuccessRate:
		adjustments["historical_success"] = c.config.PoorHistoryPenalty
	default:
		adjustments["historical_success"] = 0
	}

	// Session strength at evaluation time.
	session := SessionStrengthAt(in.AssetType, at)
	switch session {
	case SessionStrong:
		adjustments["session_strength"] = c.config.StrongSessionBonus
	case SessionWeak:
		adjustments["session_strength"] = c.config.WeakSessionPenalty
	default:
		adjustments["session_strength"] = 0
	}

	// Calibrated confidence score.
	switch {
	case in.ConfidenceScore >= c.config.HighScore:
		adjustments["confidence"] = c.config.HighScoreBonus
	case in.ConfidenceScore < c.config.LowScore:
		adjustments["confidence"] = c.config.LowScorePenalty
	default:
		adjustments["confidence"] = 0
	}

	sum := 0.0
	for _, adj := range adjustments {
		sum += adj
	}

	minRR := math.Max(c.config.MinRRFloor, base+sum)
	optimalRR := math.Max(c.config.OptimalFloor, minRR+c.config.OptimalSpread)
	maxRR := math.Max(c.config.MaxFloor, minRR+c.config.MaxSpread)

	return &Recommendation{
		MinRR:       round2(minRR),
		OptimalRR:   round2(optimalRR),
		MaxRR:       round2(maxRR),
		Mode:        mode,
		AssetType:   in.AssetType,
		BaseRR:      base,
		Adjustments: adjustments,
		Session:     session,
		Performance: perf,
		Degraded:    degraded,
	}, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
