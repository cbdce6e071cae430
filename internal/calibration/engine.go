// Package calibration recomputes an independent, bounded confidence score
// for an untrusted analysis result. Six factor scores are derived from the
// result's structural context, combined through a validated weight profile,
// discounted for time-of-day risk, and bounded by an uncertainty interval.
package calibration

import (
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/tradegate/internal/domain"
)

// Config contains the calibration thresholds and time windows.
type Config struct {
	StandardHighThreshold float64 `yaml:"standard_high_threshold"` // ≥75 → HIGH
	UltraHighThreshold    float64 `yaml:"ultra_high_threshold"`    // ≥85 → HIGH
	UltraDamp             float64 `yaml:"ultra_damp"`              // ×0.95 post-adjustment

	LiquidityDiscount float64 `yaml:"liquidity_discount"` // −5 in the low-liquidity window
	NewsDiscount      float64 `yaml:"news_discount"`      // −3 in the market-open window, weekdays

	// UTC hour windows, half-open [from, to), wrapping past midnight.
	LowLiquidityFrom int `yaml:"low_liquidity_from"` // 22
	LowLiquidityTo   int `yaml:"low_liquidity_to"`   // 2
	MarketOpenFrom   int `yaml:"market_open_from"`   // 13
	MarketOpenTo     int `yaml:"market_open_to"`     // 15

	// Session windows for the volatility-adjustment factor.
	OverlapFrom int `yaml:"overlap_from"` // 13 London/NY overlap +5
	OverlapTo   int `yaml:"overlap_to"`   // 16
	QuietFrom   int `yaml:"quiet_from"`   // 22 overnight −5
	QuietTo     int `yaml:"quiet_to"`     // 6
	CloseFrom   int `yaml:"close_from"`   // 20 NY close −3
	CloseTo     int `yaml:"close_to"`     // 22
}

// DefaultConfig returns the production calibration configuration.
func DefaultConfig() *Config {
	return &Config{
		StandardHighThreshold: 75.0,
		UltraHighThreshold:    85.0,
		UltraDamp:             0.95,

		LiquidityDiscount: 5.0,
		NewsDiscount:      3.0,

		LowLiquidityFrom: 22,
		LowLiquidityTo:   2,
		MarketOpenFrom:   13,
		MarketOpenTo:     15,

		OverlapFrom: 13,
		OverlapTo:   16,
		QuietFrom:   22,
		QuietTo:     6,
		CloseFrom:   20,
		CloseTo:     22,
	}
}

// Engine is the stateless calibration engine.
type Engine struct {
	config *Config
}

// NewEngine creates an engine; a nil config selects the defaults.
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}
	return &Engine{config: config}
}

// Input carries one calibration request.
type Input struct {
	Result      *domain.AnalysisResult
	UltraMode   bool
	Weights     *Weights  // optional profile override
	EvaluatedAt time.Time // zero value means "now"
}

// RiskAdjustments records the score discounts applied after weighting. The
// volatility slot is carried in the breakdown but is currently always zero.
type RiskAdjustments struct {
	Liquidity  float64 `json:"liquidity"`
	News       float64 `json:"news"`
	Volatility float64 `json:"volatility"`
}

// Total returns the combined discount.
func (ra RiskAdjustments) Total() float64 {
	return ra.Liquidity + ra.News + ra.Volatility
}

// Result is the calibrated confidence with its full breakdown.
type Result struct {
	Score    float64                `json:"score"` // 0-100, rounded
	Label    domain.ConfidenceLabel `json:"label"`
	Factors  Factors                `json:"factors"`
	Interval Interval               `json:"interval"`

	Profile          string                 `json:"profile"`   // standard, ultra, or override
	RawScore         float64                `json:"raw_score"` // weighted sum before adjustments
	Adjustments      RiskAdjustments        `json:"adjustments"`
	ComponentScores  map[string]float64     `json:"component_scores"`
	Attribution      map[string]interface{} `json:"attribution"`
	EvaluationTimeMs int64                  `json:"evaluation_time_ms"`
}

// Calibrate recomputes confidence for the result. The only error class is a
// caller defect: a nil result or an invalid weight override. Missing nested
// context never fails; the affected factors keep their neutral baselines.
func (e *Engine) Calibrate(in Input) (*Result, error) {
	startTime := time.Now()

	r := in.Result
	if r == nil {
		return nil, fmt.Errorf("calibrate: nil analysis result")
	}

	profile := "standard"
	weights := ProfileFor(in.UltraMode)
	if in.UltraMode {
		profile = "ultra"
	}
	if in.Weights != nil {
		if err := in.Weights.Validate(); err != nil {
			return nil, fmt.Errorf("invalid weight profile: %w", err)
		}
		weights = *in.Weights
		profile = "override"
	}

	at := in.EvaluatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	factors := Factors{
		TechnicalConfluence:  e.scoreTechnicalConfluence(r),
		HistoricalSuccess:    e.scoreHistoricalSuccess(r),
		MarketConditions:     e.scoreMarketConditions(r),
		VolatilityAdjustment: e.scoreVolatilityAdjustment(r, at),
		VolumeConfirmation:   e.scoreVolumeConfirmation(r),
		StructuralIntegrity:  e.scoreStructuralIntegrity(r),
	}

	rawScore := math.Round(weights.Apply(factors))

	adjustments := e.riskAdjustments(at)
	adjusted := rawScore - adjustments.Total()
	if in.UltraMode {
		adjusted *= e.config.UltraDamp
	}
	finalScore := math.Round(math.Min(100.0, math.Max(0.0, adjusted)))

	threshold := e.config.StandardHighThreshold
	if in.UltraMode {
		threshold = e.config.UltraHighThreshold
	}
	label := domain.ConfidenceLow
	if finalScore >= threshold {
		label = domain.ConfidenceHigh
	}

	result := &Result{
		Score:    finalScore,
		Label:    label,
		Factors:  factors,
		Interval: computeInterval(factors, r, finalScore),

		Profile:     profile,
		RawScore:    rawScore,
		Adjustments: adjustments,
		ComponentScores: map[string]float64{
			"technical_confluence":  factors.TechnicalConfluence,
			"historical_success":    factors.HistoricalSuccess,
			"market_conditions":     factors.MarketConditions,
			"volatility_adjustment": factors.VolatilityAdjustment,
			"volume_confirmation":   factors.VolumeConfirmation,
			"structural_integrity":  factors.StructuralIntegrity,
		},
		Attribution: map[string]interface{}{
			"weights":        weights,
			"profile":        profile,
			"raw_score":      rawScore,
			"adjustments":    adjustments,
			"high_threshold": threshold,
			"evaluated_at":   at,
		},
	}
	result.EvaluationTimeMs = time.Since(startTime).Milliseconds()

	return result, nil
}

// riskAdjustments computes the time-window score discounts. The volatility
// penalty slot is kept in the breakdown but no window feeds it yet.
func (e *Engine) riskAdjustments(at time.Time) RiskAdjustments {
	utc := at.UTC()
	hour := utc.Hour()

	adj := RiskAdjustments{}
	if hourIn(hour, e.config.LowLiquidityFrom, e.config.LowLiquidityTo) {
		adj.Liquidity = e.config.LiquidityDiscount
	}
	wd := utc.Weekday()
	if wd != time.Saturday && wd != time.Sunday && hourIn(hour, e.config.MarketOpenFrom, e.config.MarketOpenTo) {
		adj.News = e.config.NewsDiscount
	}
	adj.Volatility = 0.0
	return adj
}

// GetSummary returns a one-line description of the calibration outcome.
func (cr *Result) GetSummary() string {
	return fmt.Sprintf("%s %.0f/100 ±%.1f (%s, %s profile)",
		cr.Label, cr.Score, cr.Interval.Uncertainty, cr.Interval.Reliability, cr.Profile)
}

// GetDetailedBreakdown returns the factor-by-factor attribution report.
func (cr *Result) GetDetailedBreakdown() string {
	report := fmt.Sprintf("Calibrated Confidence: %.0f/100 (%s)\n", cr.Score, cr.Label)
	report += fmt.Sprintf("Interval: [%.1f, %.1f] ±%.1f | Reliability: %s | Profile: %s\n\n",
		cr.Interval.LowerBound, cr.Interval.UpperBound, cr.Interval.Uncertainty,
		cr.Interval.Reliability, cr.Profile)

	report += "Factor Scores:\n"
	factorOrder := []string{
		"technical_confluence", "historical_success", "market_conditions",
		"volatility_adjustment", "volume_confirmation", "structural_integrity",
	}
	for _, name := range factorOrder {
		if score, exists := cr.ComponentScores[name]; exists {
			report += fmt.Sprintf("  %s: %.1f\n", name, score)
		}
	}

	if total := cr.Adjustments.Total(); total > 0 {
		report += fmt.Sprintf("\nRisk Adjustments: -%.1f (liquidity %.1f, news %.1f, volatility %.1f)\n",
			total, cr.Adjustments.Liquidity, cr.Adjustments.News, cr.Adjustments.Volatility)
	}

	return report
}
