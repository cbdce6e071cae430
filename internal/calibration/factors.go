package calibration

import (
	"math"
	"strings"
	"time"

	"github.com/sawpanic/tradegate/internal/domain"
)

// Factors holds the six independent sub-scores, each clamped to [0,100].
type Factors struct {
	TechnicalConfluence  float64 `json:"technical_confluence"`
	HistoricalSuccess    float64 `json:"historical_success"`
	MarketConditions     float64 `json:"market_conditions"`
	VolatilityAdjustment float64 `json:"volatility_adjustment"`
	VolumeConfirmation   float64 `json:"volume_confirmation"`
	StructuralIntegrity  float64 `json:"structural_integrity"`
}

func (f Factors) values() [6]float64 {
	return [6]float64{
		f.TechnicalConfluence,
		f.HistoricalSuccess,
		f.MarketConditions,
		f.VolatilityAdjustment,
		f.VolumeConfirmation,
		f.StructuralIntegrity,
	}
}

func clampFactor(v float64) float64 {
	return math.Min(100.0, math.Max(0.0, v))
}

// scoreTechnicalConfluence measures agreement among the structural contexts.
// Each context contributes only when present; a bare result stays at the
// neutral base.
func (e *Engine) scoreTechnicalConfluence(r *domain.AnalysisResult) float64 {
	score := 50.0

	if mtf := r.MultiTimeframe; mtf != nil {
		score += mtf.ConfluenceScore * 0.4
		score -= 5.0 * float64(len(mtf.ConflictingSignals))
		if mtf.OverallTrend != "MIXED" {
			score += 10.0
		}
	}

	if pat := r.Pattern; pat != nil {
		score += (pat.PatternConfluenceScore - 50.0) * 0.3
		score -= 3.0 * float64(len(pat.ConflictingPatterns))
		if strings.Contains(pat.TrendDirection, "STRONG") {
			score += 5.0
		}
	}

	if smc := r.SMC; smc != nil {
		if smc.TradingBias.Direction != "NEUTRAL" {
			score += smc.TradingBias.Confidence * 0.2
		}
		if len(smc.LiquidityConfluence) > 2 {
			score += 8.0
		}
		if len(smc.OrderBlockConfluence) > 1 {
			score += 6.0
		}
	}

	return clampFactor(score)
}

// scoreHistoricalSuccess estimates how often setups like this one worked
// before, using the model's own score tier and pattern reliability stats.
func (e *Engine) scoreHistoricalSuccess(r *domain.AnalysisResult) float64 {
	score := 60.0

	if r.Signal != domain.SignalNeutral {
		switch {
		case r.OverallConfidenceScore >= 80:
			score += 15.0
		case r.OverallConfidenceScore >= 60:
			score += 8.0
		default:
			score -= 10.0
		}
	}

	if pat := r.Pattern; pat != nil {
		if len(pat.ClassicPatterns) > 0 {
			sum := 0.0
			for _, p := range pat.ClassicPatterns {
				sum += p.Reliability
			}
			avg := sum / float64(len(pat.ClassicPatterns))
			score += (avg - 50.0) * 0.4
		}

		completed := 0
		sum := 0.0
		for _, h := range pat.HarmonicPatterns {
			if h.Completed {
				completed++
				sum += h.Validity
			}
		}
		if completed > 0 {
			avg := sum / float64(completed)
			score += (avg - 50.0) * 0.3
		}
	}

	if mtf := r.MultiTimeframe; mtf != nil && mtf.ConfluenceScore > 70 && mtf.OverallTrend != "MIXED" {
		score += 12.0
	}

	return clampFactor(score)
}

// scoreMarketConditions folds in the reported market phase and volatility
// bucket.
func (e *Engine) scoreMarketConditions(r *domain.AnalysisResult) float64 {
	score := 50.0

	if mc := r.MarketConditions; mc != nil {
		switch mc.Phase {
		case "MARKUP", "ACCUMULATION":
			score += 10.0
		case "DISTRIBUTION", "MARKDOWN":
			score -= 5.0
		case "RE_ACCUMULATION", "RE_DISTRIBUTION":
			score += 3.0
		}
	}

	switch r.VolatilityBucket() {
	case domain.VolatilityLow:
		score += 8.0
	case domain.VolatilityMedium:
		score += 2.0
	case domain.VolatilityHigh:
		score -= 5.0
	case domain.VolatilityExtreme:
		score -= 12.0
	}

	return clampFactor(score)
}

// scoreVolatilityAdjustment maps the volatility bucket onto a tradability
// score, with an extra penalty for weak signals in rough conditions and an
// hour-of-day modifier.
func (e *Engine) scoreVolatilityAdjustment(r *domain.AnalysisResult, at time.Time) float64 {
	bucket := r.VolatilityBucket()

	var score float64
	switch bucket {
	case domain.VolatilityLow:
		score = 85.0
	case domain.VolatilityMedium:
		score = 70.0
	case domain.VolatilityHigh:
		score = 45.0
	case domain.VolatilityExtreme:
		score = 25.0
	default:
		score = 70.0
	}

	if r.OverallConfidenceScore < 60 && (bucket == domain.VolatilityHigh || bucket == domain.VolatilityExtreme) {
		score -= 15.0
	}

	hour := at.UTC().Hour()
	switch {
	case hourIn(hour, e.config.OverlapFrom, e.config.OverlapTo): // London/NY overlap
		score += 5.0
	case hourIn(hour, e.config.QuietFrom, e.config.QuietTo): // overnight lull
		score -= 5.0
	case hourIn(hour, e.config.CloseFrom, e.config.CloseTo): // NY close churn
		score -= 3.0
	}

	return clampFactor(score)
}

// scoreVolumeConfirmation accumulates volume-profile, breakout, pattern, and
// Wyckoff volume evidence.
func (e *Engine) scoreVolumeConfirmation(r *domain.AnalysisResult) float64 {
	score := 50.0

	if vol := r.Volume; vol != nil {
		switch vol.ProfileShape {
		case "BALANCED":
			score += 8.0
		case "TRENDING":
			score += 12.0
		case "ROTATIONAL":
			score -= 5.0
		}
		if vol.ValueAreaAcceptance {
			score += 10.0
		}
		if len(vol.KeyLevels) >= 3 {
			score += 6.0 * float64(len(vol.KeyLevels))
		}
		switch vol.BreakoutVolume {
		case "CONFIRMED":
			score += 15.0
		case "WEAK":
			score -= 8.0
		}
	}

	if pat := r.Pattern; pat != nil {
		switch pat.VolumeTrend {
		case "INCREASING":
			score += 8.0
		case "DECREASING":
			score -= 5.0
		}
		if pat.Wyckoff != nil {
			switch pat.Wyckoff.VolumeCharacter {
			case "CLIMACTIC":
				score += 12.0
			case "CONFIRMATION":
				score += 15.0
			case "DRYING":
				score -= 8.0
			}
		}
	}

	return clampFactor(score)
}

// scoreStructuralIntegrity rewards clean market structure and penalizes
// flagged liquidity or structural risks.
func (e *Engine) scoreStructuralIntegrity(r *domain.AnalysisResult) float64 {
	score := 50.0

	if smc := r.SMC; smc != nil {
		switch smc.MarketStructure {
		case "CLEAR_BULLISH", "CLEAR_BEARISH":
			score += 20.0
		case "RANGING":
			score += 5.0
		case "TRANSITIONAL":
			score -= 10.0
		}

		score += (smc.TradingBias.Confidence - 50.0) * 0.4

		score += math.Min(10.0, 2.0*float64(len(smc.CriticalLevels)))
		score += math.Min(6.0, 2.0*float64(len(smc.OrderBlockConfluence)))

		score -= 3.0 * float64(len(smc.LiquidityRisks))
		score -= 4.0 * float64(len(smc.StructuralRisks))
	}

	return clampFactor(score)
}

// hourIn reports whether hour falls in the half-open UTC window [from, to);
// from > to wraps past midnight.
func hourIn(hour, from, to int) bool {
	if from <= to {
		return hour >= from && hour < to
	}
	return hour >= from || hour < to
}
