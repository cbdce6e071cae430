// Package domain holds the shared types exchanged between the calibration,
// risk/reward, structure, and gate packages. The AnalysisResult mirrors the
// JSON contract of the upstream generative-analysis collaborator, so its
// field tags use that contract's camelCase names.
package domain

// Signal is the trade direction proposed by the upstream analysis.
type Signal string

const (
	SignalBuy     Signal = "BUY"
	SignalSell    Signal = "SELL"
	SignalNeutral Signal = "NEUTRAL"
)

// ConfidenceLabel is the binary confidence classification attached to a result.
type ConfidenceLabel string

const (
	ConfidenceHigh ConfidenceLabel = "HIGH"
	ConfidenceLow  ConfidenceLabel = "LOW"
)

// VolatilityLevel buckets market volatility for scoring and threshold routing.
type VolatilityLevel string

const (
	VolatilityLow     VolatilityLevel = "LOW"
	VolatilityMedium  VolatilityLevel = "MEDIUM"
	VolatilityHigh    VolatilityLevel = "HIGH"
	VolatilityExtreme VolatilityLevel = "EXTREME"
)

// AnalysisResult is the untrusted trade recommendation produced by the
// generative model. Every field may be absent, malformed, or inconsistent;
// the admission pipeline never assumes otherwise. After gating, Trade and
// RiskRewardRatio are non-nil iff the signal is directional, confidence is
// HIGH, and every selected-policy threshold passed.
type AnalysisResult struct {
	Signal                 Signal          `json:"signal"`
	Confidence             ConfidenceLabel `json:"confidence"`
	OverallConfidenceScore float64         `json:"overallConfidenceScore"`

	Trade           *TradeSetup `json:"trade,omitempty"`
	RiskRewardRatio *string     `json:"riskRewardRatio,omitempty"`

	Timeframe string `json:"timeframe,omitempty"`
	Summary   string `json:"summary,omitempty"`

	// At most one structural context is populated per result.
	MultiTimeframe *MultiTimeframeContext `json:"multiTimeframeContext,omitempty"`
	SMC            *SMCAnalysis           `json:"smcAnalysis,omitempty"`
	Pattern        *PatternAnalysis       `json:"patternAnalysis,omitempty"`

	// Light context; absence yields neutral baselines, never an error.
	MarketConditions *MarketConditions `json:"marketConditions,omitempty"`
	Volume           *VolumeAnalysis   `json:"volumeAnalysis,omitempty"`
}

// TradeSetup carries the model's proposed prices as free-text numeric
// strings. They are parsed, never trusted, during structure validation.
type TradeSetup struct {
	EntryPrice string `json:"entryPrice"`
	TakeProfit string `json:"takeProfit"`
	StopLoss   string `json:"stopLoss"`
}

// MultiTimeframeContext summarizes agreement across analysis timeframes.
type MultiTimeframeContext struct {
	ConfluenceScore    float64  `json:"confluenceScore"`
	ConflictingSignals []string `json:"conflictingSignals,omitempty"`
	OverallTrend       string   `json:"overallTrend"` // BULLISH, BEARISH, MIXED
}

// TradingBias is the directional bias reported by smart-money analysis.
type TradingBias struct {
	Direction  string  `json:"direction"` // BULLISH, BEARISH, NEUTRAL
	Confidence float64 `json:"confidence"`
}

// SMCAnalysis carries smart-money-concepts structural detail.
type SMCAnalysis struct {
	MarketStructure      string      `json:"marketStructure"` // CLEAR_BULLISH, CLEAR_BEARISH, RANGING, TRANSITIONAL
	TradingBias          TradingBias `json:"tradingBias"`
	LiquidityConfluence  []string    `json:"liquidityConfluence,omitempty"`
	OrderBlockConfluence []string    `json:"orderBlockConfluence,omitempty"`
	CriticalLevels       []float64   `json:"criticalLevels,omitempty"`
	LiquidityRisks       []string    `json:"liquidityRisks,omitempty"`
	StructuralRisks      []string    `json:"structuralRisks,omitempty"`
}

// ClassicPattern is a chart pattern with a reliability estimate.
type ClassicPattern struct {
	Name        string  `json:"name"`
	Reliability float64 `json:"reliability"`
}

// HarmonicPattern is a harmonic formation with a validity estimate.
type HarmonicPattern struct {
	Name      string  `json:"name"`
	Validity  float64 `json:"validity"`
	Completed bool    `json:"completed"`
}

// WyckoffContext carries the phase and volume character from Wyckoff analysis.
type WyckoffContext struct {
	Phase           string `json:"phase"`
	VolumeCharacter string `json:"volumeCharacter"` // CLIMACTIC, CONFIRMATION, DRYING
}

// PatternAnalysis carries advanced pattern-recognition detail.
type PatternAnalysis struct {
	PatternConfluenceScore float64           `json:"patternConfluenceScore"`
	ConflictingPatterns    []string          `json:"conflictingPatterns,omitempty"`
	TrendDirection         string            `json:"trendDirection"` // may contain STRONG
	ClassicPatterns        []ClassicPattern  `json:"classicPatterns,omitempty"`
	HarmonicPatterns       []HarmonicPattern `json:"harmonicPatterns,omitempty"`
	VolumeTrend            string            `json:"volumeTrend,omitempty"` // INCREASING, DECREASING, FLAT
	Wyckoff                *WyckoffContext   `json:"wyckoff,omitempty"`
}

// MarketConditions is the model's read of the broader market state.
type MarketConditions struct {
	Phase      string          `json:"phase,omitempty"` // MARKUP, ACCUMULATION, DISTRIBUTION, MARKDOWN, RE_ACCUMULATION, RE_DISTRIBUTION
	Volatility VolatilityLevel `json:"volatility,omitempty"`
}

// VolumeAnalysis carries volume-profile detail used for confirmation scoring.
type VolumeAnalysis struct {
	ProfileShape        string    `json:"profileShape,omitempty"` // BALANCED, TRENDING, ROTATIONAL
	ValueAreaAcceptance bool      `json:"valueAreaAcceptance,omitempty"`
	KeyLevels           []float64 `json:"keyLevels,omitempty"`
	BreakoutVolume      string    `json:"breakoutVolume,omitempty"` // CONFIRMED, WEAK
}

// VolatilityBucket returns the reported volatility level, defaulting to
// MEDIUM when market conditions are absent or unspecified.
func (r *AnalysisResult) VolatilityBucket() VolatilityLevel {
	if r.MarketConditions == nil || r.MarketConditions.Volatility == "" {
		return VolatilityMedium
	}
	return r.MarketConditions.Volatility
}

// Clone returns a deep copy so gating can sanitize without mutating the
// caller's value.
func (r *AnalysisResult) Clone() *AnalysisResult {
	if r == nil {
		return nil
	}
	out := *r
	if r.Trade != nil {
		trade := *r.Trade
		out.Trade = &trade
	}
	if r.RiskRewardRatio != nil {
		ratio := *r.RiskRewardRatio
		out.RiskRewardRatio = &ratio
	}
	if r.MultiTimeframe != nil {
		mtf := *r.MultiTimeframe
		mtf.ConflictingSignals = append([]string(nil), r.MultiTimeframe.ConflictingSignals...)
		out.MultiTimeframe = &mtf
	}
	if r.SMC != nil {
		smc := *r.SMC
		smc.LiquidityConfluence = append([]string(nil), r.SMC.LiquidityConfluence...)
		smc.OrderBlockConfluence = append([]string(nil), r.SMC.OrderBlockConfluence...)
		smc.CriticalLevels = append([]float64(nil), r.SMC.CriticalLevels...)
		smc.LiquidityRisks = append([]string(nil), r.SMC.LiquidityRisks...)
		smc.StructuralRisks = append([]string(nil), r.SMC.StructuralRisks...)
		out.SMC = &smc
	}
	if r.Pattern != nil {
		pat := *r.Pattern
		pat.ConflictingPatterns = append([]string(nil), r.Pattern.ConflictingPatterns...)
		pat.ClassicPatterns = append([]ClassicPattern(nil), r.Pattern.ClassicPatterns...)
		pat.HarmonicPatterns = append([]HarmonicPattern(nil), r.Pattern.HarmonicPatterns...)
		if r.Pattern.Wyckoff != nil {
			wy := *r.Pattern.Wyckoff
			pat.Wyckoff = &wy
		}
		out.Pattern = &pat
	}
	if r.MarketConditions != nil {
		mc := *r.MarketConditions
		out.MarketConditions = &mc
	}
	if r.Volume != nil {
		vol := *r.Volume
		vol.KeyLevels = append([]float64(nil), r.Volume.KeyLevels...)
		out.Volume = &vol
	}
	return &out
}
