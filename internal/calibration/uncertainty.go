package calibration

import (
	"math"

	"github.com/sawpanic/tradegate/internal/domain"
)

// Reliability labels how trustworthy the calibrated score is, derived from
// the width of its uncertainty interval.
type Reliability string

const (
	ReliabilityVeryHigh Reliability = "VERY_HIGH"
	ReliabilityHigh     Reliability = "HIGH"
	ReliabilityMedium   Reliability = "MEDIUM"
	ReliabilityLow      Reliability = "LOW"
)

// Interval bounds the calibrated score. Bounds clamp to [0,100] around the
// center; uncertainty itself lives in [5,30].
type Interval struct {
	Center      float64     `json:"center"`
	LowerBound  float64     `json:"lower_bound"`
	UpperBound  float64     `json:"upper_bound"`
	Uncertainty float64     `json:"uncertainty"`
	Reliability Reliability `json:"reliability"`
}

// computeInterval derives the uncertainty interval from factor dispersion
// plus data-quality, signal-clarity, and market-noise estimates. Independent
// of the weighted composite: disagreeing factors widen the interval even
// when the weights happen to average them to a confident-looking center.
func computeInterval(factors Factors, r *domain.AnalysisResult, center float64) Interval {
	values := factors.values()

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	variance := 0.0
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	variance /= float64(len(values))
	stddev := math.Sqrt(variance)

	uncertainty := math.Min(25.0, stddev*0.6)
	uncertainty += (100.0 - dataQuality(r)) * 0.15
	uncertainty += (100.0 - signalClarity(r)) * 0.1
	uncertainty += marketNoise(r) * 0.08
	uncertainty = math.Min(30.0, math.Max(5.0, uncertainty))

	var reliability Reliability
	switch {
	case uncertainty <= 8:
		reliability = ReliabilityVeryHigh
	case uncertainty <= 15:
		reliability = ReliabilityHigh
	case uncertainty <= 22:
		reliability = ReliabilityMedium
	default:
		reliability = ReliabilityLow
	}

	return Interval{
		Center:      center,
		LowerBound:  math.Max(0.0, center-uncertainty),
		UpperBound:  math.Min(100.0, center+uncertainty),
		Uncertainty: uncertainty,
		Reliability: reliability,
	}
}

// dataQuality scores how much structural context backs the result.
func dataQuality(r *domain.AnalysisResult) float64 {
	quality := 70.0
	if r.MultiTimeframe != nil {
		quality += 15.0
	}
	if r.SMC != nil {
		quality += 10.0
	}
	if r.Pattern != nil {
		quality += 10.0
	}
	return math.Min(100.0, quality)
}

// signalClarity scores how unambiguous the directional call is.
func signalClarity(r *domain.AnalysisResult) float64 {
	clarity := 50.0
	if r.Signal != domain.SignalNeutral {
		clarity += 20.0
		if r.OverallConfidenceScore >= 75 {
			clarity += 20.0
		} else if r.OverallConfidenceScore >= 50 {
			clarity += 10.0
		}
	}
	if mtf := r.MultiTimeframe; mtf != nil && mtf.OverallTrend != "MIXED" {
		clarity += 15.0
	}
	return math.Min(100.0, clarity)
}

// marketNoise estimates background noise; strong pattern confluence is the
// one available evidence that conditions are readable.
func marketNoise(r *domain.AnalysisResult) float64 {
	noise := 30.0
	if pat := r.Pattern; pat != nil && pat.PatternConfluenceScore > 70 {
		noise -= 8.0
	}
	return math.Min(100.0, math.Max(0.0, noise))
}
