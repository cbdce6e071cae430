package structure

import (
	"math"

	"github.com/sawpanic/tradegate/internal/domain"
)

// atr computes the average true range over the trailing period bars.
func atr(history []domain.Candle, period int) float64 {
	if len(history) < 2 {
		return 0
	}
	start := len(history) - period
	if start < 1 {
		start = 1
	}

	sum := 0.0
	count := 0
	for i := start; i < len(history); i++ {
		prevClose := history[i-1].Close
		tr := math.Max(history[i].High-history[i].Low,
			math.Max(math.Abs(history[i].High-prevClose), math.Abs(history[i].Low-prevClose)))
		sum += tr
		count++
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

// ClassifyRegime buckets volatility by ATR as a fraction of the last close.
// Too little history reads as MEDIUM: no evidence either way.
func (v *Validator) ClassifyRegime(history []domain.Candle) domain.VolatilityLevel {
	if len(history) < v.config.ATRPeriod/2 {
		return domain.VolatilityMedium
	}
	current := history[len(history)-1].Close
	if current <= 0 {
		return domain.VolatilityMedium
	}

	atrPct := atr(history, v.config.ATRPeriod) / current
	switch {
	case atrPct < v.config.LowVolMaxATR:
		return domain.VolatilityLow
	case atrPct < v.config.MediumVolMaxATR:
		return domain.VolatilityMedium
	case atrPct < v.config.HighVolMaxATR:
		return domain.VolatilityHigh
	default:
		return domain.VolatilityExtreme
	}
}
