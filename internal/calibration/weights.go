package calibration

import (
	"fmt"
	"math"
)

// WeightSumTolerance is the allowed drift from 1.0 for a weight profile.
const WeightSumTolerance = 0.001

// Weights assigns one weight per confidence factor. A valid profile is
// non-negative and sums to 1.0 within tolerance.
type Weights struct {
	TechnicalConfluence  float64 `yaml:"technical_confluence" json:"technical_confluence"`
	HistoricalSuccess    float64 `yaml:"historical_success" json:"historical_success"`
	MarketConditions     float64 `yaml:"market_conditions" json:"market_conditions"`
	VolatilityAdjustment float64 `yaml:"volatility_adjustment" json:"volatility_adjustment"`
	VolumeConfirmation   float64 `yaml:"volume_confirmation" json:"volume_confirmation"`
	StructuralIntegrity  float64 `yaml:"structural_integrity" json:"structural_integrity"`
}

// StandardWeights is the default profile.
func StandardWeights() Weights {
	return Weights{
		TechnicalConfluence:  0.25,
		HistoricalSuccess:    0.20,
		MarketConditions:     0.15,
		VolatilityAdjustment: 0.15,
		VolumeConfirmation:   0.10,
		StructuralIntegrity:  0.15,
	}
}

// UltraWeights emphasizes confluence and historical success over structural
// integrity; used when the caller demands higher conviction.
func UltraWeights() Weights {
	return Weights{
		TechnicalConfluence:  0.30,
		HistoricalSuccess:    0.25,
		MarketConditions:     0.15,
		VolatilityAdjustment: 0.15,
		VolumeConfirmation:   0.10,
		StructuralIntegrity:  0.05,
	}
}

// ProfileFor selects the built-in profile for the mode.
func ProfileFor(ultraMode bool) Weights {
	if ultraMode {
		return UltraWeights()
	}
	return StandardWeights()
}

// Sum returns the total weight mass.
func (w Weights) Sum() float64 {
	return w.TechnicalConfluence + w.HistoricalSuccess + w.MarketConditions +
		w.VolatilityAdjustment + w.VolumeConfirmation + w.StructuralIntegrity
}

// Validate rejects malformed profiles: a bad profile is a caller defect, the
// one input class that aborts instead of degrading.
func (w Weights) Validate() error {
	for name, v := range map[string]float64{
		"technical_confluence":  w.TechnicalConfluence,
		"historical_success":    w.HistoricalSuccess,
		"market_conditions":     w.MarketConditions,
		"volatility_adjustment": w.VolatilityAdjustment,
		"volume_confirmation":   w.VolumeConfirmation,
		"structural_integrity":  w.StructuralIntegrity,
	} {
		if v < 0 {
			return fmt.Errorf("weight %s is negative: %.4f", name, v)
		}
	}
	if sum := w.Sum(); math.Abs(sum-1.0) > WeightSumTolerance {
		return fmt.Errorf("weights sum to %.4f, expected 1.0 ±%.3f", sum, WeightSumTolerance)
	}
	return nil
}

// Apply computes the weighted composite of the factor set.
func (w Weights) Apply(f Factors) float64 {
	return f.TechnicalConfluence*w.TechnicalConfluence +
		f.HistoricalSuccess*w.HistoricalSuccess +
		f.MarketConditions*w.MarketConditions +
		f.VolatilityAdjustment*w.VolatilityAdjustment +
		f.VolumeConfirmation*w.VolumeConfirmation +
		f.StructuralIntegrity*w.StructuralIntegrity
}
