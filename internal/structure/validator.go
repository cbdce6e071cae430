// Package structure validates a proposed stop-loss against support and
// resistance levels and liquidity pools detected from OHLCV history, and
// classifies the prevailing volatility regime. Everything here is a pure
// function of the supplied price series.
package structure

import (
	"fmt"

	"github.com/sawpanic/tradegate/internal/domain"
)

// Config contains the detection and placement parameters.
type Config struct {
	// Level detection
	SwingLookback    int     `yaml:"swing_lookback"`     // 2 bars each side
	ClusterTolerance float64 `yaml:"cluster_tolerance"`  // 0.003 groups swings into one level
	VolumeBuckets    int     `yaml:"volume_buckets"`     // 24 price buckets
	VolumePeaks      int     `yaml:"volume_peaks"`       // top 3 nodes become levels
	RoundNumberSpan  int     `yaml:"round_number_span"`  // steps each side of price
	PivotWindow      int     `yaml:"pivot_window"`       // 24 bars ≈ previous session
	MaxLevelDistance float64 `yaml:"max_level_distance"` // 0.10 drop levels >10% away

	// Pool detection
	EqualTolerance       float64 `yaml:"equal_tolerance"`         // 0.001 equal highs/lows
	StopClusterOffsetBps float64 `yaml:"stop_cluster_offset_bps"` // 20 beyond the swept extreme

	// Stop placement
	StopBufferBps float64 `yaml:"stop_buffer_bps"` // 5 beyond the protecting level

	// Volatility regime (ATR as fraction of price)
	ATRPeriod       int     `yaml:"atr_period"`         // 14
	LowVolMaxATR    float64 `yaml:"low_vol_max_atr"`    // <0.008 LOW
	MediumVolMaxATR float64 `yaml:"medium_vol_max_atr"` // <0.020 MEDIUM
	HighVolMaxATR   float64 `yaml:"high_vol_max_atr"`   // <0.040 HIGH, else EXTREME
}

// DefaultConfig returns the production detection parameters.
func DefaultConfig() *Config {
	return &Config{
		SwingLookback:    2,
		ClusterTolerance: 0.003,
		VolumeBuckets:    24,
		VolumePeaks:      3,
		RoundNumberSpan:  5,
		PivotWindow:      24,
		MaxLevelDistance: 0.10,

		EqualTolerance:       0.001,
		StopClusterOffsetBps: 20.0,

		StopBufferBps: 5.0,

		ATRPeriod:       14,
		LowVolMaxATR:    0.008,
		MediumVolMaxATR: 0.020,
		HighVolMaxATR:   0.040,
	}
}

// Validator detects structure and checks stop placement against it.
type Validator struct {
	config *Config
}

// NewValidator creates a validator; a nil config selects the defaults.
func NewValidator(config *Config) *Validator {
	if config == nil {
		config = DefaultConfig()
	}
	return &Validator{config: config}
}

// Check is one structural test with its evidence.
type Check struct {
	Name        string  `json:"name"`
	Passed      bool    `json:"passed"`
	Value       float64 `json:"value"`
	Threshold   float64 `json:"threshold"`
	Description string  `json:"description"`
}

// ValidationResult is the outcome of a stop-placement validation.
type ValidationResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`

	Checks []Check                  `json:"checks"`
	Levels []SupportResistanceLevel `json:"levels"`
	Pools  []LiquidityPool          `json:"pools"`
	Regime domain.VolatilityLevel   `json:"regime"`
}

// Validate checks the proposed stop against detected structure. Failing
// either the level rule or the pool rule is fail-closed for the caller:
// the trade must be rejected regardless of score or ratio.
//
// Errors are reserved for caller defects: a non-directional signal,
// non-positive prices, or a corrupt price series. An empty series is not an
// error; structural checks are simply skipped.
func (v *Validator) Validate(signal domain.Signal, entry, stop float64, history []domain.Candle, timeframe string) (*ValidationResult, error) {
	if signal != domain.SignalBuy && signal != domain.SignalSell {
		return nil, fmt.Errorf("validate: signal must be directional, got %q", signal)
	}
	if entry <= 0 || stop <= 0 {
		return nil, fmt.Errorf("validate: prices must be positive (entry=%.4f stop=%.4f)", entry, stop)
	}
	if err := domain.ValidateHistory(history); err != nil {
		return nil, fmt.Errorf("validate: bad price history: %w", err)
	}

	result := &ValidationResult{
		OK:     true,
		Regime: domain.VolatilityMedium,
	}
	if len(history) == 0 {
		result.Reason = "no price history; structural checks skipped"
		return result, nil
	}

	result.Levels = v.DetectLevels(history)
	result.Pools = v.DetectPools(history)
	result.Regime = v.ClassifyRegime(history)

	buffer := v.config.StopBufferBps / 10000.0

	levelCheck := v.checkStopVsLevel(signal, entry, stop, result.Levels, buffer)
	result.Checks = append(result.Checks, levelCheck)
	if !levelCheck.Passed {
		result.OK = false
		result.Reason = levelCheck.Description
		return result, nil
	}

	poolCheck, pool := v.checkStopVsPools(stop, result.Pools)
	result.Checks = append(result.Checks, poolCheck)
	if !poolCheck.Passed {
		result.OK = false
		result.Reason = fmt.Sprintf("stop %.4f inside %s liquidity pool zone [%.4f, %.4f]",
			stop, pool.Type, pool.Zone.Lower, pool.Zone.Upper)
		return result, nil
	}

	return result, nil
}

// checkStopVsLevel enforces the protecting-level rule: a BUY stop sits at or
// beyond the nearest support below entry minus the buffer; a SELL stop at or
// beyond the nearest resistance above entry plus the buffer. With no
// relevant level the stop must simply clear entry by the buffer.
func (v *Validator) checkStopVsLevel(signal domain.Signal, entry, stop float64, levels []SupportResistanceLevel, buffer float64) Check {
	if signal == domain.SignalBuy {
		support, found := nearestSupportBelow(levels, entry)
		if found {
			threshold := support.Price * (1.0 - buffer)
			return Check{
				Name:      "stop_vs_level",
				Passed:    stop <= threshold,
				Value:     stop,
				Threshold: threshold,
				Description: fmt.Sprintf("BUY stop %.4f must sit at or below support %.4f (%s, %d touches) minus buffer",
					stop, support.Price, support.Source, support.Touches),
			}
		}
		threshold := entry * (1.0 - buffer)
		return Check{
			Name:        "stop_vs_level",
			Passed:      stop < threshold,
			Value:       stop,
			Threshold:   threshold,
			Description: fmt.Sprintf("BUY stop %.4f must sit below entry %.4f minus buffer (no support level found)", stop, entry),
		}
	}

	resistance, found := nearestResistanceAbove(levels, entry)
	if found {
		threshold := resistance.Price * (1.0 + buffer)
		return Check{
			Name:      "stop_vs_level",
			Passed:    stop >= threshold,
			Value:     stop,
			Threshold: threshold,
			Description: fmt.Sprintf("SELL stop %.4f must sit at or above resistance %.4f (%s, %d touches) plus buffer",
				stop, resistance.Price, resistance.Source, resistance.Touches),
		}
	}
	threshold := entry * (1.0 + buffer)
	return Check{
		Name:        "stop_vs_level",
		Passed:      stop > threshold,
		Value:       stop,
		Threshold:   threshold,
		Description: fmt.Sprintf("SELL stop %.4f must sit above entry %.4f plus buffer (no resistance level found)", stop, entry),
	}
}

// checkStopVsPools rejects stops resting inside any pool's avoidance zone.
func (v *Validator) checkStopVsPools(stop float64, pools []LiquidityPool) (Check, *LiquidityPool) {
	for i := range pools {
		if pools[i].Zone.Contains(stop) {
			return Check{
				Name:      "stop_vs_pools",
				Passed:    false,
				Value:     stop,
				Threshold: pools[i].Price,
				Description: fmt.Sprintf("stop %.4f rests inside %s pool at %.4f (%s intensity)",
					stop, pools[i].Type, pools[i].Price, pools[i].Intensity),
			}, &pools[i]
		}
	}
	return Check{
		Name:        "stop_vs_pools",
		Passed:      true,
		Value:       stop,
		Description: fmt.Sprintf("stop %.4f clear of %d liquidity pool zones", stop, len(pools)),
	}, nil
}

func nearestSupportBelow(levels []SupportResistanceLevel, entry float64) (SupportResistanceLevel, bool) {
	var best SupportResistanceLevel
	found := false
	for _, lvl := range levels {
		if lvl.Type != LevelSupport || lvl.Price >= entry {
			continue
		}
		if !found || lvl.Price > best.Price {
			best = lvl
			found = true
		}
	}
	return best, found
}

func nearestResistanceAbove(levels []SupportResistanceLevel, entry float64) (SupportResistanceLevel, bool) {
	var best SupportResistanceLevel
	found := false
	for _, lvl := range levels {
		if lvl.Type != LevelResistance || lvl.Price <= entry {
			continue
		}
		if !found || lvl.Price < best.Price {
			best = lvl
			found = true
		}
	}
	return best, found
}
