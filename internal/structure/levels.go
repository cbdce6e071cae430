package structure

import (
	"math"
	"sort"

	"github.com/sawpanic/tradegate/internal/domain"
)

// LevelType distinguishes defended price floors from ceilings.
type LevelType string

const (
	LevelSupport    LevelType = "SUPPORT"
	LevelResistance LevelType = "RESISTANCE"
)

// LevelSource identifies how a level was detected.
type LevelSource string

const (
	SourceSwing       LevelSource = "SWING"
	SourceVolume      LevelSource = "VOLUME"
	SourceRoundNumber LevelSource = "ROUND_NUMBER"
	SourcePivot       LevelSource = "PIVOT"
)

// LevelStrength tiers a level by how well defended it has been.
type LevelStrength string

const (
	StrengthWeak     LevelStrength = "WEAK"
	StrengthModerate LevelStrength = "MODERATE"
	StrengthStrong   LevelStrength = "STRONG"
	StrengthMajor    LevelStrength = "MAJOR"
)

// SupportResistanceLevel is one detected horizontal level.
type SupportResistanceLevel struct {
	Price       float64       `json:"price"`
	Type        LevelType     `json:"type"`
	Strength    LevelStrength `json:"strength"`
	Touches     int           `json:"touches"`
	Distance    float64       `json:"distance"` // fraction of current price
	Reliability float64       `json:"reliability"`
	Source      LevelSource   `json:"source"`
}

// swing is an internal fractal pivot.
type swing struct {
	index int
	price float64
	high  bool
}

// findSwings locates fractal pivots: a bar whose high (low) exceeds every
// high (low) within lookback bars on both sides.
func findSwings(history []domain.Candle, lookback int) []swing {
	if lookback < 1 {
		lookback = 1
	}
	var swings []swing

	for i := lookback; i < len(history)-lookback; i++ {
		isHigh := true
		isLow := true
		for j := i - lookback; j <= i+lookback; j++ {
			if j == i {
				continue
			}
			if history[j].High >= history[i].High {
				isHigh = false
			}
			if history[j].Low <= history[i].Low {
				isLow = false
			}
		}
		if isHigh {
			swings = append(swings, swing{index: i, price: history[i].High, high: true})
		}
		if isLow {
			swings = append(swings, swing{index: i, price: history[i].Low, high: false})
		}
	}
	return swings
}

// clusterSwings groups swings whose prices fall within tolerance of each
// other and emits one level per cluster. Touch count drives the strength
// tier; a touch inside the most recent fifth of the history adds recency
// weight to reliability.
func clusterSwings(swings []swing, history []domain.Candle, current, tolerance float64) []SupportResistanceLevel {
	if len(swings) == 0 {
		return nil
	}

	sorted := make([]swing, len(swings))
	copy(sorted, swings)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].price < sorted[j].price })

	recentCutoff := len(history) - len(history)/5

	var levels []SupportResistanceLevel
	clusterStart := 0
	for i := 1; i <= len(sorted); i++ {
		if i < len(sorted) && sorted[i].price-sorted[clusterStart].price <= sorted[clusterStart].price*tolerance {
			continue
		}

		cluster := sorted[clusterStart:i]
		sum := 0.0
		recent := false
		for _, s := range cluster {
			sum += s.price
			if s.index >= recentCutoff {
				recent = true
			}
		}
		price := sum / float64(len(cluster))
		touches := len(cluster)

		reliability := math.Min(100.0, 30.0+20.0*float64(touches))
		if recent {
			reliability = math.Min(100.0, reliability+10.0)
		}

		levels = append(levels, SupportResistanceLevel{
			Price:       price,
			Type:        levelTypeFor(price, current),
			Strength:    strengthForTouches(touches),
			Touches:     touches,
			Distance:    math.Abs(price-current) / current,
			Reliability: reliability,
			Source:      SourceSwing,
		})

		clusterStart = i
	}
	return levels
}

// volumeLevels buckets the traded range into a coarse volume profile and
// emits the highest-volume nodes as levels.
func volumeLevels(history []domain.Candle, current float64, buckets, peaks int) []SupportResistanceLevel {
	if len(history) == 0 || buckets < 2 {
		return nil
	}

	low := history[0].Low
	high := history[0].High
	for _, c := range history {
		low = math.Min(low, c.Low)
		high = math.Max(high, c.High)
	}
	if high <= low {
		return nil
	}

	width := (high - low) / float64(buckets)
	volumes := make([]float64, buckets)
	counts := make([]int, buckets)
	total := 0.0
	for _, c := range history {
		typical := (c.High + c.Low + c.Close) / 3.0
		idx := int((typical - low) / width)
		if idx >= buckets {
			idx = buckets - 1
		}
		volumes[idx] += c.Volume
		counts[idx]++
		total += c.Volume
	}
	if total == 0 {
		return nil
	}

	type node struct {
		idx    int
		volume float64
	}
	nodes := make([]node, 0, buckets)
	for i, v := range volumes {
		if v > 0 {
			nodes = append(nodes, node{idx: i, volume: v})
		}
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].volume > nodes[j].volume })
	if peaks < len(nodes) {
		nodes = nodes[:peaks]
	}

	var levels []SupportResistanceLevel
	for _, n := range nodes {
		price := low + width*(float64(n.idx)+0.5)
		share := n.volume / total
		levels = append(levels, SupportResistanceLevel{
			Price:       price,
			Type:        levelTypeFor(price, current),
			Strength:    strengthForTouches(counts[n.idx] / 4),
			Touches:     counts[n.idx],
			Distance:    math.Abs(price-current) / current,
			Reliability: math.Min(100.0, 40.0+share*200.0),
			Source:      SourceVolume,
		})
	}
	return levels
}

// roundNumberLevels emits psychological levels at a magnitude-scaled step
// around the current price. The step is the power of ten nearest to 1% of
// price in log space, so 50k BTC gets 1000s and a 1.10 EURUSD gets 0.01s.
func roundNumberLevels(current float64, span int) []SupportResistanceLevel {
	if current <= 0 {
		return nil
	}
	step := math.Pow(10, math.Round(math.Log10(current*0.01)))
	if step <= 0 {
		return nil
	}

	base := math.Floor(current/step) * step
	var levels []SupportResistanceLevel
	for i := -span; i <= span+1; i++ {
		price := base + float64(i)*step
		if price <= 0 || math.Abs(price-current) < step*0.01 {
			continue
		}

		// Multiples of ten steps are the stronger magnets.
		strength := StrengthWeak
		reliability := 45.0
		if math.Mod(math.Round(price/step), 10) == 0 {
			strength = StrengthModerate
			reliability = 60.0
		}

		levels = append(levels, SupportResistanceLevel{
			Price:       price,
			Type:        levelTypeFor(price, current),
			Strength:    strength,
			Touches:     0,
			Distance:    math.Abs(price-current) / current,
			Reliability: reliability,
			Source:      SourceRoundNumber,
		})
	}
	return levels
}

// pivotLevels computes classic floor-trader pivots from the most recent
// completed session, approximated as the trailing pivotWindow bars before
// the current one.
func pivotLevels(history []domain.Candle, current float64, pivotWindow int) []SupportResistanceLevel {
	if len(history) < 2 {
		return nil
	}
	start := len(history) - 1 - pivotWindow
	if start < 0 {
		start = 0
	}
	session := history[start : len(history)-1]
	if len(session) == 0 {
		return nil
	}

	high := session[0].High
	low := session[0].Low
	for _, c := range session {
		high = math.Max(high, c.High)
		low = math.Min(low, c.Low)
	}
	closePrice := session[len(session)-1].Close

	pivot := (high + low + closePrice) / 3.0
	r1 := 2.0*pivot - low
	s1 := 2.0*pivot - high
	r2 := pivot + (high - low)
	s2 := pivot - (high - low)

	prices := []struct {
		price       float64
		reliability float64
	}{
		{pivot, 65.0},
		{r1, 55.0},
		{s1, 55.0},
		{r2, 45.0},
		{s2, 45.0},
	}

	var levels []SupportResistanceLevel
	for _, p := range prices {
		if p.price <= 0 {
			continue
		}
		levels = append(levels, SupportResistanceLevel{
			Price:       p.price,
			Type:        levelTypeFor(p.price, current),
			Strength:    StrengthModerate,
			Touches:     0,
			Distance:    math.Abs(p.price-current) / current,
			Reliability: p.reliability,
			Source:      SourcePivot,
		})
	}
	return levels
}

// DetectLevels derives support/resistance levels from all four sources,
// drops levels beyond the configured distance, and returns them sorted by
// distance from the current price.
func (v *Validator) DetectLevels(history []domain.Candle) []SupportResistanceLevel {
	if len(history) == 0 {
		return nil
	}
	current := history[len(history)-1].Close

	swings := findSwings(history, v.config.SwingLookback)

	levels := clusterSwings(swings, history, current, v.config.ClusterTolerance)
	levels = append(levels, volumeLevels(history, current, v.config.VolumeBuckets, v.config.VolumePeaks)...)
	levels = append(levels, roundNumberLevels(current, v.config.RoundNumberSpan)...)
	levels = append(levels, pivotLevels(history, current, v.config.PivotWindow)...)

	filtered := levels[:0]
	for _, lvl := range levels {
		if lvl.Distance <= v.config.MaxLevelDistance {
			filtered = append(filtered, lvl)
		}
	}

	sort.Slice(filtered, func(i, j int) bool { return filtered[i].Distance < filtered[j].Distance })
	return filtered
}

func levelTypeFor(price, current float64) LevelType {
	if price < current {
		return LevelSupport
	}
	return LevelResistance
}

func strengthForTouches(touches int) LevelStrength {
	switch {
	case touches >= 5:
		return StrengthMajor
	case touches >= 3:
		return StrengthStrong
	case touches == 2:
		return StrengthModerate
	default:
		return StrengthWeak
	}
}
