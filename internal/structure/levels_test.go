package structure

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/tradegate/internal/domain"
)

// waveSeries oscillates between 95 and 105 with a 10-bar period, closing the
// last bar at 100. Swing lows print at 94.8 and swing highs at 105.2.
func waveSeries(n int) []domain.Candle {
	pattern := []float64{100, 98, 96, 95, 96, 98, 100, 102, 104, 105}
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	out := make([]domain.Candle, n)
	for i := 0; i < n; i++ {
		w := pattern[i%len(pattern)]
		out[i] = domain.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      w,
			High:      w + 0.2,
			Low:       w - 0.2,
			Close:     w,
			Volume:    1000,
		}
	}
	return out
}

func flatSeries(n int, price, halfRange float64) []domain.Candle {
	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	out := make([]domain.Candle, n)
	for i := 0; i < n; i++ {
		out[i] = domain.Candle{
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      price,
			High:      price + halfRange,
			Low:       price - halfRange,
			Close:     price,
			Volume:    500,
		}
	}
	return out
}

func TestFindSwings(t *testing.T) {
	history := waveSeries(37)

	swings := findSwings(history, 2)
	require.Len(t, swings, 7)

	var highs, lows []float64
	for _, s := range swings {
		if s.high {
			highs = append(highs, s.price)
		} else {
			lows = append(lows, s.price)
		}
	}
	assert.Len(t, highs, 3)
	assert.Len(t, lows, 4)
	for _, h := range highs {
		assert.InDelta(t, 105.2, h, 1e-9)
	}
	for _, l := range lows {
		assert.InDelta(t, 94.8, l, 1e-9)
	}
}

func TestFindSwings_TiesBreakPivots(t *testing.T) {
	// Identical bars have no strict extreme anywhere.
	history := flatSeries(20, 100, 0.25)
	assert.Empty(t, findSwings(history, 2))
}

func TestDetectLevels_WaveStructure(t *testing.T) {
	v := NewValidator(nil)
	history := waveSeries(37)

	levels := v.DetectLevels(history)
	require.NotEmpty(t, levels)

	sorted := sort.SliceIsSorted(levels, func(i, j int) bool {
		return levels[i].Distance < levels[j].Distance
	})
	assert.True(t, sorted, "levels come back ordered by distance")

	current := history[len(history)-1].Close
	var swingSupport, swingResistance *SupportResistanceLevel
	for i := range levels {
		lvl := levels[i]
		assert.LessOrEqual(t, lvl.Distance, 0.10, "levels beyond the distance cap are dropped")
		if lvl.Price < current {
			assert.Equal(t, LevelSupport, lvl.Type)
		} else {
			assert.Equal(t, LevelResistance, lvl.Type)
		}
		if lvl.Source == SourceSwing {
			if lvl.Type == LevelSupport {
				swingSupport = &levels[i]
			} else {
				swingResistance = &levels[i]
			}
		}
	}

	require.NotNil(t, swingSupport, "clustered swing lows become one support level")
	assert.InDelta(t, 94.8, swingSupport.Price, 1e-9)
	assert.Equal(t, 4, swingSupport.Touches)
	assert.Equal(t, StrengthStrong, swingSupport.Strength)

	require.NotNil(t, swingResistance)
	assert.InDelta(t, 105.2, swingResistance.Price, 1e-9)
	assert.Equal(t, 3, swingResistance.Touches)
	assert.Equal(t, StrengthStrong, swingResistance.Strength)
}

func TestDetectLevels_EmptyHistory(t *testing.T) {
	v := NewValidator(nil)
	assert.Nil(t, v.DetectLevels(nil))
}

func TestRoundNumberLevels_StepScalesWithPrice(t *testing.T) {
	// 1% of 50250 rounds to the 1000 step in log space.
	levels := roundNumberLevels(50250, 5)
	require.NotEmpty(t, levels)
	for _, lvl := range levels {
		assert.InDelta(t, 0, mod(lvl.Price, 1000), 1e-6, "level %.2f should land on a 1000 step", lvl.Price)
	}

	// ~1% of 1.085 is ~0.01: forex gets 0.01 steps.
	fx := roundNumberLevels(1.085, 5)
	require.NotEmpty(t, fx)
	for _, lvl := range fx {
		assert.InDelta(t, 0, mod(lvl.Price, 0.01), 1e-6)
	}
}

func mod(v, step float64) float64 {
	r := v - float64(int(v/step+0.5))*step
	if r < 0 {
		r = -r
	}
	return r
}

func TestStrengthForTouches(t *testing.T) {
	assert.Equal(t, StrengthWeak, strengthForTouches(1))
	assert.Equal(t, StrengthModerate, strengthForTouches(2))
	assert.Equal(t, StrengthStrong, strengthForTouches(3))
	assert.Equal(t, StrengthStrong, strengthForTouches(4))
	assert.Equal(t, StrengthMajor, strengthForTouches(5))
}
