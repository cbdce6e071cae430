package structure

import (
	"math"
	"sort"

	"github.com/sawpanic/tradegate/internal/domain"
)

// PoolType identifies how a liquidity pool was inferred.
type PoolType string

const (
	PoolEqualHighs   PoolType = "EQUAL_HIGHS"
	PoolEqualLows    PoolType = "EQUAL_LOWS"
	PoolStopCluster  PoolType = "STOP_CLUSTER"
	PoolRoundNumber  PoolType = "ROUND_NUMBER"
	PoolPreviousHigh PoolType = "PREVIOUS_HIGH"
	PoolPreviousLow  PoolType = "PREVIOUS_LOW"
)

// PoolIntensity tiers how much resting liquidity a pool likely holds.
type PoolIntensity string

const (
	IntensityLow     PoolIntensity = "LOW"
	IntensityMedium  PoolIntensity = "MEDIUM"
	IntensityHigh    PoolIntensity = "HIGH"
	IntensityExtreme PoolIntensity = "EXTREME"
)

// AvoidanceZone is the price band a stop must not fall inside.
type AvoidanceZone struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Contains reports whether price falls inside the zone.
func (z AvoidanceZone) Contains(price float64) bool {
	return price >= z.Lower && price <= z.Upper
}

// LiquidityPool is a price zone where stop orders are estimated to cluster.
type LiquidityPool struct {
	Price     float64       `json:"price"`
	Type      PoolType      `json:"type"`
	Intensity PoolIntensity `json:"intensity"`
	Zone      AvoidanceZone `json:"zone"`
}

// poolBufferBps is the base half-width of an avoidance zone per pool type.
var poolBufferBps = map[PoolType]float64{
	PoolEqualHighs:   10.0,
	PoolEqualLows:    10.0,
	PoolStopCluster:  15.0,
	PoolRoundNumber:  8.0,
	PoolPreviousHigh: 12.0,
	PoolPreviousLow:  12.0,
}

// intensityMultiplier widens zones for hotter pools.
var intensityMultiplier = map[PoolIntensity]float64{
	IntensityLow:     0.5,
	IntensityMedium:  1.0,
	IntensityHigh:    1.5,
	IntensityExtreme: 2.0,
}

func newPool(price float64, poolType PoolType, intensity PoolIntensity) LiquidityPool {
	buffer := price * poolBufferBps[poolType] * intensityMultiplier[intensity] / 10000.0
	return LiquidityPool{
		Price:     price,
		Type:      poolType,
		Intensity: intensity,
		Zone: AvoidanceZone{
			Lower: price - buffer,
			Upper: price + buffer,
		},
	}
}

// equalExtremePools finds groups of swing highs (lows) within a tight
// tolerance of each other: textbook resting-stop magnets. Group size drives
// intensity.
func equalExtremePools(swings []swing, tolerance float64, wantHighs bool) []LiquidityPool {
	var prices []float64
	for _, s := range swings {
		if s.high == wantHighs {
			prices = append(prices, s.price)
		}
	}
	if len(prices) < 2 {
		return nil
	}
	sort.Float64s(prices)

	poolType := PoolEqualLows
	if wantHighs {
		poolType = PoolEqualHighs
	}

	var pools []LiquidityPool
	groupStart := 0
	for i := 1; i <= len(prices); i++ {
		if i < len(prices) && prices[i]-prices[groupStart] <= prices[groupStart]*tolerance {
			continue
		}
		group := prices[groupStart:i]
		if len(group) >= 2 {
			sum := 0.0
			for _, p := range group {
				sum += p
			}
			intensity := IntensityMedium
			if len(group) >= 4 {
				intensity = IntensityExtreme
			} else if len(group) == 3 {
				intensity = IntensityHigh
			}
			pools = append(pools, newPool(sum/float64(len(group)), poolType, intensity))
		}
		groupStart = i
	}
	return pools
}

// stopClusterPools places inferred stop clusters just beyond the most
// significant recent swing extremes, where breached-structure stops rest.
func stopClusterPools(swings []swing, current float64, offsetBps float64) []LiquidityPool {
	var lastHigh, lastLow *swing
	for i := range swings {
		s := swings[i]
		if s.high {
			if lastHigh == nil || s.index > lastHigh.index {
				lastHigh = &swings[i]
			}
		} else {
			if lastLow == nil || s.index > lastLow.index {
				lastLow = &swings[i]
			}
		}
	}

	offset := offsetBps / 10000.0
	var pools []LiquidityPool
	if lastHigh != nil && lastHigh.price > current {
		pools = append(pools, newPool(lastHigh.price*(1.0+offset), PoolStopCluster, IntensityHigh))
	}
	if lastLow != nil && lastLow.price < current {
		pools = append(pools, newPool(lastLow.price*(1.0-offset), PoolStopCluster, IntensityHigh))
	}
	return pools
}

// roundNumberPools marks the coarse round numbers bracketing the current
// price; these attract both stops and limit orders.
func roundNumberPools(current float64) []LiquidityPool {
	if current <= 0 {
		return nil
	}
	// One magnitude coarser than the round-number levels: ~10% of price.
	step := math.Pow(10, math.Round(math.Log10(current*0.1)))
	if step <= 0 {
		return nil
	}

	below := math.Floor(current/step) * step
	above := below + step

	var pools []LiquidityPool
	if below > 0 {
		pools = append(pools, newPool(below, PoolRoundNumber, IntensityMedium))
	}
	pools = append(pools, newPool(above, PoolRoundNumber, IntensityMedium))
	return pools
}

// previousExtremePools marks the prior session's high and low.
func previousExtremePools(history []domain.Candle, pivotWindow int) []LiquidityPool {
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

	return []LiquidityPool{
		newPool(high, PoolPreviousHigh, IntensityHigh),
		newPool(low, PoolPreviousLow, IntensityHigh),
	}
}

// DetectPools derives liquidity pools from equal extremes, stop clusters,
// round numbers, and the previous session's range, sorted by distance from
// the current price.
func (v *Validator) DetectPools(history []domain.Candle) []LiquidityPool {
	if len(history) == 0 {
		return nil
	}
	current := history[len(history)-1].Close

	swings := findSwings(history, v.config.SwingLookback)

	var pools []LiquidityPool
	pools = append(pools, equalExtremePools(swings, v.config.EqualTolerance, true)...)
	pools = append(pools, equalExtremePools(swings, v.config.EqualTolerance, false)...)
	pools = append(pools, stopClusterPools(swings, current, v.config.StopClusterOffsetBps)...)
	pools = append(pools, roundNumberPools(current)...)
	pools = append(pools, previousExtremePools(history, v.config.PivotWindow)...)

	sort.Slice(pools, func(i, j int) bool {
		return math.Abs(pools[i].Price-current) < math.Abs(pools[j].Price-current)
	})
	return pools
}
