// Package history defines the read-only historical-performance contract the
// admission pipeline consumes, plus the write side used by the external
// trade-tracking collaborator. Adapters (in-memory, Postgres, Redis) live
// alongside and in subpackages.
package history

import (
	"context"
	"fmt"
	"time"
)

// Performance aggregates past trade outcomes for one (asset, timeframe) pair.
type Performance struct {
	AssetType     string    `json:"asset_type"`
	Timeframe     string    `json:"timeframe"`
	SuccessRate   float64   `json:"success_rate"`    // 0.0-1.0
	AvgRiskReward float64   `json:"avg_risk_reward"` // realized reward:risk
	SampleSize    int       `json:"sample_size"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NeutralPerformance is the documented default when no history exists for a
// key: success rate 0 with an assumed 2.0 realized RR. Callers treat it as
// "no adjustment evidence", not as a failing record.
func NeutralPerformance(assetType, timeframe string) Performance {
	return Performance{
		AssetType:     assetType,
		Timeframe:     timeframe,
		SuccessRate:   0.0,
		AvgRiskReward: 2.0,
		SampleSize:    0,
	}
}

// Outcome is a single concluded trade reported by the trade tracker.
type Outcome struct {
	AssetType        string    `json:"asset_type"`
	Timeframe        string    `json:"timeframe"`
	Win              bool      `json:"win"`
	RealizedRR       float64   `json:"realized_rr"`
	ClosedAt         time.Time `json:"closed_at"`
	RecommendationID string    `json:"recommendation_id,omitempty"`
}

// PerformanceReader is the read-only lookup the gating path depends on. A
// missing key returns the neutral default, never an error; errors are
// reserved for infrastructure failures.
type PerformanceReader interface {
	GetPerformance(ctx context.Context, assetType, timeframe string) (Performance, error)
}

// PerformanceStore adds the write side used outside the gating path.
type PerformanceStore interface {
	PerformanceReader
	RecordOutcome(ctx context.Context, outcome Outcome) error
}

// Key renders the canonical store key for an (asset, timeframe) pair.
func Key(assetType, timeframe string) string {
	return fmt.Sprintf("%s:%s", assetType, timeframe)
}
