package history

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local PerformanceStore. It backs tests and the
// CLI default, and doubles as the reference behavior for the persistent
// adapters: same keying, same neutral default, same aggregation.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*aggregate
}

type aggregate struct {
	wins    int
	total   int
	sumRR   float64
	updated time.Time
}

// NewMemoryStore creates an empty in-memory performance store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*aggregate)}
}

// GetPerformance returns the aggregated performance for the key, or the
// neutral default when nothing has been recorded.
func (m *MemoryStore) GetPerformance(_ context.Context, assetType, timeframe string) (Performance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg, ok := m.records[Key(assetType, timeframe)]
	if !ok || agg.total == 0 {
		return NeutralPerformance(assetType, timeframe), nil
	}
	return Performance{
		AssetType:     assetType,
		Timeframe:     timeframe,
		SuccessRate:   float64(agg.wins) / float64(agg.total),
		AvgRiskReward: agg.sumRR / float64(agg.total),
		SampleSize:    agg.total,
		UpdatedAt:     agg.updated,
	}, nil
}

// RecordOutcome folds one concluded trade into the aggregate.
func (m *MemoryStore) RecordOutcome(_ context.Context, outcome Outcome) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := Key(outcome.AssetType, outcome.Timeframe)
	agg, ok := m.records[key]
	if !ok {
		agg = &aggregate{}
		m.records[key] = agg
	}
	agg.total++
	if outcome.Win {
		agg.wins++
	}
	agg.sumRR += outcome.RealizedRR
	agg.updated = outcome.ClosedAt
	if agg.updated.IsZero() {
		agg.updated = time.Now().UTC()
	}
	return nil
}

// Seed installs a precomputed performance record, overwriting any aggregate
// for the key. Intended for tests and fixtures.
func (m *MemoryStore) Seed(perf Performance) {
	m.mu.Lock()
	defer m.mu.Unlock()

	agg := &aggregate{
		total:   perf.SampleSize,
		updated: perf.UpdatedAt,
	}
	if perf.SampleSize > 0 {
		agg.wins = int(perf.SuccessRate*float64(perf.SampleSize) + 0.5)
		agg.sumRR = perf.AvgRiskReward * float64(perf.SampleSize)
	}
	m.records[Key(perf.AssetType, perf.Timeframe)] = agg
}
