// Package postgres persists trade outcomes and serves the aggregated
// performance lookups the gating path consumes.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sawpanic/tradegate/internal/history"
)

// Schema for the outcome table. Idempotent; applied by the operator or on
// demand by the serve command.
const Schema = `
CREATE TABLE IF NOT EXISTS trade_outcomes (
    id                SERIAL PRIMARY KEY,
    asset_type        TEXT        NOT NULL,
    timeframe         TEXT        NOT NULL,
    win               BOOLEAN     NOT NULL,
    realized_rr       DOUBLE PRECISION NOT NULL,
    recommendation_id TEXT,
    closed_at         TIMESTAMPTZ NOT NULL,
    created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (recommendation_id)
);
CREATE INDEX IF NOT EXISTS idx_outcomes_key ON trade_outcomes (asset_type, timeframe);`

// store implements history.PerformanceStore on PostgreSQL.
type store struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewStore creates a PostgreSQL performance store with a per-query timeout.
func NewStore(db *sqlx.DB, timeout time.Duration) history.PerformanceStore {
	return &store{
		db:      db,
		timeout: timeout,
	}
}

// GetPerformance aggregates outcomes for the key. A key with no rows yields
// the neutral default, not an error.
func (s *store) GetPerformance(ctx context.Context, assetType, timeframe string) (history.Performance, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	query := `
		SELECT
			COUNT(*)                                     AS sample_size,
			COALESCE(AVG(CASE WHEN win THEN 1.0 ELSE 0.0 END), 0) AS success_rate,
			COALESCE(AVG(realized_rr), 0)                AS avg_rr,
			COALESCE(MAX(closed_at), to_timestamp(0))    AS updated_at
		FROM trade_outcomes
		WHERE asset_type = $1 AND timeframe = $2`

	var row struct {
		SampleSize  int       `db:"sample_size"`
		SuccessRate float64   `db:"success_rate"`
		AvgRR       float64   `db:"avg_rr"`
		UpdatedAt   time.Time `db:"updated_at"`
	}
	if err := s.db.GetContext(ctx, &row, query, assetType, timeframe); err != nil {
		if err == sql.ErrNoRows {
			return history.NeutralPerformance(assetType, timeframe), nil
		}
		return history.Performance{}, fmt.Errorf("failed to query performance for %s: %w", history.Key(assetType, timeframe), err)
	}
	if row.SampleSize == 0 {
		return history.NeutralPerformance(assetType, timeframe), nil
	}

	return history.Performance{
		AssetType:     assetType,
		Timeframe:     timeframe,
		SuccessRate:   row.SuccessRate,
		AvgRiskReward: row.AvgRR,
		SampleSize:    row.SampleSize,
		UpdatedAt:     row.UpdatedAt,
	}, nil
}

// RecordOutcome inserts one concluded trade. Re-reporting the same
// recommendation is tolerated as a no-op.
func (s *store) RecordOutcome(ctx context.Context, outcome history.Outcome) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	closedAt := outcome.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO trade_outcomes (asset_type, timeframe, win, realized_rr, recommendation_id, closed_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6)`

	_, err := s.db.ExecContext(ctx, query,
		outcome.AssetType, outcome.Timeframe, outcome.Win,
		outcome.RealizedRR, outcome.RecommendationID, closedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil // duplicate report of the same recommendation
		}
		return fmt.Errorf("failed to record outcome: %w", err)
	}
	return nil
}
