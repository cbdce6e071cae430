// Package redis serves performance lookups from a Redis keyspace maintained
// by the external trade tracker, with RecordOutcome updating the same keys.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sawpanic/tradegate/internal/history"
)

// Config describes the Redis connection and keyspace.
type Config struct {
	Addr      string        `yaml:"addr"`
	Password  string        `yaml:"password"`
	DB        int           `yaml:"db"`
	KeyPrefix string        `yaml:"key_prefix"` // "tradegate:perf:"
	TTL       time.Duration `yaml:"ttl"`        // 0 = no expiry
}

// DefaultConfig returns a local-Redis configuration.
func DefaultConfig() Config {
	return Config{
		Addr:      "localhost:6379",
		KeyPrefix: "tradegate:perf:",
		TTL:       0,
	}
}

// record is the stored JSON shape: raw counters, so aggregation survives
// updates without read-modify-write races beyond a single key.
type record struct {
	Wins      int       `json:"wins"`
	Total     int       `json:"total"`
	SumRR     float64   `json:"sum_rr"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store implements history.PerformanceStore on Redis.
type Store struct {
	client *redis.Client
	config Config
}

// NewStore connects a Redis-backed performance store.
func NewStore(config Config) *Store {
	client := redis.NewClient(&redis.Options{
		Addr:     config.Addr,
		Password: config.Password,
		DB:       config.DB,

		PoolSize:     10,
		MinIdleConns: 2,

		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,

		MaxRetries:      3,
		MinRetryBackoff: 100 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
	return NewStoreWithClient(client, config)
}

// NewStoreWithClient wraps an existing client; used by tests with redismock.
func NewStoreWithClient(client *redis.Client, config Config) *Store {
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultConfig().KeyPrefix
	}
	return &Store{client: client, config: config}
}

func (s *Store) key(assetType, timeframe string) string {
	return s.config.KeyPrefix + history.Key(assetType, timeframe)
}

// GetPerformance reads and aggregates the stored counters. A missing key
// yields the neutral default.
func (s *Store) GetPerformance(ctx context.Context, assetType, timeframe string) (history.Performance, error) {
	raw, err := s.client.Get(ctx, s.key(assetType, timeframe)).Result()
	if err != nil {
		if err == redis.Nil {
			return history.NeutralPerformance(assetType, timeframe), nil
		}
		return history.Performance{}, fmt.Errorf("failed to read performance key: %w", err)
	}

	var rec record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return history.Performance{}, fmt.Errorf("corrupt performance record for %s: %w", history.Key(assetType, timeframe), err)
	}
	if rec.Total == 0 {
		return history.NeutralPerformance(assetType, timeframe), nil
	}

	return history.Performance{
		AssetType:     assetType,
		Timeframe:     timeframe,
		SuccessRate:   float64(rec.Wins) / float64(rec.Total),
		AvgRiskReward: rec.SumRR / float64(rec.Total),
		SampleSize:    rec.Total,
		UpdatedAt:     rec.UpdatedAt,
	}, nil
}

// RecordOutcome folds one outcome into the stored counters.
func (s *Store) RecordOutcome(ctx context.Context, outcome history.Outcome) error {
	key := s.key(outcome.AssetType, outcome.Timeframe)

	var rec record
	raw, err := s.client.Get(ctx, key).Result()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("failed to read performance key for update: %w", err)
	}
	if err == nil {
		if uerr := json.Unmarshal([]byte(raw), &rec); uerr != nil {
			return fmt.Errorf("corrupt performance record for update: %w", uerr)
		}
	}

	rec.Total++
	if outcome.Win {
		rec.Wins++
	}
	rec.SumRR += outcome.RealizedRR
	rec.UpdatedAt = outcome.ClosedAt
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal performance record: %w", err)
	}
	if err := s.client.Set(ctx, key, data, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to write performance key: %w", err)
	}
	return nil
}

// Ping verifies connectivity for health reporting.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close releases the client connection pool.
func (s *Store) Close() error {
	return s.client.Close()
}
