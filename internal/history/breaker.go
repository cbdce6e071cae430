package history

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// BreakerConfig tunes the circuit breaker guarding a performance reader.
type BreakerConfig struct {
	Name                string        `yaml:"name"`
	MaxRequests         uint32        `yaml:"max_requests"`         // probes allowed half-open
	Interval            time.Duration `yaml:"interval"`             // counter reset window
	Timeout             time.Duration `yaml:"timeout"`              // open→half-open delay
	ConsecutiveFailures uint32        `yaml:"consecutive_failures"` // trip threshold
}

// DefaultBreakerConfig returns the guard settings used in production.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		Name:                "history",
		MaxRequests:         3,
		Interval:            60 * time.Second,
		Timeout:             30 * time.Second,
		ConsecutiveFailures: 5,
	}
}

// BreakerReader wraps a PerformanceReader with a circuit breaker. When the
// backing store fails or the circuit is open, lookups degrade to the neutral
// default so the gating path keeps moving; the degradation is logged, never
// surfaced as an error.
type BreakerReader struct {
	inner   PerformanceReader
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerReader wraps reader with the given breaker settings.
func NewBreakerReader(reader PerformanceReader, config BreakerConfig) *BreakerReader {
	settings := gobreaker.Settings{
		Name:        config.Name,
		MaxRequests: config.MaxRequests,
		Interval:    config.Interval,
		Timeout:     config.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= config.ConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().
				Str("component", "history").
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Performance store circuit state changed")
		},
	}
	return &BreakerReader{
		inner:   reader,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// GetPerformance reads through the breaker, falling back to the neutral
// default on any failure.
func (b *BreakerReader) GetPerformance(ctx context.Context, assetType, timeframe string) (Performance, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.inner.GetPerformance(ctx, assetType, timeframe)
	})
	if err != nil {
		log.Warn().
			Str("component", "history").
			Str("asset", assetType).
			Str("timeframe", timeframe).
			Err(err).
			Msg("Performance lookup degraded to neutral default")
		return NeutralPerformance(assetType, timeframe), nil
	}
	return result.(Performance), nil
}

// State exposes the breaker state for health reporting.
func (b *BreakerReader) State() gobreaker.State {
	return b.breaker.State()
}
