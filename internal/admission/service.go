// Package admission runs the full pipeline for one untrusted analysis
// result: calibrate confidence, then gate the trade. It owns the decision
// identifiers, the structured logging, and the fan-out to decision
// observers; the stages themselves stay pure.
package admission

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/tradegate/internal/calibration"
	"github.com/sawpanic/tradegate/internal/domain"
	"github.com/sawpanic/tradegate/internal/gate"
	"github.com/sawpanic/tradegate/internal/history"
	"github.com/sawpanic/tradegate/internal/riskreward"
	"github.com/sawpanic/tradegate/internal/structure"
)

// Request is one admission request as submitted by a caller. Everything
// beyond the result is optional.
type Request struct {
	Result      *domain.AnalysisResult `json:"result"`
	UltraMode   bool                   `json:"ultraMode,omitempty"`
	History     []domain.Candle        `json:"history,omitempty"`
	AssetType   string                 `json:"assetType,omitempty"`
	Timeframe   string                 `json:"timeframe,omitempty"`
	Weights     *calibration.Weights   `json:"weights,omitempty"`
	EvaluatedAt time.Time              `json:"evaluatedAt,omitempty"`
}

// DecisionRecord is the full account of one admission decision.
type DecisionRecord struct {
	ID          string                 `json:"id"`
	ReceivedAt  time.Time              `json:"receivedAt"`
	UltraMode   bool                   `json:"ultraMode"`
	Result      *domain.AnalysisResult `json:"result"` // sanitized, safe to display
	Calibration *calibration.Result    `json:"calibration"`
	Decision    *gate.Decision         `json:"decision"`
}

// DecisionObserver is notified synchronously after every decision. Metrics
// and the live decision stream hang off this.
type DecisionObserver interface {
	ObserveDecision(record *DecisionRecord)
}

// Service wires the calibration engine and the gate over a shared history
// reader. All dependencies are injected at construction.
type Service struct {
	config     *Config
	calibrator *calibration.Engine
	gate       *gate.Gate
	policies   *gate.PolicyRouter
	outcomes   history.PerformanceStore
	observers  []DecisionObserver
}

// NewService builds the pipeline. The reader feeds risk/reward lookups and
// may be breaker-wrapped; outcomes is the write side of the history store
// and may be nil for a read-only pipeline. A nil config or policy router
// selects defaults.
func NewService(config *Config, reader history.PerformanceReader, outcomes history.PerformanceStore, policies *gate.PolicyRouter, observers ...DecisionObserver) *Service {
	if config == nil {
		config = DefaultConfig()
	}
	if policies == nil {
		policies = gate.NewPolicyRouterWithDefaults()
	}

	calculator := riskreward.NewCalculator(reader, config.RiskReward)
	validator := structure.NewValidator(config.Structure)

	return &Service{
		config:     config,
		calibrator: calibration.NewEngine(config.Calibration),
		gate:       gate.New(calculator, validator, policies, config.Gate),
		policies:   policies,
		outcomes:   outcomes,
		observers:  observers,
	}
}

// Process calibrates the result, overwrites its confidence fields, and
// gates the trade. The caller's result value is never mutated.
func (s *Service) Process(ctx context.Context, req Request) (*DecisionRecord, error) {
	if req.Result == nil {
		return nil, fmt.Errorf("admission: nil analysis result")
	}

	at := req.EvaluatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	id := uuid.New().String()

	calibrated, err := s.calibrator.Calibrate(calibration.Input{
		Result:      req.Result,
		UltraMode:   req.UltraMode,
		Weights:     req.Weights,
		EvaluatedAt: at,
	})
	if err != nil {
		return nil, fmt.Errorf("admission: calibration: %w", err)
	}

	working := req.Result.Clone()
	working.OverallConfidenceScore = calibrated.Score
	working.Confidence = calibrated.Label

	sanitized, decision, err := s.gate.Decide(ctx, gate.Request{
		Result:      working,
		UltraMode:   req.UltraMode,
		History:     req.History,
		AssetType:   riskreward.AssetType(req.AssetType),
		Timeframe:   req.Timeframe,
		EvaluatedAt: at,
	})
	if err != nil {
		return nil, fmt.Errorf("admission: gate: %w", err)
	}

	record := &DecisionRecord{
		ID:          id,
		ReceivedAt:  at,
		UltraMode:   req.UltraMode,
		Result:      sanitized,
		Calibration: calibrated,
		Decision:    decision,
	}

	log.Info().
		Str("decision_id", id).
		Str("outcome", string(decision.Outcome)).
		Str("policy", decision.Policy).
		Str("mode", decision.Mode).
		Str("signal", string(sanitized.Signal)).
		Float64("score", decision.Score).
		Int64("gate_ms", decision.EvaluationTimeMs).
		Msg("Admission decision rendered")

	for _, observer := range s.observers {
		observer.ObserveDecision(record)
	}

	return record, nil
}

// Calibrate runs only the confidence calibration stage.
func (s *Service) Calibrate(req Request) (*calibration.Result, error) {
	if req.Result == nil {
		return nil, fmt.Errorf("admission: nil analysis result")
	}
	result, err := s.calibrator.Calibrate(calibration.Input{
		Result:      req.Result,
		UltraMode:   req.UltraMode,
		Weights:     req.Weights,
		EvaluatedAt: req.EvaluatedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("admission: calibration: %w", err)
	}
	return result, nil
}

// Policies returns the active admission policy table.
func (s *Service) Policies() map[string]gate.Policy {
	return s.policies.AllPolicies()
}

// RecordOutcome forwards a concluded trade outcome to the history store.
// Fails when the pipeline was assembled without a write side.
func (s *Service) RecordOutcome(ctx context.Context, outcome history.Outcome) error {
	if s.outcomes == nil {
		return fmt.Errorf("admission: history store is read-only")
	}
	if err := s.outcomes.RecordOutcome(ctx, outcome); err != nil {
		return fmt.Errorf("admission: record outcome: %w", err)
	}
	log.Debug().
		Str("asset_type", outcome.AssetType).
		Str("timeframe", outcome.Timeframe).
		Bool("win", outcome.Win).
		Float64("realized_rr", outcome.RealizedRR).
		Msg("Trade outcome recorded")
	return nil
}
