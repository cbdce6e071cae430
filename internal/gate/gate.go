// Package gate renders the final fail-closed admission decision for an
// analysis result. It reclassifies the confidence label, parses the
// self-reported ratio and trade prices, computes the dynamic risk/reward
// floor, optionally runs structural validation, then applies exactly one
// admission policy. Any failure forces the no-trade shape: signal NEUTRAL,
// trade nil, ratio nil.
package gate

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/sawpanic/tradegate/internal/domain"
	"github.com/sawpanic/tradegate/internal/riskreward"
	"github.com/sawpanic/tradegate/internal/structure"
)

// Config contains the gate's own thresholds. Policy floors live in the
// PolicyRouter, dynamic RR floors in the calculator.
type Config struct {
	// ConfidenceThreshold reclassifies the label from the score before any
	// other check. Fixed in both modes; the calibration engine's own HIGH
	// floor moves to 85 in ultra mode, so a score in [75,85) can arrive
	// labeled LOW and leave HIGH.
	ConfidenceThreshold float64 `yaml:"confidence_threshold"`

	// ExtremeRegimeBump raises the minimum RR requirement when the detected
	// volatility regime is EXTREME, in both modes.
	ExtremeRegimeBump float64 `yaml:"extreme_regime_bump"`
}

// DefaultConfig returns the production gate thresholds.
func DefaultConfig() *Config {
	return &Config{
		ConfidenceThreshold: 75.0,
		ExtremeRegimeBump:   0.2,
	}
}

// Outcome classifies what the gate did to a result.
type Outcome string

const (
	// OutcomeAdmitted passes the trade through unchanged.
	OutcomeAdmitted Outcome = "admitted"
	// OutcomeStripped removes the trade from a neutral or low-confidence
	// result; the signal itself is left alone.
	OutcomeStripped Outcome = "stripped"
	// OutcomeRejected forces the result to signal NEUTRAL with no trade.
	OutcomeRejected Outcome = "rejected"
)

// Check is the result of a single admission check.
type Check struct {
	Name        string      `json:"name"`
	Passed      bool        `json:"passed"`
	Value       interface{} `json:"value"`
	Threshold   interface{} `json:"threshold"`
	Description string      `json:"description"`
}

// Decision carries the full evidence trail behind one gating call.
type Decision struct {
	Outcome   Outcome   `json:"outcome"`
	Admitted  bool      `json:"admitted"`
	Policy    string    `json:"policy"`
	Mode      string    `json:"mode"`
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`

	ParsedRatio  *float64                    `json:"parsed_ratio,omitempty"`
	ImpliedRatio *float64                    `json:"implied_ratio,omitempty"`
	Requirement  *riskreward.Recommendation  `json:"requirement,omitempty"`
	Validation   *structure.ValidationResult `json:"validation,omitempty"`

	Checks           map[string]*Check `json:"checks"`
	PassedChecks     []string          `json:"passed_checks"`
	FailureReasons   []string          `json:"failure_reasons"`
	EvaluationTimeMs int64             `json:"evaluation_time_ms"`
}

func (d *Decision) record(check *Check, failure string) {
	d.Checks[check.Name] = check
	if check.Passed {
		d.PassedChecks = append(d.PassedChecks, check.Name)
	} else {
		d.FailureReasons = append(d.FailureReasons, failure)
	}
}

// Request is one gating request. History, the asset override, and the
// timeframe override are optional; EvaluatedAt defaults to the current time.
type Request struct {
	Result      *domain.AnalysisResult
	UltraMode   bool
	History     []domain.Candle
	AssetType   riskreward.AssetType
	Timeframe   string
	EvaluatedAt time.Time
}

// Gate is the admission state machine. All dependencies are injected; the
// zero-dependency form (nil everything) gates with built-in defaults and an
// always-neutral history.
type Gate struct {
	rr        *riskreward.Calculator
	validator *structure.Validator
	policies  *PolicyRouter
	config    *Config
}

// New creates a gate. Nil dependencies select defaults.
func New(rr *riskreward.Calculator, validator *structure.Validator, policies *PolicyRouter, config *Config) *Gate {
	if rr == nil {
		rr = riskreward.NewCalculator(nil, nil)
	}
	if validator == nil {
		validator = structure.NewValidator(nil)
	}
	if policies == nil {
		policies = NewPolicyRouterWithDefaults()
	}
	if config == nil {
		config = DefaultConfig()
	}
	return &Gate{rr: rr, validator: validator, policies: policies, config: config}
}

// Decide runs the admission sequence and returns the sanitized result with
// the decision evidence. The input result is never mutated. Errors are
// reserved for caller defects (nil result, corrupt price history) and
// context cancellation; a rejected trade is not an error.
func (g *Gate) Decide(ctx context.Context, req Request) (*domain.AnalysisResult, *Decision, error) {
	start := time.Now()
	if req.Result == nil {
		return nil, nil, fmt.Errorf("gate: nil analysis result")
	}

	at := req.EvaluatedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}

	out := req.Result.Clone()
	policy := g.policies.SelectPolicy(out)

	d := &Decision{
		Policy:         policy.Name,
		Mode:           "standard",
		Timestamp:      at,
		Score:          out.OverallConfidenceScore,
		Checks:         make(map[string]*Check),
		PassedChecks:   []string{},
		FailureReasons: []string{},
	}
	if req.UltraMode {
		d.Mode = "ultra"
	}

	// Reclassify the confidence label from the score.
	if out.OverallConfidenceScore >= g.config.ConfidenceThreshold {
		out.Confidence = domain.ConfidenceHigh
	} else {
		out.Confidence = domain.ConfidenceLow
	}

	dirCheck := &Check{
		Name:        "signal_directional",
		Passed:      out.Signal != domain.SignalNeutral,
		Value:       string(out.Signal),
		Threshold:   "BUY or SELL",
		Description: fmt.Sprintf("Signal %s must be directional", out.Signal),
	}
	d.record(dirCheck, "signal is NEUTRAL, nothing to admit")

	labelCheck := &Check{
		Name:        "confidence_label",
		Passed:      out.Confidence == domain.ConfidenceHigh,
		Value:       out.OverallConfidenceScore,
		Threshold:   g.config.ConfidenceThreshold,
		Description: fmt.Sprintf("Score %.1f ≥ %.1f for HIGH confidence", out.OverallConfidenceScore, g.config.ConfidenceThreshold),
	}
	d.record(labelCheck, fmt.Sprintf("confidence LOW: score %.1f below %.1f", out.OverallConfidenceScore, g.config.ConfidenceThreshold))

	// A neutral or low-confidence result never carries a trade; the signal
	// itself is left alone.
	if !dirCheck.Passed || !labelCheck.Passed {
		out.Trade = nil
		out.RiskRewardRatio = nil
		d.Outcome = OutcomeStripped
		d.EvaluationTimeMs = time.Since(start).Milliseconds()
		return out, d, nil
	}

	// Self-reported ratio.
	var ratioText string
	if out.RiskRewardRatio != nil {
		ratioText = *out.RiskRewardRatio
	}
	ratioValue, ratioOK := ParseRatio(ratioText)
	if ratioOK {
		d.ParsedRatio = &ratioValue
	}
	d.record(&Check{
		Name:        "ratio_parse",
		Passed:      ratioOK,
		Value:       ratioText,
		Threshold:   "X:1, 1:X, Xx, rr=X, or a bare number",
		Description: fmt.Sprintf("Ratio %q must be parseable", ratioText),
	}, fmt.Sprintf("unparseable risk/reward ratio %q", ratioText))

	// Trade price structure.
	trade, parsedOK := ParseTrade(out.Trade)
	structOK := parsedOK && trade.ValidStructure(out.Signal)
	tradeValue := "absent"
	if out.Trade != nil {
		tradeValue = fmt.Sprintf("entry=%s tp=%s sl=%s", out.Trade.EntryPrice, out.Trade.TakeProfit, out.Trade.StopLoss)
	}
	d.record(&Check{
		Name:        "trade_structure",
		Passed:      structOK,
		Value:       tradeValue,
		Threshold:   "BUY: tp > entry > sl; SELL: tp < entry < sl",
		Description: fmt.Sprintf("%s trade prices must be numeric and ordered", out.Signal),
	}, fmt.Sprintf("invalid trade structure for %s (%s)", out.Signal, tradeValue))
	if structOK {
		implied := trade.ImpliedRR(out.Signal)
		d.ImpliedRatio = &implied
	}

	// Dynamic risk/reward floor for this asset, timeframe, and mode.
	asset := req.AssetType
	if asset == "" {
		asset = riskreward.ResolveAsset(out.Summary)
	}
	timeframe := req.Timeframe
	if timeframe == "" {
		timeframe = out.Timeframe
	}
	rec, err := g.rr.RequiredRR(ctx, riskreward.Input{
		AssetType:       asset,
		Timeframe:       timeframe,
		Volatility:      out.VolatilityBucket(),
		ConfidenceScore: out.OverallConfidenceScore,
		UltraMode:       req.UltraMode,
		EvaluatedAt:     at,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("gate: risk/reward requirement: %w", err)
	}
	d.Requirement = rec

	// Structural validation runs only when history is supplied and the trade
	// named a usable entry and stop. Any failure ends the sequence here.
	if len(req.History) > 0 && structOK {
		validation, verr := g.validator.Validate(out.Signal, trade.Entry, trade.StopLoss, req.History, timeframe)
		if verr != nil {
			return nil, nil, fmt.Errorf("gate: structural validation: %w", verr)
		}
		d.Validation = validation
		d.record(&Check{
			Name:        "structural_validation",
			Passed:      validation.OK,
			Value:       trade.StopLoss,
			Threshold:   fmt.Sprintf("%d levels, %d pools", len(validation.Levels), len(validation.Pools)),
			Description: "Stop placement must respect detected structure",
		}, fmt.Sprintf("structural validation failed: %s", validation.Reason))
		if !validation.OK {
			return g.reject(out, d, start)
		}
		if validation.Regime == domain.VolatilityExtreme {
			rec.MinRR = math.Round((rec.MinRR+g.config.ExtremeRegimeBump)*100) / 100
			rec.Adjustments["extreme_regime"] = g.config.ExtremeRegimeBump
		}
	}

	// Selected-policy thresholds. Exactly one policy applies per result.
	thr := policy.Thresholds(req.UltraMode)

	d.record(&Check{
		Name:        "policy_score",
		Passed:      out.OverallConfidenceScore >= thr.MinScore,
		Value:       out.OverallConfidenceScore,
		Threshold:   thr.MinScore,
		Description: fmt.Sprintf("Score %.1f ≥ %.1f (%s policy, %s mode)", out.OverallConfidenceScore, thr.MinScore, policy.Name, d.Mode),
	}, fmt.Sprintf("score %.1f below %s policy floor %.1f", out.OverallConfidenceScore, policy.Name, thr.MinScore))

	if ratioOK {
		d.record(&Check{
			Name:        "ratio_vs_min_rr",
			Passed:      ratioValue >= rec.MinRR,
			Value:       ratioValue,
			Threshold:   rec.MinRR,
			Description: fmt.Sprintf("Ratio %.2f ≥ dynamic minimum %.2f", ratioValue, rec.MinRR),
		}, fmt.Sprintf("ratio %.2f below required minimum %.2f", ratioValue, rec.MinRR))
	}

	if secondary, has := policy.SecondaryValue(out); has {
		d.record(&Check{
			Name:        "secondary_confidence",
			Passed:      secondary >= thr.MinSecondary,
			Value:       secondary,
			Threshold:   thr.MinSecondary,
			Description: fmt.Sprintf("%s %.1f ≥ %.1f", policy.SecondaryMetric, secondary, thr.MinSecondary),
		}, fmt.Sprintf("%s %.1f below floor %.1f", policy.SecondaryMetric, secondary, thr.MinSecondary))
	}

	if len(d.FailureReasons) > 0 {
		return g.reject(out, d, start)
	}

	d.Outcome = OutcomeAdmitted
	d.Admitted = true
	d.EvaluationTimeMs = time.Since(start).Milliseconds()
	return out, d, nil
}

// reject forces the no-trade shape. The confidence label and score survive;
// only the signal and the trade fields change.
func (g *Gate) reject(out *domain.AnalysisResult, d *Decision, start time.Time) (*domain.AnalysisResult, *Decision, error) {
	out.Signal = domain.SignalNeutral
	out.Trade = nil
	out.RiskRewardRatio = nil
	d.Outcome = OutcomeRejected
	d.Admitted = false
	d.EvaluationTimeMs = time.Since(start).Milliseconds()
	return out, d, nil
}
