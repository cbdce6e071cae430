package gate

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/sawpanic/tradegate/internal/domain"
)

// Policy names, in precedence order.
const (
	PolicySMC      = "smc"
	PolicyPattern  = "pattern"
	PolicyMTF      = "multi_timeframe"
	PolicyStandard = "standard"
)

// PolicyThresholds holds the admission floors for one mode.
type PolicyThresholds struct {
	MinScore     float64 `yaml:"min_score"`     // calibrated confidence floor
	MinSecondary float64 `yaml:"min_secondary"` // context-specific confidence floor, 0 when unused
}

// Policy is one admission policy: the score floor per mode plus an optional
// secondary confidence check read from the structural context that selected
// the policy. The risk/reward floor is always the dynamic recommendation,
// never a static number here.
type Policy struct {
	Name            string           `yaml:"name"`
	SecondaryMetric string           `yaml:"secondary_metric,omitempty"`
	Standard        PolicyThresholds `yaml:"standard"`
	Ultra           PolicyThresholds `yaml:"ultra"`
}

// Thresholds returns the floors for the requested mode.
func (p Policy) Thresholds(ultra bool) PolicyThresholds {
	if ultra {
		return p.Ultra
	}
	return p.Standard
}

// SecondaryValue extracts the metric the policy's secondary check reads. The
// second return is false when the policy defines no secondary check. A
// policy whose backing context is missing reads as 0, which fails any
// positive floor.
func (p Policy) SecondaryValue(result *domain.AnalysisResult) (float64, bool) {
	switch p.Name {
	case PolicySMC:
		if result.SMC == nil {
			return 0, true
		}
		return result.SMC.TradingBias.Confidence, true
	case PolicyPattern:
		if result.Pattern == nil {
			return 0, true
		}
		return result.Pattern.PatternConfluenceScore, true
	case PolicyMTF:
		if result.MultiTimeframe == nil {
			return 0, true
		}
		return result.MultiTimeframe.ConfluenceScore, true
	default:
		return 0, false
	}
}

// PolicyConfig contains all four admission policies.
type PolicyConfig struct {
	SMC      Policy `yaml:"smc"`
	Pattern  Policy `yaml:"pattern"`
	MTF      Policy `yaml:"multi_timeframe"`
	Standard Policy `yaml:"standard"`
}

// PolicyRouter selects exactly one policy per result by context precedence.
type PolicyRouter struct {
	config *PolicyConfig
}

// NewPolicyRouter creates a router with configuration loaded from YAML.
func NewPolicyRouter(configPath string) (*PolicyRouter, error) {
	if configPath == "" {
		configPath = "config/gate_policies.yaml"
	}

	config, err := LoadPolicyConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load gate policies: %w", err)
	}

	return &PolicyRouter{config: config}, nil
}

// NewPolicyRouterWithDefaults creates a router with the built-in policy
// table (testing/fallback).
func NewPolicyRouterWithDefaults() *PolicyRouter {
	config := &PolicyConfig{
		SMC: Policy{
			Name:            PolicySMC,
			SecondaryMetric: "trading_bias_confidence",
			Standard:        PolicyThresholds{MinScore: 75, MinSecondary: 70},
			Ultra:           PolicyThresholds{MinScore: 85, MinSecondary: 80},
		},
		Pattern: Policy{
			Name:            PolicyPattern,
			SecondaryMetric: "pattern_confluence_score",
			Standard:        PolicyThresholds{MinScore: 75, MinSecondary: 75},
			Ultra:           PolicyThresholds{MinScore: 85, MinSecondary: 85},
		},
		MTF: Policy{
			Name:            PolicyMTF,
			SecondaryMetric: "confluence_score",
			Standard:        PolicyThresholds{MinScore: 75, MinSecondary: 70},
			Ultra:           PolicyThresholds{MinScore: 85, MinSecondary: 80},
		},
		Standard: Policy{
			Name:     PolicyStandard,
			Standard: PolicyThresholds{MinScore: 75},
			Ultra:    PolicyThresholds{MinScore: 85},
		},
	}

	return &PolicyRouter{config: config}
}

// SelectPolicy picks the one policy whose structural context is present,
// in fixed precedence: SMC, then pattern, then multi-timeframe, then the
// standard single-timeframe policy. Policies never combine.
func (pr *PolicyRouter) SelectPolicy(result *domain.AnalysisResult) Policy {
	switch {
	case result.SMC != nil:
		return pr.config.SMC
	case result.Pattern != nil:
		return pr.config.Pattern
	case result.MultiTimeframe != nil:
		return pr.config.MTF
	default:
		return pr.config.Standard
	}
}

// AllPolicies returns the full table for inspection.
func (pr *PolicyRouter) AllPolicies() map[string]Policy {
	return map[string]Policy{
		PolicySMC:      pr.config.SMC,
		PolicyPattern:  pr.config.Pattern,
		PolicyMTF:      pr.config.MTF,
		PolicyStandard: pr.config.Standard,
	}
}

// LoadPolicyConfig loads the policy table from a YAML file.
func LoadPolicyConfig(configPath string) (*PolicyConfig, error) {
	var data []byte
	var err error

	if filepath.IsAbs(configPath) {
		data, err = os.ReadFile(configPath)
	} else {
		data, err = os.ReadFile(configPath)
		if err != nil {
			rootPath := filepath.Join("../../..", configPath)
			data, err = os.ReadFile(rootPath)
		}
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config PolicyConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := validatePolicyConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid policy configuration: %w", err)
	}

	return &config, nil
}

// validatePolicyConfig ensures every policy is usable before it can gate
// live traffic.
func validatePolicyConfig(config *PolicyConfig) error {
	policies := map[string]*Policy{
		PolicySMC:      &config.SMC,
		PolicyPattern:  &config.Pattern,
		PolicyMTF:      &config.MTF,
		PolicyStandard: &config.Standard,
	}

	for key, policy := range policies {
		if policy.Name == "" {
			policy.Name = key
		}
		if policy.Name != key {
			return fmt.Errorf("policy %s: name %q does not match its key", key, policy.Name)
		}
		for _, mode := range []struct {
			label string
			thr   PolicyThresholds
		}{
			{"standard", policy.Standard},
			{"ultra", policy.Ultra},
		} {
			if mode.thr.MinScore <= 0 || mode.thr.MinScore > 100 {
				return fmt.Errorf("policy %s: %s min_score %.1f outside (0,100]", key, mode.label, mode.thr.MinScore)
			}
			if mode.thr.MinSecondary < 0 || mode.thr.MinSecondary > 100 {
				return fmt.Errorf("policy %s: %s min_secondary %.1f outside [0,100]", key, mode.label, mode.thr.MinSecondary)
			}
		}
		if policy.Ultra.MinScore < policy.Standard.MinScore {
			return fmt.Errorf("policy %s: ultra min_score %.1f below standard %.1f", key, policy.Ultra.MinScore, policy.Standard.MinScore)
		}
	}
	return nil
}
