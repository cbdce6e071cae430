package admission

import (
	"github.com/sawpanic/tradegate/internal/calibration"
	"github.com/sawpanic/tradegate/internal/gate"
	"github.com/sawpanic/tradegate/internal/riskreward"
	"github.com/sawpanic/tradegate/internal/structure"
)

// Config assembles the configuration of every pipeline stage.
type Config struct {
	Calibration *calibration.Config `yaml:"calibration"`
	RiskReward  *riskreward.Config  `yaml:"risk_reward"`
	Structure   *structure.Config   `yaml:"structure"`
	Gate        *gate.Config        `yaml:"gate"`
}

// DefaultConfig returns the production pipeline configuration.
func DefaultConfig() *Config {
	return &Config{
		Calibration: calibration.DefaultConfig(),
		RiskReward:  riskreward.DefaultConfig(),
		Structure:   structure.DefaultConfig(),
		Gate:        gate.DefaultConfig(),
	}
}
