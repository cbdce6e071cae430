// Package calibration loads and validates the confidence weight profiles
// from YAML, with built-in defaults so the pipeline runs with no files.
package calibration

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"

	calib "github.com/sawpanic/tradegate/internal/calibration"
)

// ProfilesConfig represents the weight-profile configuration file.
type ProfilesConfig struct {
	Profiles   map[string]calib.Weights `yaml:"profiles"`
	Validation ValidationConfig         `yaml:"validation"`
}

// ValidationConfig defines profile validation parameters.
type ValidationConfig struct {
	WeightSumTolerance float64 `yaml:"weight_sum_tolerance"`
}

// WeightsLoader handles loading and validation of confidence weight profiles.
type WeightsLoader struct {
	config *ProfilesConfig
}

// NewWeightsLoader creates a new weights loader.
func NewWeightsLoader() *WeightsLoader {
	return &WeightsLoader{}
}

// LoadFromFile loads weight profiles from a YAML configuration file.
func (wl *WeightsLoader) LoadFromFile(configPath string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	var config ProfilesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := wl.validateConfig(&config); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	wl.config = &config
	return nil
}

// LoadDefault installs the built-in standard and ultra profiles.
func (wl *WeightsLoader) LoadDefault() error {
	config := &ProfilesConfig{
		Profiles: map[string]calib.Weights{
			"standard": calib.StandardWeights(),
			"ultra":    calib.UltraWeights(),
		},
		Validation: ValidationConfig{
			WeightSumTolerance: calib.WeightSumTolerance,
		},
	}

	if err := wl.validateConfig(config); err != nil {
		return fmt.Errorf("default config validation failed: %w", err)
	}

	wl.config = config
	return nil
}

// GetProfile returns the named weight profile.
func (wl *WeightsLoader) GetProfile(name string) (calib.Weights, error) {
	if wl.config == nil {
		return calib.Weights{}, fmt.Errorf("weights not loaded - call LoadFromFile or LoadDefault first")
	}

	profile, exists := wl.config.Profiles[name]
	if !exists {
		return calib.Weights{}, fmt.Errorf("unknown weight profile: %s", name)
	}
	return profile, nil
}

// GetAvailableProfiles returns the list of configured profile names.
func (wl *WeightsLoader) GetAvailableProfiles() []string {
	if wl.config == nil {
		return nil
	}

	profiles := make([]string, 0, len(wl.config.Profiles))
	for name := range wl.config.Profiles {
		profiles = append(profiles, name)
	}
	return profiles
}

// validateConfig validates the entire profile configuration.
func (wl *WeightsLoader) validateConfig(config *ProfilesConfig) error {
	requiredProfiles := []string{"standard", "ultra"}
	for _, name := range requiredProfiles {
		if _, exists := config.Profiles[name]; !exists {
			return fmt.Errorf("missing required profile: %s", name)
		}
	}

	for name, profile := range config.Profiles {
		if err := profile.Validate(); err != nil {
			return fmt.Errorf("profile %s: %w", name, err)
		}
	}

	return nil
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join("config", "calibration_weights.yaml")
}
