package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sawpanic/tradegate/internal/calibration"
	calibcfg "github.com/sawpanic/tradegate/internal/config/calibration"
	"github.com/sawpanic/tradegate/internal/domain"
	"github.com/sawpanic/tradegate/internal/gate"
)

const (
	appName = "TradeGate"
	version = "v1.2.0"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd := &cobra.Command{
		Use:     "tradegate",
		Short:   "Admission control for model-generated trade recommendations",
		Version: version,
		Long: `TradeGate re-scores, re-validates, and gates trade recommendations
produced by a generative chart-analysis model. Every recommendation is
calibrated from its structural context, held to a dynamic risk/reward
floor, validated against detected market structure, and either admitted
unchanged or forced to a safe no-trade state.`,
	}

	gateCmd := &cobra.Command{
		Use:   "gate",
		Short: "Run the full admission pipeline on one analysis result",
		Long:  "Calibrates, validates, and gates a single analysis result, printing the full decision record as JSON",
		RunE:  runGate,
	}
	gateCmd.Flags().String("input", "-", "Analysis result JSON file, or - for stdin")
	gateCmd.Flags().String("candles", "", "Optional OHLCV history JSON file for structural validation")
	gateCmd.Flags().Bool("ultra", false, "Gate in ultra mode (stricter thresholds)")
	gateCmd.Flags().String("asset", "", "Asset type override (BTC|ETH|EURUSD|GOLD|AAPL)")
	gateCmd.Flags().String("timeframe", "", "Timeframe override")
	gateCmd.Flags().String("policies", "", "Gate policy YAML (built-in table when empty)")
	gateCmd.Flags().String("weights-profile", "", "Calibration weight profile name override")
	gateCmd.Flags().String("weights-config", "", "Calibration weights YAML (built-in profiles when empty)")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "Run confidence calibration only",
		Long:  "Recomputes the calibrated confidence score, factors, and uncertainty interval for one analysis result",
		RunE:  runCalibrate,
	}
	calibrateCmd.Flags().String("input", "-", "Analysis result JSON file, or - for stdin")
	calibrateCmd.Flags().Bool("ultra", false, "Calibrate in ultra mode")
	calibrateCmd.Flags().Bool("breakdown", false, "Print the human-readable factor breakdown instead of JSON")
	calibrateCmd.Flags().String("weights-profile", "", "Calibration weight profile name override")
	calibrateCmd.Flags().String("weights-config", "", "Calibration weights YAML (built-in profiles when empty)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the admission API",
		Long:  "Starts the local-only HTTP API with gating, calibration, policies, outcomes, health, metrics, and the decision stream",
		RunE:  runServe,
	}
	serveCmd.Flags().String("policies", "", "Gate policy YAML (built-in table when empty)")
	serveCmd.Flags().Int("port", 0, "Listen port (default 8080, or HTTP_PORT)")
	serveCmd.Flags().String("postgres-dsn", "", "Postgres DSN for the trade history store")
	serveCmd.Flags().Bool("init-schema", false, "Apply the history schema on startup (Postgres only)")
	serveCmd.Flags().String("redis-addr", "", "Redis address for the trade history store")
	serveCmd.Flags().String("redis-password", "", "Redis password")
	serveCmd.Flags().Int("redis-db", 0, "Redis database number")

	policiesCmd := &cobra.Command{
		Use:   "policies",
		Short: "Show the admission policy table",
		Long:  "Prints every admission policy with its per-mode score and secondary-confidence floors",
		RunE:  runPolicies,
	}
	policiesCmd.Flags().String("policies", "", "Gate policy YAML (built-in table when empty)")

	rootCmd.AddCommand(gateCmd)
	rootCmd.AddCommand(calibrateCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(policiesCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}

// loadAnalysisResult reads a result from a file, or stdin for "-".
func loadAnalysisResult(path string) (*domain.AnalysisResult, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var result domain.AnalysisResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("parse analysis result: %w", err)
	}
	return &result, nil
}

// loadCandles reads an OHLCV history array from a file.
func loadCandles(path string) ([]domain.Candle, error) {
	data, err := readInput(path)
	if err != nil {
		return nil, err
	}
	var candles []domain.Candle
	if err := json.Unmarshal(data, &candles); err != nil {
		return nil, fmt.Errorf("parse candle history: %w", err)
	}
	return candles, nil
}

func readInput(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

// loadPolicyRouter loads the policy table, or the built-in defaults
// when no path is given.
func loadPolicyRouter(path string) (*gate.PolicyRouter, error) {
	if path == "" {
		return gate.NewPolicyRouterWithDefaults(), nil
	}
	return gate.NewPolicyRouter(path)
}

// loadWeightsOverride resolves a named weight profile, or nil when no
// profile was requested.
func loadWeightsOverride(profile, configPath string) (*calibration.Weights, error) {
	if profile == "" {
		return nil, nil
	}
	loader := calibcfg.NewWeightsLoader()
	var err error
	if configPath != "" {
		err = loader.LoadFromFile(configPath)
	} else {
		err = loader.LoadDefault()
	}
	if err != nil {
		return nil, err
	}
	weights, err := loader.GetProfile(profile)
	if err != nil {
		return nil, err
	}
	return &weights, nil
}

// emitJSON prints v to stdout, indented when stdout is a terminal.
func emitJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	if term.IsTerminal(int(os.Stdout.Fd())) {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
