package main

import (
	"github.com/spf13/cobra"

	"github.com/sawpanic/tradegate/internal/admission"
	"github.com/sawpanic/tradegate/internal/domain"
	"github.com/sawpanic/tradegate/internal/history"
)

// runGate gates one analysis result end to end and prints the decision
// record. Rejection is a normal outcome, not a command failure.
func runGate(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	candlesPath, _ := cmd.Flags().GetString("candles")
	ultra, _ := cmd.Flags().GetBool("ultra")
	asset, _ := cmd.Flags().GetString("asset")
	timeframe, _ := cmd.Flags().GetString("timeframe")
	policiesPath, _ := cmd.Flags().GetString("policies")
	weightsProfile, _ := cmd.Flags().GetString("weights-profile")
	weightsConfig, _ := cmd.Flags().GetString("weights-config")

	result, err := loadAnalysisResult(input)
	if err != nil {
		return err
	}

	var candles []domain.Candle
	if candlesPath != "" {
		if candles, err = loadCandles(candlesPath); err != nil {
			return err
		}
	}

	policies, err := loadPolicyRouter(policiesPath)
	if err != nil {
		return err
	}
	weights, err := loadWeightsOverride(weightsProfile, weightsConfig)
	if err != nil {
		return err
	}

	service := admission.NewService(nil, history.NewMemoryStore(), nil, policies)
	record, err := service.Process(cmd.Context(), admission.Request{
		Result:    result,
		UltraMode: ultra,
		History:   candles,
		AssetType: asset,
		Timeframe: timeframe,
		Weights:   weights,
	})
	if err != nil {
		return err
	}

	return emitJSON(record)
}
