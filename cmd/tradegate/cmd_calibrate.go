package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sawpanic/tradegate/internal/admission"
)

// runCalibrate recomputes calibrated confidence for one analysis result.
func runCalibrate(cmd *cobra.Command, args []string) error {
	input, _ := cmd.Flags().GetString("input")
	ultra, _ := cmd.Flags().GetBool("ultra")
	breakdown, _ := cmd.Flags().GetBool("breakdown")
	weightsProfile, _ := cmd.Flags().GetString("weights-profile")
	weightsConfig, _ := cmd.Flags().GetString("weights-config")

	result, err := loadAnalysisResult(input)
	if err != nil {
		return err
	}

	weights, err := loadWeightsOverride(weightsProfile, weightsConfig)
	if err != nil {
		return err
	}

	service := admission.NewService(nil, nil, nil, nil)
	calibrated, err := service.Calibrate(admission.Request{
		Result:    result,
		UltraMode: ultra,
		Weights:   weights,
	})
	if err != nil {
		return err
	}

	if breakdown {
		fmt.Println(calibrated.GetDetailedBreakdown())
		return nil
	}
	return emitJSON(calibrated)
}
