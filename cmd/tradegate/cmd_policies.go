package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/sawpanic/tradegate/internal/gate"
)

// runPolicies prints the admission policy table, as text on a terminal and
// as JSON when piped.
func runPolicies(cmd *cobra.Command, args []string) error {
	policiesPath, _ := cmd.Flags().GetString("policies")

	router, err := loadPolicyRouter(policiesPath)
	if err != nil {
		return err
	}
	policies := router.AllPolicies()

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return emitJSON(policies)
	}

	fmt.Printf("%-16s %-10s %-10s %-28s %-10s\n", "POLICY", "STD SCORE", "ULTRA", "SECONDARY METRIC", "STD/ULTRA")
	for _, name := range []string{gate.PolicySMC, gate.PolicyPattern, gate.PolicyMTF, gate.PolicyStandard} {
		p, ok := policies[name]
		if !ok {
			continue
		}
		metric := p.SecondaryMetric
		secondary := fmt.Sprintf("%.0f/%.0f", p.Standard.MinSecondary, p.Ultra.MinSecondary)
		if metric == "" {
			metric = "-"
			secondary = "-"
		}
		fmt.Printf("%-16s %-10.0f %-10.0f %-28s %-10s\n",
			p.Name, p.Standard.MinScore, p.Ultra.MinScore, metric, secondary)
	}
	return nil
}
