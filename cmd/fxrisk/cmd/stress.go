package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/spf13/cobra"
)

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Stress test a portfolio against shock scenarios",
	Long: `Apply each stress scenario to a copy of the portfolio and report the value
change, the stressed risk level and the margin survivability.

Built-in scenarios: marketCrash, flashCrash, interestRateShock, currencyCrisis
and liquidityCrisis. --scenario adds a scenario or overrides one by name, as
name=price_change_pct:volatility.

Examples:
  fxrisk stress -p portfolio.yaml
  fxrisk stress -p portfolio.yaml --scenario marketCrash=-0.3:0.2 --scenario taper=-0.03:0.1`,
	Args: cobra.NoArgs,
	RunE: runStress,
}

var (
	stressPortfolio string
	stressOutput    string
	stressScenarios map[string]string
)

func init() {
	rootCmd.AddCommand(stressCmd)

	stressCmd.Flags().StringVarP(&stressPortfolio, "portfolio", "p", "", "portfolio file (YAML or JSON) (required)")
	stressCmd.Flags().StringVarP(&stressOutput, "output", "o", "text", "output format: text, json, csv or org")
	stressCmd.Flags().StringToStringVar(&stressScenarios, "scenario", nil, "scenario override as name=price_change_pct:volatility")
	stressCmd.MarkFlagRequired("portfolio")
}

// parseScenarios turns name=pct:vol pairs into scenarios.
func parseScenarios(in map[string]string) (map[string]risk.Scenario, error) {
	out := make(map[string]risk.Scenario, len(in))
	for name, v := range in {
		pct, vol, ok := strings.Cut(v, ":")
		if !ok {
			return nil, fmt.Errorf("scenario %q: want price_change_pct:volatility, got %q", name, v)
		}
		var sc risk.Scenario
		var err error
		if sc.PriceChangePct, err = strconv.ParseFloat(pct, 64); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", name, err)
		}
		if sc.Volatility, err = strconv.ParseFloat(vol, 64); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", name, err)
		}
		out[name] = sc
	}
	return out, nil
}

func runStress(cmd *cobra.Command, args []string) error {
	overrides, err := parseScenarios(stressScenarios)
	if err != nil {
		return err
	}
	p, err := portfolio.LoadFile(stressPortfolio)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	ctx := cmd.Context()
	m, err := openManager(ctx, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	run, err := m.PerformStressTest(ctx, p, overrides)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch stressOutput {
	case "json":
		return writeJSON(w, run)
	case "csv":
		return journal.WriteStressCSV(w, []journal.StressRun{run})
	case "org":
		s, err := journal.FormatStressOrg(run)
		if err != nil {
			return err
		}
		fmt.Fprint(w, s)
		return nil
	default:
		printStress(w, run)
		return nil
	}
}

func printStress(w io.Writer, run journal.StressRun) {
	fmt.Fprintf(w, "Stress test %s\n", run.ID)
	fmt.Fprintf(w, "  %-20s %8s %10s %14s %10s %13s\n", "Scenario", "Shock%", "Change%", "Stressed", "Risk", "Survivability")
	for _, name := range slices.Sorted(maps.Keys(run.Results)) {
		r := run.Results[name]
		fmt.Fprintf(w, "  %-20s %8.2f %10.2f %14.2f %10s %13s\n",
			name, r.Scenario.PriceChangePct*100, r.ValueChange*100, r.StressedValue,
			r.RiskMetrics.RiskLevel, r.Survivability)
	}
}
