package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyse the risk of a portfolio snapshot",
	Long: `Run every risk metric over a portfolio file and print the report, the
alerts it raised and the recommendations.

The report is added to the history and journaled.

Examples:
  fxrisk analyze -p portfolio.yaml
  fxrisk analyze -p portfolio.yaml --output json
  fxrisk analyze -p portfolio.yaml --output org >> risk.org`,
	Args: cobra.NoArgs,
	RunE: runAnalyze,
}

var (
	analyzePortfolio string
	analyzeOutput    string
)

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzePortfolio, "portfolio", "p", "", "portfolio file (YAML or JSON) (required)")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "text", "output format: text, json or org")
	analyzeCmd.MarkFlagRequired("portfolio")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	p, err := portfolio.LoadFile(analyzePortfolio)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	ctx := cmd.Context()
	m, err := openManager(ctx, nil)
	if err != nil {
		return err
	}
	defer m.Close()

	a, err := m.AnalyzePortfolioRisk(ctx, p)
	if err != nil {
		return err
	}
	alerts := m.LatestAlerts().Alerts

	w := cmd.OutOrStdout()
	switch analyzeOutput {
	case "json":
		return writeJSON(w, struct {
			Report risk.Analysis `json:"report"`
			Alerts []risk.Alert  `json:"alerts"`
		}{a, alerts})
	case "org":
		s, err := journal.FormatReportOrg(a, alerts)
		if err != nil {
			return err
		}
		fmt.Fprint(w, s)
		return nil
	default:
		printReport(w, a)
		printAlerts(w, alerts)
		return nil
	}
}

func printReport(w io.Writer, a risk.Analysis) {
	fmt.Fprintf(w, "Risk report %s (%s)\n", a.ID, a.Timestamp.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "  Level:              %s (score %.4f)\n", a.RiskLevel, a.OverallRiskScore)
	fmt.Fprintf(w, "  VaR 95%%:            %.2f%%\n", a.VaR95*100)
	fmt.Fprintf(w, "  CVaR 95%%:           %.2f%%\n", a.CVaR95*100)
	fmt.Fprintf(w, "  Portfolio risk:     %.2f%%\n", a.PortfolioRisk*100)
	fmt.Fprintf(w, "  Max drawdown:       %.2f%%\n", a.MaxDrawdown*100)
	fmt.Fprintf(w, "  Sharpe ratio:       %.4f\n", a.SharpeRatio)
	fmt.Fprintf(w, "  Correlation risk:   %.4f\n", a.CorrelationRisk)
	fmt.Fprintf(w, "  Concentration risk: %.4f\n", a.ConcentrationRisk)
	fmt.Fprintf(w, "  Leverage risk:      %.4f\n", a.LeverageRisk)
	fmt.Fprintf(w, "  Margin risk:        %.4f\n", a.MarginRisk)
	if len(a.Degraded) > 0 {
		fmt.Fprintf(w, "  Degraded metrics:   %s\n", strings.Join(a.Degraded, ", "))
	}
	if len(a.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, r := range a.Recommendations {
			fmt.Fprintf(w, "  - %s\n", r)
		}
	}
}

func printAlerts(w io.Writer, alerts []risk.Alert) {
	if len(alerts) == 0 {
		fmt.Fprintln(w, "\nNo alerts.")
		return
	}
	fmt.Fprintf(w, "\nAlerts (highest %s):\n", risk.HighestSeverity(alerts))
	for _, a := range alerts {
		fmt.Fprintf(w, "  [%s] %s: %s\n", a.Severity, a.Type, a.Message)
		fmt.Fprintf(w, "      %s\n", a.Recommendation)
	}
}
