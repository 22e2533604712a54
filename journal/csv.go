package journal

import (
	"encoding/csv"
	"io"
	"slices"
	"strconv"
	"time"

	"github.com/rustyeddy/fxrisk/risk"
)

var reportHeader = []string{
	"id", "timestamp", "var95", "cvar95", "portfolio_risk", "max_drawdown", "sharpe_ratio",
	"correlation_risk", "concentration_risk", "leverage_risk", "margin_risk",
	"overall_risk_score", "risk_level",
}

var stressHeader = []string{
	"run_id", "time", "scenario", "price_change_pct", "volatility",
	"original_value", "stressed_value", "value_change", "overall_risk_score", "survivability",
}

// WriteReportsCSV writes one row per report, in the order given.
func WriteReportsCSV(w io.Writer, reports []risk.Analysis) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(reportHeader); err != nil {
		return err
	}
	for _, a := range reports {
		err := cw.Write([]string{
			a.ID,
			a.Timestamp.UTC().Format(time.RFC3339),
			f(a.VaR95),
			f(a.CVaR95),
			f(a.PortfolioRisk),
			f(a.MaxDrawdown),
			f(a.SharpeRatio),
			f(a.CorrelationRisk),
			f(a.ConcentrationRisk),
			f(a.LeverageRisk),
			f(a.MarginRisk),
			f(a.OverallRiskScore),
			string(a.RiskLevel),
		})
		if err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteStressCSV writes one row per scenario, runs in order and scenarios
// sorted by name.
func WriteStressCSV(w io.Writer, runs []StressRun) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stressHeader); err != nil {
		return err
	}
	for _, run := range runs {
		for _, name := range sortedScenarios(run.Results) {
			r := run.Results[name]
			err := cw.Write([]string{
				run.ID,
				run.Time.UTC().Format(time.RFC3339),
				name,
				f(r.Scenario.PriceChangePct),
				f(r.Scenario.Volatility),
				f(r.OriginalValue),
				f(r.StressedValue),
				f(r.ValueChange),
				f(r.RiskMetrics.OverallRiskScore),
				string(r.Survivability),
			})
			if err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

func sortedScenarios(results map[string]risk.StressResult) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
