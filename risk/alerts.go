package risk

import "fmt"

// AlertType names the condition an Alert reports.
type AlertType string

const (
	AlertHighVaR           AlertType = "HIGH_VAR"
	AlertMaxDrawdown       AlertType = "MAX_DRAWDOWN"
	AlertHighCorrelation   AlertType = "HIGH_CORRELATION"
	AlertHighConcentration AlertType = "HIGH_CONCENTRATION"
	AlertHighLeverage      AlertType = "HIGH_LEVERAGE"
	AlertLowMargin         AlertType = "LOW_MARGIN"
)

// Alert is an actionable finding derived from one Analysis. Alerts are
// regenerated for every analysis.
type Alert struct {
	Type           AlertType `json:"type"`
	Severity       Level     `json:"severity"`
	Message        string    `json:"message"`
	Recommendation string    `json:"recommendation"`
}

type alertSet []Alert

func (s *alertSet) add(t AlertType, sev Level, msg, rec string) {
	*s = append(*s, Alert{Type: t, Severity: sev, Message: msg, Recommendation: rec})
}

// GenerateAlerts thresholds an analysis. VaR is a fraction of balance, so
// "VaR above 5% of balance" compares VaR95 with VaRThreshold directly.
func GenerateAlerts(a Analysis, l Limits) []Alert {
	alerts := alertSet{}

	if a.VaR95 > VaRThreshold {
		alerts.add(AlertHighVaR, LevelHigh,
			fmt.Sprintf("Value at Risk (95%%) is %.2f%% of balance, above %.0f%%", 100*a.VaR95, 100*VaRThreshold),
			"Reduce position sizes or hedge open exposure")
	}
	if a.MaxDrawdown > l.MaxDrawdownLimit {
		alerts.add(AlertMaxDrawdown, LevelCritical,
			fmt.Sprintf("Maximum drawdown %.2f%% exceeds limit %.2f%%", 100*a.MaxDrawdown, 100*l.MaxDrawdownLimit),
			"Stop opening new positions and tighten stop losses")
	}
	if a.CorrelationRisk > CorrelationThreshold {
		alerts.add(AlertHighCorrelation, LevelMedium,
			fmt.Sprintf("%.0f%% of position pairs are highly correlated", 100*a.CorrelationRisk),
			"Diversify across less correlated currency pairs")
	}
	if a.ConcentrationRisk > 0 {
		alerts.add(AlertHighConcentration, LevelMedium,
			fmt.Sprintf("Positions exceed the concentration limit by %.2f%% in total", 100*a.ConcentrationRisk),
			"Spread exposure across more instruments")
	}
	if a.LeverageRisk > 0 {
		alerts.add(AlertHighLeverage, LevelHigh,
			fmt.Sprintf("Leverage exceeds the limit by %.2fx", a.LeverageRisk),
			"Close or reduce positions to bring leverage within limits")
	}
	if a.MarginRisk > 0 {
		alerts.add(AlertLowMargin, LevelCritical,
			fmt.Sprintf("Margin utilization exceeds the safe level by %.2f%%", 100*a.MarginRisk),
			"Deposit funds or close positions to avoid a margin call")
	}
	return alerts
}

// HighestSeverity returns the most severe level among alerts, or LOW.
func HighestSeverity(alerts []Alert) Level {
	rank := map[Level]int{LevelLow: 0, LevelMedium: 1, LevelHigh: 2, LevelCritical: 3}
	best := LevelLow
	for _, a := range alerts {
		if rank[a.Severity] > rank[best] {
			best = a.Severity
		}
	}
	return best
}
