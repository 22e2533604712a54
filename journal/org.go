package journal

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/rustyeddy/fxrisk/risk"
)

var orgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"stamp":  func(t time.Time) string { return t.UTC().Format("2006-01-02 Mon 15:04") },
	"join":   strings.Join,
}

const reportOrgTemplate = `* RISK REPORT: {{.Report.RiskLevel}} {{printf "%.4f" .Report.OverallRiskScore}}
:PROPERTIES:
:REPORT_ID:   {{.Report.ID}}
:CREATED:     [{{stamp .Report.Timestamp}}]
:LEVEL:       {{.Report.RiskLevel}}
:SCORE:       {{printf "%.4f" .Report.OverallRiskScore}}
{{- if .Report.Degraded}}
:DEGRADED:    {{join .Report.Degraded ", "}}
{{- end}}
:END:

** Metrics
| Metric             |     Value |
|--------------------+-----------|
| VaR 95%            | {{printf "%8.2f%%" (mul100 .Report.VaR95)}} |
| CVaR 95%           | {{printf "%8.2f%%" (mul100 .Report.CVaR95)}} |
| Portfolio risk     | {{printf "%8.2f%%" (mul100 .Report.PortfolioRisk)}} |
| Max drawdown       | {{printf "%8.2f%%" (mul100 .Report.MaxDrawdown)}} |
| Sharpe ratio       | {{printf "%9.4f" .Report.SharpeRatio}} |
| Correlation risk   | {{printf "%9.4f" .Report.CorrelationRisk}} |
| Concentration risk | {{printf "%9.4f" .Report.ConcentrationRisk}} |
| Leverage risk      | {{printf "%9.4f" .Report.LeverageRisk}} |
| Margin risk        | {{printf "%9.4f" .Report.MarginRisk}} |
{{- if .Alerts}}

** Alerts
{{- range .Alerts}}
- [{{.Severity}}] {{.Type}}: {{.Message}}
  {{.Recommendation}}
{{- end}}
{{- end}}
{{- if .Report.Recommendations}}

** Recommendations
{{- range .Report.Recommendations}}
- [ ] {{.}}
{{- end}}
{{- end}}
`

const stressOrgTemplate = `* STRESS TEST: {{.ID}}
:PROPERTIES:
:RUN_ID:      {{.ID}}
:CREATED:     [{{stamp .Time}}]
:SCENARIOS:   {{len .Results}}
:END:

| Scenario | Shock % | Value change % | Score | Survivability |
|----------+---------+----------------+-------+---------------|
{{- range .Rows}}
| {{.Name}} | {{printf "%.2f" (mul100 .Scenario.PriceChangePct)}} | {{printf "%.2f" (mul100 .ValueChange)}} | {{printf "%.4f" .RiskMetrics.OverallRiskScore}} | {{.Survivability}} |
{{- end}}
`

var (
	reportOrg = template.Must(template.New("report").Funcs(orgFuncs).Parse(reportOrgTemplate))
	stressOrg = template.Must(template.New("stress").Funcs(orgFuncs).Parse(stressOrgTemplate))
)

// FormatReportOrg renders a report and its alerts as an Org-mode entry.
func FormatReportOrg(a risk.Analysis, alerts []risk.Alert) (string, error) {
	var buf bytes.Buffer
	err := reportOrg.Execute(&buf, struct {
		Report risk.Analysis
		Alerts []risk.Alert
	}{a, alerts})
	if err != nil {
		return "", fmt.Errorf("render report %s: %w", a.ID, err)
	}
	return buf.String(), nil
}

// FormatStressOrg renders a stress run as an Org-mode table, scenarios
// sorted by name.
func FormatStressOrg(run StressRun) (string, error) {
	rows := make([]risk.StressResult, 0, len(run.Results))
	for _, name := range sortedScenarios(run.Results) {
		r := run.Results[name]
		r.Name = name
		rows = append(rows, r)
	}

	var buf bytes.Buffer
	err := stressOrg.Execute(&buf, struct {
		StressRun
		Rows []risk.StressResult
	}{run, rows})
	if err != nil {
		return "", fmt.Errorf("render stress run %s: %w", run.ID, err)
	}
	return buf.String(), nil
}
