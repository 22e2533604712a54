package cmd

import (
	"fmt"
	"time"

	"github.com/rustyeddy/fxrisk/journal"
	"github.com/rustyeddy/fxrisk/pkg/id"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List retained risk reports",
	Long: `List the reports retained in the bounded history, oldest first.

Subcommands:
  show   - Print one report as an Org-mode entry
  stress - List journaled stress test runs

Examples:
  fxrisk history --since 24h
  fxrisk history --output csv > reports.csv
  fxrisk history show 01HX3J8K4Z2M0Q5R7T9V1W3Y5B`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

var historyShowCmd = &cobra.Command{
	Use:   "show <report-id>",
	Short: "Print one report as an Org-mode entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistoryShow,
}

var historyStressCmd = &cobra.Command{
	Use:   "stress",
	Short: "List journaled stress test runs",
	Args:  cobra.NoArgs,
	RunE:  runHistoryStress,
}

var (
	historySince  time.Duration
	historyLimit  int
	historyOutput string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyStressCmd)

	historyCmd.PersistentFlags().IntVarP(&historyLimit, "limit", "n", 0, "show at most the newest n entries (0 for all)")
	historyCmd.PersistentFlags().StringVarP(&historyOutput, "output", "o", "text", "output format: text, json or csv")
	historyCmd.Flags().DurationVar(&historySince, "since", 0, "only reports newer than this, e.g. 24h")
}

func newest[T any](s []T, n int) []T {
	if n > 0 && len(s) > n {
		return s[len(s)-n:]
	}
	return s
}

func runHistory(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	var reports []risk.Analysis
	if historySince > 0 {
		reports = m.ReportsSince(time.Now().Add(-historySince))
	} else {
		reports = m.History()
	}
	reports = newest(reports, historyLimit)

	w := cmd.OutOrStdout()
	switch historyOutput {
	case "json":
		return writeJSON(w, reports)
	case "csv":
		return journal.WriteReportsCSV(w, reports)
	}

	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports.")
		return nil
	}
	for _, a := range reports {
		fmt.Fprintf(w, "%s  %s  %-8s %.4f\n", a.ID, a.Timestamp.Format(time.RFC3339), a.RiskLevel, a.OverallRiskScore)
	}
	return nil
}

func runHistoryShow(cmd *cobra.Command, args []string) error {
	if _, err := id.Time(args[0]); err != nil {
		return fmt.Errorf("invalid report id %q: %w", args[0], err)
	}

	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	a, ok := m.Report(args[0])
	if !ok {
		return fmt.Errorf("report %q not found", args[0])
	}

	var alerts []risk.Alert
	if set := m.LatestAlerts(); set.ReportID == a.ID {
		alerts = set.Alerts
	}
	s, err := journal.FormatReportOrg(a, alerts)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}

func runHistoryStress(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	runs, err := m.StressHistory(cmd.Context(), historyLimit)
	if err != nil {
		return fmt.Errorf("list stress runs: %w", err)
	}

	w := cmd.OutOrStdout()
	switch historyOutput {
	case "json":
		return writeJSON(w, runs)
	case "csv":
		return journal.WriteStressCSV(w, runs)
	}

	if len(runs) == 0 {
		fmt.Fprintln(w, "No stress runs.")
		return nil
	}
	for _, run := range runs {
		printStress(w, run)
	}
	return nil
}
