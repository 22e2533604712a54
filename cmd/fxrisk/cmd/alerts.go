package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Show the alerts raised by the latest analysis",
	Args:  cobra.NoArgs,
	RunE:  runAlerts,
}

var alertsJSON bool

func init() {
	rootCmd.AddCommand(alertsCmd)
	alertsCmd.Flags().BoolVar(&alertsJSON, "json", false, "print JSON")
}

func runAlerts(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	set := m.LatestAlerts()
	w := cmd.OutOrStdout()
	if alertsJSON {
		return writeJSON(w, set)
	}
	if set.ReportID == "" {
		fmt.Fprintln(w, "No analysis has been run yet.")
		return nil
	}
	fmt.Fprintf(w, "Latest alerts from report %s", set.ReportID)
	printAlerts(w, set.Alerts)
	return nil
}
