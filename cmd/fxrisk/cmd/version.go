package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const version = "0.3.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Long:  `Display the current version of the fxrisk CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "fxrisk version %s\n", version)
		fmt.Fprintln(w, "Portfolio risk analysis and stress testing for FX accounts")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
