package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/spf13/cobra"
)

var portfolioCmd = &cobra.Command{
	Use:   "portfolio",
	Short: "Work with portfolio snapshot files",
}

var portfolioInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a sample portfolio file",
	Long: `Write a one-position EURUSD portfolio to start from.

Example:
  fxrisk portfolio init -o portfolio.yaml`,
	Args: cobra.NoArgs,
	RunE: runPortfolioInit,
}

var portfolioInitOutput string

func init() {
	rootCmd.AddCommand(portfolioCmd)
	portfolioCmd.AddCommand(portfolioInitCmd)

	portfolioInitCmd.Flags().StringVarP(&portfolioInitOutput, "output", "o", "portfolio.yaml", "output portfolio file path")
}

func runPortfolioInit(cmd *cobra.Command, args []string) error {
	if err := portfolio.SaveFile(portfolioInitOutput, portfolio.Sample()); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Created sample portfolio: %s\n", portfolioInitOutput)
	return nil
}
