package cmd

import (
	"fmt"

	"github.com/rustyeddy/fxrisk/market"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/rustyeddy/fxrisk/risk"
	"github.com/spf13/cobra"
)

var sizeCmd = &cobra.Command{
	Use:   "size",
	Short: "Calculate a risk-constrained position size",
	Long: `Size a trade so that hitting the stop loses at most --risk of the balance,
capped by the max_position_size limit.

Example:
  fxrisk size -p portfolio.yaml --symbol EURUSD --price 1.0850 --stop 1.0800 --risk 0.02`,
	Args: cobra.NoArgs,
	RunE: runSize,
}

var (
	sizePortfolio string
	sizeSymbol    string
	sizePrice     float64
	sizeStop      float64
	sizeRisk      float64
	sizeJSON      bool
)

func init() {
	rootCmd.AddCommand(sizeCmd)

	sizeCmd.Flags().StringVarP(&sizePortfolio, "portfolio", "p", "", "portfolio file (YAML or JSON) (required)")
	sizeCmd.Flags().StringVarP(&sizeSymbol, "symbol", "s", "EURUSD", "instrument to trade")
	sizeCmd.Flags().Float64Var(&sizePrice, "price", 0, "entry price (required)")
	sizeCmd.Flags().Float64Var(&sizeStop, "stop", 0, "stop loss price (required)")
	sizeCmd.Flags().Float64Var(&sizeRisk, "risk", risk.DefaultRiskPerTrade, "fraction of balance to risk")
	sizeCmd.Flags().BoolVar(&sizeJSON, "json", false, "print JSON")
	sizeCmd.MarkFlagRequired("portfolio")
	sizeCmd.MarkFlagRequired("price")
	sizeCmd.MarkFlagRequired("stop")
}

func runSize(cmd *cobra.Command, args []string) error {
	p, err := portfolio.LoadFile(sizePortfolio)
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	symbol := market.NormalizeSymbol(sizeSymbol)
	res, err := m.CalculateOptimalPositionSize(p, symbol, sizePrice, sizeStop, sizeRisk)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if sizeJSON {
		return writeJSON(w, res)
	}

	fmt.Fprintf(w, "Position size for %s: %.4f lots (%.0f units)\n", res.Symbol, res.Lots, res.Lots*market.ContractSize)
	fmt.Fprintf(w, "  Account risk:  %.2f (%.2f%% of balance)\n", res.AccountRisk, 100*res.RiskPerTrade)
	if res.RiskLimited {
		fmt.Fprintln(w, "  Risk per trade lowered to max_daily_loss")
	}
	fmt.Fprintf(w, "  Stop distance: %.1f pips\n", res.StopPips)
	fmt.Fprintf(w, "  Risk budget:   %.4f lots\n", res.OptimalLots)
	fmt.Fprintf(w, "  Size cap:      %.4f lots\n", res.MaxLots)
	switch {
	case res.Fallback:
		fmt.Fprintln(w, "  Size could not be computed; using the minimum lot size")
	case res.Capped:
		fmt.Fprintln(w, "  Capped by max_position_size")
	}
	return nil
}
