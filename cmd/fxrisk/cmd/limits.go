package cmd

import (
	"fmt"
	"io"

	"github.com/rustyeddy/fxrisk/risk"
	"github.com/spf13/cobra"
)

var limitsCmd = &cobra.Command{
	Use:   "limits",
	Short: "Show or update risk limits",
	Long: `Show or update the risk limits shared by analysis, alerts and sizing.

Updated limits are journaled and restored on the next run.

Examples:
  fxrisk limits show
  fxrisk limits set --max-leverage 5 --min-margin 0.25`,
}

var limitsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current risk limits",
	Args:  cobra.NoArgs,
	RunE:  runLimitsShow,
}

var limitsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Update one or more risk limits",
	Args:  cobra.NoArgs,
	RunE:  runLimitsSet,
}

// limitFlags maps flag names onto LimitsUpdate fields.
var limitFlags = []struct {
	name  string
	usage string
	field func(*risk.LimitsUpdate) **float64
}{
	{"max-position-size", "max position notional as a fraction of balance", func(u *risk.LimitsUpdate) **float64 { return &u.MaxPositionSize }},
	{"max-daily-loss", "max daily loss as a fraction of balance", func(u *risk.LimitsUpdate) **float64 { return &u.MaxDailyLoss }},
	{"max-drawdown", "max drawdown before alerting", func(u *risk.LimitsUpdate) **float64 { return &u.MaxDrawdownLimit }},
	{"max-leverage", "max notional to balance ratio", func(u *risk.LimitsUpdate) **float64 { return &u.MaxLeverage }},
	{"max-correlation", "pair correlation counted as high", func(u *risk.LimitsUpdate) **float64 { return &u.MaxCorrelation }},
	{"max-concentration", "max single position share of notional", func(u *risk.LimitsUpdate) **float64 { return &u.MaxConcentration }},
	{"min-margin", "margin cushion to keep free", func(u *risk.LimitsUpdate) **float64 { return &u.MinMargin }},
}

func init() {
	rootCmd.AddCommand(limitsCmd)
	limitsCmd.AddCommand(limitsShowCmd)
	limitsCmd.AddCommand(limitsSetCmd)

	for _, f := range limitFlags {
		limitsSetCmd.Flags().Float64(f.name, 0, f.usage)
	}
}

func runLimitsShow(cmd *cobra.Command, args []string) error {
	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	printLimits(cmd.OutOrStdout(), m.RiskLimits())
	return nil
}

func runLimitsSet(cmd *cobra.Command, args []string) error {
	var u risk.LimitsUpdate
	for _, f := range limitFlags {
		if !cmd.Flags().Changed(f.name) {
			continue
		}
		v, err := cmd.Flags().GetFloat64(f.name)
		if err != nil {
			return err
		}
		*f.field(&u) = &v
	}
	if u.IsEmpty() {
		return fmt.Errorf("no limits given; see fxrisk limits set --help")
	}

	m, err := openManager(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer m.Close()

	l, err := m.UpdateRiskLimits(cmd.Context(), u)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Risk limits updated")
	printLimits(cmd.OutOrStdout(), l)
	return nil
}

func printLimits(w io.Writer, l risk.Limits) {
	fmt.Fprintf(w, "  max_position_size:  %.4f\n", l.MaxPositionSize)
	fmt.Fprintf(w, "  max_daily_loss:     %.4f\n", l.MaxDailyLoss)
	fmt.Fprintf(w, "  max_drawdown_limit: %.4f\n", l.MaxDrawdownLimit)
	fmt.Fprintf(w, "  max_leverage:       %.2f\n", l.MaxLeverage)
	fmt.Fprintf(w, "  max_correlation:    %.4f\n", l.MaxCorrelation)
	fmt.Fprintf(w, "  max_concentration:  %.4f\n", l.MaxConcentration)
	fmt.Fprintf(w, "  min_margin:         %.4f\n", l.MinMargin)
}
