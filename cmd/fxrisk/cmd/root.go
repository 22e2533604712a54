package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rustyeddy/fxrisk/config"
	"github.com/rustyeddy/fxrisk/internal/logging"
	"github.com/rustyeddy/fxrisk/manager"
	"github.com/rustyeddy/fxrisk/metrics"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fxrisk",
	Short: "Portfolio risk analysis and stress testing for FX accounts",
	Long: `fxrisk analyses a portfolio snapshot (balance, margin and open positions)
and reports Value at Risk, drawdown, correlation, concentration, leverage and
margin risk, rolled up into a single risk level.

It provides tools for:
  - Risk analysis with alerts and recommendations
  - Stress testing against market crash scenarios
  - Risk-constrained position sizing
  - Managing risk limits and the report history

Return series are simulated, not historical. Seed them with
analysis.seed for reproducible output.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			cfg.Log.Level = logLevel
		}
		logging.Init(cfg.Log.Level, cfg.Log.Format)
		return nil
	},
}

var (
	cfgFile  string
	logLevel string
	cfg      *config.Config
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); FXRISK_* variables override it")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")
}

// openManager builds the risk manager from the loaded config.
func openManager(ctx context.Context, rec *metrics.Recorder) (*manager.Manager, error) {
	return manager.FromConfig(ctx, cfg, rec, logging.New("manager"))
}

func cliLogger() zerolog.Logger {
	return logging.New("cli")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}
