package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rustyeddy/fxrisk/manager"
	"github.com/rustyeddy/fxrisk/metrics"
	"github.com/rustyeddy/fxrisk/portfolio"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-analyse a portfolio file on an interval",
	Long: `Reload and analyse a portfolio file every --interval, logging alerts and
serving Prometheus metrics on metrics.addr until interrupted.

Examples:
  fxrisk watch -p portfolio.yaml --interval 30s
  fxrisk watch -p portfolio.yaml --metrics-addr :9100`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var (
	watchPortfolio   string
	watchInterval    time.Duration
	watchIterations  int
	watchMetricsAddr string
)

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchPortfolio, "portfolio", "p", "", "portfolio file (YAML or JSON) (required)")
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", time.Minute, "time between analyses")
	watchCmd.Flags().IntVar(&watchIterations, "iterations", 0, "stop after n analyses (0 runs until interrupted)")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "override metrics.addr; \"off\" disables the endpoint")
	watchCmd.MarkFlagRequired("portfolio")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if watchInterval <= 0 {
		return fmt.Errorf("interval must be positive")
	}
	log := cliLogger()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	rec := metrics.New(reg)

	m, err := openManager(ctx, rec)
	if err != nil {
		return err
	}
	defer m.Close()

	addr := cfg.Metrics.Addr
	if watchMetricsAddr != "" {
		addr = watchMetricsAddr
	}
	if addr != "off" && addr != "" {
		srv := &http.Server{Addr: addr, Handler: metricsHandler(reg), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Str("addr", addr).Msg("metrics server stopped")
			}
		}()
		defer func() {
			shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdown)
		}()
		log.Info().Str("addr", addr).Msg("serving metrics")
	}

	ticker := time.NewTicker(watchInterval)
	defer ticker.Stop()

	for n := 1; ; n++ {
		watchOnce(ctx, m)
		if watchIterations > 0 && n >= watchIterations {
			return nil
		}
		select {
		case <-ctx.Done():
			log.Info().Msg("watch stopped")
			return nil
		case <-ticker.C:
		}
	}
}

func metricsHandler(reg *prometheus.Registry) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return mux
}

// watchOnce analyses the current file. Errors are logged so one bad write
// of the portfolio file does not stop the loop.
func watchOnce(ctx context.Context, m *manager.Manager) {
	log := cliLogger()

	p, err := portfolio.LoadFile(watchPortfolio)
	if err != nil {
		log.Error().Err(err).Str("portfolio", watchPortfolio).Msg("load portfolio")
		return
	}
	if _, err := m.AnalyzePortfolioRisk(ctx, p); err != nil {
		log.Error().Err(err).Msg("analyse portfolio")
	}
}
