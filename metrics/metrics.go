// Package metrics exposes Prometheus collectors for risk analysis.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rustyeddy/fxrisk/risk"
)

const namespace = "fxrisk"

// Recorder holds the fxrisk collectors. A nil *Recorder records nothing.
type Recorder struct {
	Analyses         *prometheus.CounterVec
	OverallScore     prometheus.Gauge
	AnalysisDuration prometheus.Histogram
	Alerts           *prometheus.CounterVec
	StressRuns       prometheus.Counter
	StressChange     *prometheus.GaugeVec
	StoreFailures    *prometheus.CounterVec
}

// New registers the collectors on reg. Passing the same registry twice
// panics, as with any duplicate registration.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		Analyses: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "analyses_total",
				Help:      "Total number of portfolio risk analyses by risk level",
			},
			[]string{"level"},
		),
		OverallScore: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_risk_score",
			Help:      "Overall risk score of the most recent analysis",
		}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Time taken to analyse a portfolio",
			Buckets:   prometheus.DefBuckets,
		}),
		Alerts: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "alerts_total",
				Help:      "Total number of risk alerts generated",
			},
			[]string{"type", "severity"},
		),
		StressRuns: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stress_runs_total",
			Help:      "Total number of stress tests performed",
		}),
		StressChange: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "stress_value_change",
				Help:      "Fractional portfolio value change in the most recent stress test",
			},
			[]string{"scenario"},
		),
		StoreFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_failures_total",
				Help:      "Total number of failed persistence operations",
			},
			[]string{"op"},
		),
	}
}

func (r *Recorder) ObserveAnalysis(a risk.Analysis, took time.Duration) {
	if r == nil {
		return
	}
	r.Analyses.WithLabelValues(string(a.RiskLevel)).Inc()
	r.OverallScore.Set(a.OverallRiskScore)
	r.AnalysisDuration.Observe(took.Seconds())
}

func (r *Recorder) ObserveAlerts(alerts []risk.Alert) {
	if r == nil {
		return
	}
	for _, a := range alerts {
		r.Alerts.WithLabelValues(string(a.Type), string(a.Severity)).Inc()
	}
}

func (r *Recorder) ObserveStress(results map[string]risk.StressResult) {
	if r == nil {
		return
	}
	r.StressRuns.Inc()
	for name, res := range results {
		r.StressChange.WithLabelValues(name).Set(res.ValueChange)
	}
}

func (r *Recorder) StoreFailure(op string) {
	if r == nil {
		return
	}
	r.StoreFailures.WithLabelValues(op).Inc()
}
