// Package metrics provides the centralized Prometheus metrics registry
// for the trading platform.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	TradesExecutedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crypto_orchestrator",
		Name:      "trades_executed_total",
		Help:      "Total number of simulated trades executed by side",
	}, []string{"side"})
	SignalEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_orchestrator",
		Name:      "signal_evaluations_total",
		Help:      "Total number of signal source evaluations",
	})
	RiskEvaluationsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "crypto_orchestrator",
		Name:      "risk_evaluations_total",
		Help:      "Total number of risk limit evaluations",
	})
)

// Gauge metrics
var (
	CurrentEquity = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "crypto_orchestrator",
		Name:      "current_equity",
		Help:      "Current mark-to-market equity in quote currency",
	})
	OpenPositionValue = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "crypto_orchestrator",
		Name:      "open_position_value",
		Help:      "Mark-to-market value of open positions",
	})
	CurrentDrawdown = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "crypto_orchestrator",
		Name:      "current_drawdown",
		Help:      "Current drawdown as a fraction of peak equity",
	})
)

// Histogram metrics
var (
	SignalEvaluationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crypto_orchestrator",
		Name:      "signal_evaluation_duration_seconds",
		Help:      "Duration of signal evaluations in seconds",
		Buckets:   prometheus.DefBuckets,
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "crypto_orchestrator",
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register counter metrics
		registry.MustRegister(TradesExecutedTotal)
		registry.MustRegister(SignalEvaluationsTotal)
		registry.MustRegister(RiskEvaluationsTotal)

		// Register gauge metrics
		registry.MustRegister(CurrentEquity)
		registry.MustRegister(OpenPositionValue)
		registry.MustRegister(CurrentDrawdown)

		// Register histogram metrics
		registry.MustRegister(SignalEvaluationDuration)
		registry.MustRegister(BacktestDuration)

		// Register backtest metrics
		registry.MustRegister(BacktestRunsTotal)
		registry.MustRegister(BacktestTotalReturn)
		registry.MustRegister(BacktestCompositeScore)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordTradeExecuted records a simulated trade by side.
func RecordTradeExecuted(side string) {
	TradesExecutedTotal.WithLabelValues(side).Inc()
}

// RecordSignalEvaluation records a signal evaluation event.
func RecordSignalEvaluation(durationSeconds float64) {
	SignalEvaluationsTotal.Inc()
	SignalEvaluationDuration.Observe(durationSeconds)
}

// RecordRiskEvaluation records a risk limit evaluation event.
func RecordRiskEvaluation() {
	RiskEvaluationsTotal.Inc()
}

// UpdateEquity updates the current equity gauge.
func UpdateEquity(amount float64) {
	CurrentEquity.Set(amount)
}

// UpdateOpenPositionValue updates the open position value gauge.
func UpdateOpenPositionValue(amount float64) {
	OpenPositionValue.Set(amount)
}

// UpdateDrawdown updates the current drawdown gauge.
func UpdateDrawdown(fraction float64) {
	CurrentDrawdown.Set(fraction)
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}
