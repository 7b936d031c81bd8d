// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "crypto_orchestrator",
		Name:      "backtest_runs_total",
		Help:      "Total number of backtest runs by method and status",
	}, []string{"method", "status"})
)

// Backtest histogram vectors
var (
	BacktestCompositeScore = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "crypto_orchestrator",
		Name:      "backtest_composite_score",
		Help:      "Composite scores from backtest runs by bot and method",
		Buckets:   []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
	}, []string{"bot_id", "method"})
)

// Backtest gauge vectors
var (
	BacktestTotalReturn = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "crypto_orchestrator",
		Name:      "backtest_total_return",
		Help:      "Total return of the latest backtest run per bot",
	}, []string{"bot_id"})
)

// RecordBacktestRun records a backtest run event.
// method should be one of: "historical_replay", "monte_carlo", "walk_forward"
// status should be one of: "success", "failure", "cancelled"
func RecordBacktestRun(method, status string) {
	BacktestRunsTotal.WithLabelValues(method, status).Inc()
}

// RecordCompositeScore records a composite score from a backtest run.
func RecordCompositeScore(botID, method string, score float64) {
	BacktestCompositeScore.WithLabelValues(botID, method).Observe(score)
}

// UpdateTotalReturn updates the latest total return for a bot.
func UpdateTotalReturn(botID string, totalReturn float64) {
	BacktestTotalReturn.WithLabelValues(botID).Set(totalReturn)
}
