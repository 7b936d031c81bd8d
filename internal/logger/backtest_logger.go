// Package logger provides backtest-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// BacktestLogger provides dedicated logging for simulation runs.
type BacktestLogger struct {
	*logrus.Entry
}

// NewBacktestLogger creates a new backtest logger.
func NewBacktestLogger(baseLogger *logrus.Logger) *BacktestLogger {
	return &BacktestLogger{
		Entry: baseLogger.WithField("component", "backtest"),
	}
}

// LogRunStart logs the start of a simulation run.
func (bl *BacktestLogger) LogRunStart(botID, symbol string, bars int, initialBalance float64) {
	bl.WithFields(logrus.Fields{
		"bot_id":          botID,
		"symbol":          symbol,
		"bars":            bars,
		"initial_balance": initialBalance,
	}).Info("Backtest run started")
}

// LogRunComplete logs the outcome of a simulation run.
func (bl *BacktestLogger) LogRunComplete(botID string, totalTrades int, totalReturn, sharpeRatio, maxDrawdown float64, durationMs float64) {
	bl.WithFields(logrus.Fields{
		"bot_id":       botID,
		"total_trades": totalTrades,
		"total_return": totalReturn,
		"sharpe_ratio": sharpeRatio,
		"max_drawdown": maxDrawdown,
		"duration_ms":  durationMs,
	}).Info("Backtest run completed")
}

// LogWalkForwardWindow logs one walk-forward window result.
func (bl *BacktestLogger) LogWalkForwardWindow(windowID, trainStart, testEnd int, trainReturn, testReturn float64) {
	bl.WithFields(logrus.Fields{
		"window_id":    windowID,
		"train_start":  trainStart,
		"test_end":     testEnd,
		"train_return": trainReturn,
		"test_return":  testReturn,
	}).Info("Walk-forward window completed")
}

// LogRecommendation logs the aggregated recommendation for a bot config.
func (bl *BacktestLogger) LogRecommendation(botID, recommendation string, compositeScore, consistencyScore float64) {
	bl.WithFields(logrus.Fields{
		"bot_id":            botID,
		"recommendation":    recommendation,
		"composite_score":   compositeScore,
		"consistency_score": consistencyScore,
	}).Info("Backtest recommendation generated")
}
