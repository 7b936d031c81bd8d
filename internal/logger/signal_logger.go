// Package logger provides signal-specific logging.
package logger

import (
	"github.com/sirupsen/logrus"
)

// SignalLogger provides dedicated logging for signal source operations.
type SignalLogger struct {
	*logrus.Entry
}

// NewSignalLogger creates a new signal logger.
func NewSignalLogger(baseLogger *logrus.Logger) *SignalLogger {
	return &SignalLogger{
		Entry: baseLogger.WithField("component", "signal"),
	}
}

// LogPredictionRequest logs a completed prediction request.
func (sl *SignalLogger) LogPredictionRequest(source string, barsEvaluated int, cacheHit bool, latencyMs float64) {
	sl.WithFields(logrus.Fields{
		"source":         source,
		"bars_evaluated": barsEvaluated,
		"cache_hit":      cacheHit,
		"latency_ms":     latencyMs,
	}).Info("Prediction request completed")
}

// LogSignalDecision logs an actionable prediction.
func (sl *SignalLogger) LogSignalDecision(source, symbol, action string, confidence float64, reasoning []string) {
	sl.WithFields(logrus.Fields{
		"source":     source,
		"symbol":     symbol,
		"action":     action,
		"confidence": confidence,
		"reasoning":  reasoning,
	}).Info("Signal decision made")
}

// LogSourceFailure logs a signal source failure.
func (sl *SignalLogger) LogSourceFailure(source string, attempts int, err error) {
	sl.WithFields(logrus.Fields{
		"source":   source,
		"attempts": attempts,
	}).WithError(err).Warn("Signal source request failed")
}
