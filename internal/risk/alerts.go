package risk

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Severity classifies how far past its limit a metric has moved
type Severity string

const (
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert describes a single breached risk limit.
type Alert struct {
	BotID        string    `json:"bot_id"`
	Type         string    `json:"type"`
	Severity     Severity  `json:"severity"`
	Message      string    `json:"message"`
	CurrentValue float64   `json:"current_value"`
	Limit        float64   `json:"limit"`
	Timestamp    time.Time `json:"timestamp"`
}

// Outcome reports whether an alert was delivered. Delivery failures are
// informational: the risk evaluation that raised the alert never depends
// on the sink succeeding.
type Outcome struct {
	Delivered bool
	Err       error
}

// Sink receives risk alerts.
type Sink interface {
	RecordAlert(ctx context.Context, alert Alert) Outcome
}

// LogSink writes alerts to the structured log. It is the default sink for
// backtests and tests.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a sink backed by the given logger.
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// RecordAlert logs the alert.
func (s *LogSink) RecordAlert(ctx context.Context, alert Alert) Outcome {
	entry := s.logger.WithFields(logrus.Fields{
		"bot_id":        alert.BotID,
		"type":          alert.Type,
		"severity":      alert.Severity,
		"current_value": alert.CurrentValue,
		"limit":         alert.Limit,
	})

	if alert.Severity == SeverityCritical {
		entry.Error(alert.Message)
	} else {
		entry.Warn(alert.Message)
	}

	return Outcome{Delivered: true}
}
