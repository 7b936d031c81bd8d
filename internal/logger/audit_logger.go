// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides dedicated audit trail logging.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogTradeExecution logs a trade fill.
func (al *AuditLogger) LogTradeExecution(tradeID, botID, symbol, side string, amount, price, fee float64, timestamp time.Time, paperTrading bool) {
	al.WithFields(logrus.Fields{
		"trade_id":      tradeID,
		"bot_id":        botID,
		"symbol":        symbol,
		"side":          side,
		"amount":        amount,
		"price":         price,
		"fee":           fee,
		"timestamp":     timestamp.Unix(),
		"paper_trading": paperTrading,
	}).Info("Trade execution recorded")
}

// LogRiskLimitBreach logs a breached risk limit.
func (al *AuditLogger) LogRiskLimitBreach(botID, limitType string, value, limit float64, severity string) {
	al.WithFields(logrus.Fields{
		"bot_id":     botID,
		"limit_type": limitType,
		"value":      value,
		"limit":      limit,
		"severity":   severity,
	}).Warn("Risk limit breached")
}

// LogTradingHalt logs a trading halt decision.
func (al *AuditLogger) LogTradingHalt(botID, reason string, metricsSnapshot map[string]interface{}) {
	al.WithFields(logrus.Fields{
		"bot_id":  botID,
		"reason":  reason,
		"metrics": metricsSnapshot,
	}).Warn("Trading halted")
}

// LogParameterChange logs risk parameter changes.
func (al *AuditLogger) LogParameterChange(botID, parameterName string, oldValue, newValue interface{}, changedBy string) {
	al.WithFields(logrus.Fields{
		"bot_id":         botID,
		"parameter_name": parameterName,
		"old_value":      oldValue,
		"new_value":      newValue,
		"changed_by":     changedBy,
	}).Info("Risk parameter changed")
}
