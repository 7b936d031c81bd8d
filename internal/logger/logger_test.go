package logger

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("parses valid level", func(t *testing.T) {
		logger := NewLogger("debug")
		assert.Equal(t, logrus.DebugLevel, logger.GetLevel())
	})

	t.Run("falls back to info on invalid level", func(t *testing.T) {
		logger := NewLogger("nonsense")
		assert.Equal(t, logrus.InfoLevel, logger.GetLevel())
	})

	t.Run("json formatter in production", func(t *testing.T) {
		t.Setenv("CRYPTO_ORCH_APP_ENVIRONMENT", "production")
		logger := NewLogger("info")
		_, ok := logger.Formatter.(*logrus.JSONFormatter)
		assert.True(t, ok)
	})
}

func captureOutput(logger *logrus.Logger) *bytes.Buffer {
	buf := &bytes.Buffer{}
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return buf
}

func TestAuditLogger(t *testing.T) {
	base := NewLogger("info")
	buf := captureOutput(base)
	audit := NewAuditLogger(base)

	audit.LogTradeExecution("t-1", "bot-1", "BTC/USDT", "buy", 0.1, 50000, 5, time.Now(), true)

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, `"component":"audit"`)
	assert.Contains(t, out, `"trade_id":"t-1"`)
	assert.Contains(t, out, `"side":"buy"`)

	buf.Reset()
	audit.LogTradingHalt("bot-1", "max_drawdown", map[string]interface{}{"drawdown": 0.12})
	assert.Contains(t, buf.String(), `"reason":"max_drawdown"`)
}

func TestSignalLogger(t *testing.T) {
	base := NewLogger("info")
	buf := captureOutput(base)
	sl := NewSignalLogger(base)

	sl.LogPredictionRequest("momentum", 50, true, 1.2)

	out := buf.String()
	assert.Contains(t, out, `"component":"signal"`)
	assert.Contains(t, out, `"cache_hit":true`)
}

func TestBacktestLogger(t *testing.T) {
	base := NewLogger("info")
	buf := captureOutput(base)
	bl := NewBacktestLogger(base)

	bl.LogRunComplete("bot-1", 12, 0.08, 1.4, 0.05, 320)

	out := buf.String()
	assert.Contains(t, out, `"component":"backtest"`)
	assert.Contains(t, out, `"total_trades":12`)
}
