package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
)

type stubBarRepository struct {
	bars []models.Bar
	err  error
}

func (s *stubBarRepository) InsertBatch(ctx context.Context, symbol string, bars []models.Bar) error {
	return nil
}

func (s *stubBarRepository) GetRange(ctx context.Context, symbol string, start, end time.Time) ([]models.Bar, error) {
	return s.bars, s.err
}

func (s *stubBarRepository) GetLatest(ctx context.Context, symbol string, limit int) ([]models.Bar, error) {
	return s.bars, s.err
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func newTestScheduler() *Scheduler {
	manager := risk.NewManager(risk.DefaultLimits(), risk.TradeParams{RiskPerTrade: 0.02, StopLoss: 0.02, TakeProfit: 0.03}, nil, nil, quietLogger())
	return NewScheduler(manager, &stubBarRepository{}, time.Second, quietLogger())
}

func TestSchedulerLifecycle(t *testing.T) {
	s := newTestScheduler()

	t.Run("start without jobs fails", func(t *testing.T) {
		assert.Error(t, s.Start())
	})

	provider := func(ctx context.Context) (*models.Portfolio, float64, error) {
		return models.NewPortfolio(1000), 100, nil
	}

	require.NoError(t, s.ScheduleVolatilityRefresh("@every 1h", "BTC/USDT"))
	require.NoError(t, s.ScheduleRiskEvaluation("@every 1h", "bot-1", provider))

	require.NoError(t, s.Start())
	assert.True(t, s.IsRunning())
	assert.Len(t, s.Entries(), 2)
	assert.False(t, s.GetNextRun().IsZero())

	t.Run("double start fails", func(t *testing.T) {
		assert.Error(t, s.Start())
	})

	t.Run("cannot schedule while running", func(t *testing.T) {
		assert.Error(t, s.ScheduleVolatilityRefresh("@every 1h", "ETH/USDT"))
	})

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())

	t.Run("stop when idle is a no-op", func(t *testing.T) {
		assert.NoError(t, s.Stop())
	})
}

func TestScheduleRiskEvaluationRequiresProvider(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.ScheduleRiskEvaluation("@every 1m", "bot-1", nil))
}

func TestScheduleInvalidCronExpression(t *testing.T) {
	s := newTestScheduler()
	assert.Error(t, s.ScheduleVolatilityRefresh("not a cron", "BTC/USDT"))
}

func TestSchedulerVolatilityRequiresBars(t *testing.T) {
	manager := risk.NewManager(risk.DefaultLimits(), risk.TradeParams{RiskPerTrade: 0.02, StopLoss: 0.02, TakeProfit: 0.03}, nil, nil, quietLogger())
	s := NewScheduler(manager, nil, time.Second, quietLogger())
	assert.Error(t, s.ScheduleVolatilityRefresh("@every 1h", "BTC/USDT"))
}
