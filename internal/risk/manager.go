package risk

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// DefaultVolatility is used until enough market data has been observed.
const DefaultVolatility = 0.02

// criticalEscalation is the multiple of a limit at which an alert
// escalates from warning to critical.
const criticalEscalation = 1.5

// Manager handles position sizing, limit evaluation and volatility
// tracking for a single bot. Sizing and stop calculations are pure given
// the trade history; volatility state is mutex-protected so a scheduler
// can refresh it while a session reads it.
type Manager struct {
	limits  Limits
	params  TradeParams
	history TradeHistoryProvider
	alerts  Sink
	logger  *logrus.Logger

	mu             sync.RWMutex
	volatility     float64
	volatilityGate *rate.Limiter
}

// NewManager creates a risk manager. A nil sink disables alert delivery
// (evaluation still runs); a nil history behaves as an empty one.
func NewManager(limits Limits, params TradeParams, history TradeHistoryProvider, alerts Sink, logger *logrus.Logger) *Manager {
	if history == nil {
		history = NewMemoryHistory()
	}
	return &Manager{
		limits:         limits,
		params:         params,
		history:        history,
		alerts:         alerts,
		logger:         logger,
		volatility:     DefaultVolatility,
		volatilityGate: rate.NewLimiter(rate.Every(15*time.Minute), 1),
	}
}

// Limits returns the configured limit set.
func (m *Manager) Limits() Limits {
	return m.limits
}

// Params returns the per-trade configuration.
func (m *Manager) Params() TradeParams {
	return m.params
}

// PositionSize calculates the quantity for a new trade using fractional
// Kelly sizing derived from the recorded trade history.
func (m *Manager) PositionSize(ctx context.Context, availableBalance, currentPrice float64) (float64, error) {
	if currentPrice <= 0 || availableBalance <= 0 {
		return 0, nil
	}

	kelly, err := m.kellyFraction(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to derive kelly fraction: %w", err)
	}

	stopLossAmount := currentPrice * m.params.StopLoss
	if stopLossAmount == 0 {
		return 0, nil
	}

	riskAmount := availableBalance * m.params.RiskPerTrade * kelly
	size := riskAmount / stopLossAmount

	maxSize := availableBalance * m.limits.MaxPositionSize / currentPrice
	finalSize := math.Min(size, maxSize)

	if m.limits.MicroModeEnabled && availableBalance < m.limits.MicroBalanceThreshold {
		minSize := availableBalance * m.limits.MinPositionSize / currentPrice
		finalSize = math.Max(finalSize, minSize)
		finalSize = math.Min(finalSize, availableBalance*m.limits.MicroMaxFraction/currentPrice)
	}

	m.logger.WithFields(logrus.Fields{
		"available_balance": availableBalance,
		"current_price":     currentPrice,
		"kelly_fraction":    kelly,
		"risk_amount":       riskAmount,
		"position_size":     finalSize,
	}).Debug("Position size calculated")

	return finalSize, nil
}

// RecordTrade appends an executed trade to the history the sizing and
// metric formulas read from.
func (m *Manager) RecordTrade(ctx context.Context, trade models.Trade) error {
	return m.history.Record(ctx, trade)
}

// kellyFraction derives the half-Kelly fraction from closed-trade win
// rate, falling back to the bootstrap fraction with no history.
func (m *Manager) kellyFraction(ctx context.Context) (float64, error) {
	trades, err := m.history.Trades(ctx)
	if err != nil {
		return 0, err
	}

	wins, losses := 0, 0
	for i := range trades {
		if trades[i].RealizedPnL == nil {
			continue
		}
		if *trades[i].RealizedPnL > 0 {
			wins++
		} else {
			losses++
		}
	}

	total := wins + losses
	if total == 0 {
		return m.limits.KellyBootstrap, nil
	}

	winRate := float64(wins) / float64(total)
	winMultiplier := m.params.TakeProfit / m.params.StopLoss

	kelly := (winRate*winMultiplier - (1 - winRate)) / winMultiplier
	return math.Max(0, kelly*0.5), nil
}

// DynamicStopLoss returns the trailing stop for a long position, never
// above the static stop implied by the configured stop-loss fraction.
func (m *Manager) DynamicStopLoss(entryPrice, currentPrice float64) float64 {
	riskAmount := entryPrice * m.params.RiskPerTrade
	distance := riskAmount / (entryPrice * m.limits.StopLossMultiplier)

	trailingStop := currentPrice * (1 - distance)
	return math.Min(trailingStop, entryPrice*(1-m.params.StopLoss))
}

// TakeProfit returns the take-profit level for a long position.
func (m *Manager) TakeProfit(entryPrice float64) float64 {
	return entryPrice * (1 + m.params.TakeProfit*m.limits.TakeProfitMultiplier)
}

// Metrics computes current risk metrics from the trade history and the
// live portfolio state.
func (m *Manager) Metrics(ctx context.Context, portfolio *models.Portfolio, currentPrice float64) (Metrics, error) {
	trades, err := m.history.Trades(ctx)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to load trade history: %w", err)
	}

	equity := equityFromTrades(trades, portfolio.TotalBalance)
	exposure := portfolio.Exposure(currentPrice)

	metrics := Metrics{
		CurrentDrawdown: currentDrawdown(equity),
		MaxDrawdown:     maxDrawdown(equity),
		DailyLoss:       m.dailyLossFraction(trades, portfolio.TotalBalance),
		PositionSize:    exposure,
		TotalExposure:   exposure,
		RiskPerTrade:    m.params.RiskPerTrade,
	}

	CurrentDrawdownGauge.Set(metrics.CurrentDrawdown)
	return metrics, nil
}

// ShouldHalt evaluates risk limits against the current portfolio and
// reports whether trading should stop, with the first breached limit as
// the reason. Breaches always raise alerts; with persistent mode enabled
// the halt itself is suppressed.
func (m *Manager) ShouldHalt(ctx context.Context, botID string, portfolio *models.Portfolio, currentPrice float64) (bool, string, error) {
	metrics, err := m.Metrics(ctx, portfolio, currentPrice)
	if err != nil {
		return false, "", err
	}

	type check struct {
		name    string
		value   float64
		limit   float64
		message string
	}
	checks := []check{
		{"drawdown", metrics.CurrentDrawdown, m.limits.MaxDrawdown,
			fmt.Sprintf("Max drawdown exceeded: %.2f%% >= %.2f%%", metrics.CurrentDrawdown*100, m.limits.MaxDrawdown*100)},
		{"daily_loss", metrics.DailyLoss, m.limits.MaxDailyLoss,
			fmt.Sprintf("Daily loss limit exceeded: %.2f%% >= %.2f%%", metrics.DailyLoss*100, m.limits.MaxDailyLoss*100)},
		{"exposure", metrics.TotalExposure, m.limits.MaxTotalExposure,
			fmt.Sprintf("Total exposure limit exceeded: %.2f%% >= %.2f%%", metrics.TotalExposure*100, m.limits.MaxTotalExposure*100)},
	}

	reason, breached := "", ""
	for _, c := range checks {
		if c.value < c.limit {
			continue
		}
		m.raiseAlert(ctx, botID, c.name, c.value, c.limit, c.message)
		if reason == "" {
			reason = c.message
			breached = c.name
		}
	}

	if reason == "" {
		return false, "", nil
	}

	if m.limits.PersistentMode {
		m.logger.WithFields(logrus.Fields{
			"bot_id": botID,
			"reason": reason,
		}).Warn("Risk limit breached, halt suppressed by persistent mode")
		return false, "", nil
	}

	HaltDecisionsTotal.WithLabelValues(breached).Inc()
	return true, reason, nil
}

// raiseAlert delivers an alert through the sink. Delivery failures are
// logged and never propagate.
func (m *Manager) raiseAlert(ctx context.Context, botID, alertType string, value, limit float64, message string) {
	severity := SeverityWarning
	if limit > 0 && value >= limit*criticalEscalation {
		severity = SeverityCritical
	}

	AlertsTotal.WithLabelValues(alertType, string(severity)).Inc()

	if m.alerts == nil {
		return
	}

	outcome := m.alerts.RecordAlert(ctx, Alert{
		BotID:        botID,
		Type:         alertType,
		Severity:     severity,
		Message:      message,
		CurrentValue: value,
		Limit:        limit,
		Timestamp:    time.Now().UTC(),
	})
	if !outcome.Delivered {
		m.logger.WithFields(logrus.Fields{
			"bot_id": botID,
			"type":   alertType,
		}).WithError(outcome.Err).Warn("Failed to deliver risk alert")
	}
}

// UpdateVolatility recalculates historical volatility from the given
// bars. Refreshes are gated to one per fifteen minutes; calls inside the
// window keep the previous estimate and report false. A sample too small
// to produce returns also keeps the previous estimate, without consuming
// the refresh window.
func (m *Manager) UpdateVolatility(bars []models.Bar) bool {
	returns := marketdata.LogReturns(bars)
	if len(returns) == 0 {
		m.logger.WithField("bars", len(bars)).Debug("Volatility refresh skipped, not enough bars")
		return false
	}

	if !m.volatilityGate.Allow() {
		return false
	}

	value := stddev(returns)

	m.mu.Lock()
	m.volatility = value
	m.mu.Unlock()

	VolatilityIndex.Set(value)
	m.logger.WithFields(logrus.Fields{
		"volatility": value,
		"bars":       len(bars),
	}).Debug("Historical volatility updated")

	return true
}

// Volatility returns the current historical volatility estimate.
func (m *Manager) Volatility() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.volatility
}

// stddev is the population standard deviation of log-returns.
func stddev(returns []float64) float64 {
	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	variance := 0.0
	for _, r := range returns {
		variance += (r - mean) * (r - mean)
	}
	variance /= float64(len(returns))

	return math.Sqrt(variance)
}

// equityFromTrades folds trades into a per-day equity curve seeded with
// the initial balance.
func equityFromTrades(trades []models.Trade, initialBalance float64) []float64 {
	equity := []float64{initialBalance}
	balance := initialBalance

	if len(trades) == 0 {
		return equity
	}

	currentDay := trades[0].Day()
	for i := range trades {
		if !trades[i].Day().Equal(currentDay) {
			equity = append(equity, balance)
			currentDay = trades[i].Day()
		}
		balance += tradeCashFlow(&trades[i])
	}
	equity = append(equity, balance)

	return equity
}

// tradeCashFlow is the balance delta a trade produced: buys remove the
// position cost plus fee, sells return the proceeds net of fee.
func tradeCashFlow(trade *models.Trade) float64 {
	if trade.Side == models.TradeSideBuy {
		return -(trade.Total + trade.Fee)
	}
	return trade.Total - trade.Fee
}

func currentDrawdown(equity []float64) float64 {
	if len(equity) == 0 {
		return 0
	}

	peak := equity[0]
	for _, v := range equity {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return 0
	}
	return (peak - equity[len(equity)-1]) / peak
}

func maxDrawdown(equity []float64) float64 {
	if len(equity) < 2 {
		return 0
	}

	maxDD := 0.0
	peak := equity[0]
	for _, v := range equity[1:] {
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}
	return maxDD
}

// dailyLossFraction is the worst losing day's P&L as a fraction of the
// portfolio balance.
func (m *Manager) dailyLossFraction(trades []models.Trade, totalBalance float64) float64 {
	if len(trades) == 0 || totalBalance <= 0 {
		return 0
	}

	dailyPnL := make(map[time.Time]float64)
	for i := range trades {
		dailyPnL[trades[i].Day()] += tradeCashFlow(&trades[i])
	}

	worst := 0.0
	for _, pnl := range dailyPnL {
		if pnl < worst {
			worst = pnl
		}
	}

	return math.Abs(worst) / totalBalance
}
