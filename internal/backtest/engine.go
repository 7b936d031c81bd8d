package backtest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/metrics"
	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
	"github.com/yourusername/crypto-orchestrator/internal/signal"
)

// Engine replays a market data series bar by bar, asking the signal
// source for a decision at each bar and sizing fills through the risk
// manager. A run either completes with a full result or fails with an
// error; there are no partial results.
type Engine struct {
	config      Config
	source      signal.Source
	riskManager *risk.Manager
	logger      *logrus.Logger

	mu     sync.Mutex
	status Status
}

// NewEngine creates a simulation engine.
func NewEngine(cfg Config, source signal.Source, riskManager *risk.Manager, logger *logrus.Logger) (*Engine, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("%w: signal source is required", ErrInvalidConfig)
	}
	if riskManager == nil {
		return nil, fmt.Errorf("%w: risk manager is required", ErrInvalidConfig)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &Engine{
		config:      cfg,
		source:      source,
		riskManager: riskManager,
		logger:      logger,
		status:      StatusIdle,
	}, nil
}

// Config returns the backtest configuration
func (e *Engine) Config() Config {
	return e.config
}

// Status returns the engine lifecycle status.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Run replays the series and returns the completed result. The context
// is checked before every bar; cancellation fails the run at that bar.
func (e *Engine) Run(ctx context.Context, series *marketdata.Series) (*models.BacktestResult, error) {
	e.mu.Lock()
	if e.status == StatusRunning {
		e.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	e.status = StatusRunning
	e.mu.Unlock()

	start := time.Now()
	e.logger.WithFields(logrus.Fields{
		"bot_id":  e.config.BotID,
		"symbol":  series.Symbol(),
		"bars":    series.Len(),
		"warmup":  e.config.WarmupBars,
		"balance": e.config.InitialBalance,
	}).Info("Starting backtest run")

	result, err := e.replay(ctx, series)
	if err != nil {
		e.setStatus(StatusFailed)
		metrics.RecordBacktestRun("historical_replay", "failure")
		e.logger.WithError(err).Error("Backtest run failed")
		return nil, err
	}

	e.setStatus(StatusCompleted)
	metrics.RecordBacktestRun("historical_replay", "success")
	metrics.RecordBacktestDuration(time.Since(start).Seconds())
	metrics.UpdateTotalReturn(e.config.BotID, result.TotalReturn)

	e.logger.WithFields(logrus.Fields{
		"bot_id":        e.config.BotID,
		"total_trades":  result.TotalTrades,
		"total_return":  result.TotalReturn,
		"max_drawdown":  result.MaxDrawdown,
		"sharpe_ratio":  result.SharpeRatio,
		"final_balance": result.FinalBalance,
		"duration":      time.Since(start),
	}).Info("Backtest run completed")

	return result, nil
}

func (e *Engine) replay(ctx context.Context, series *marketdata.Series) (*models.BacktestResult, error) {
	if series.Len() < e.config.WarmupBars {
		return nil, fmt.Errorf("%w: have %d bars, need %d", ErrInsufficientData, series.Len(), e.config.WarmupBars)
	}

	state := NewState(e.config.InitialBalance)
	symbol := series.Symbol()

	for i := e.config.WarmupBars; i < series.Len(); i++ {
		bar := series.Bar(i)

		if err := ctx.Err(); err != nil {
			return nil, &BarError{Index: i, Timestamp: bar.Timestamp, Err: err}
		}

		evalStart := time.Now()
		prediction, err := e.source.Predict(ctx, series.UpTo(i))
		metrics.RecordSignalEvaluation(time.Since(evalStart).Seconds())
		if err != nil {
			return nil, &BarError{Index: i, Timestamp: bar.Timestamp,
				Err: fmt.Errorf("signal source %s: %w", e.source.Name(), err)}
		}

		if err := e.executeTrade(ctx, prediction.Action, symbol, bar, state); err != nil {
			return nil, &BarError{Index: i, Timestamp: bar.Timestamp, Err: err}
		}

		equity := state.Portfolio.MarkToMarket(bar.Close)
		state.RecordEquityPoint(bar.Timestamp, equity)
		metrics.UpdateEquity(equity)
		metrics.UpdateOpenPositionValue(state.Portfolio.OpenPositionValue(bar.Close))
		metrics.UpdateDrawdown(state.CurrentDrawdown())
	}

	perf := CalculateMetrics(state.Trades, state.EquityCurve, e.config.InitialBalance, e.config.AnnualizationPeriods)

	return &models.BacktestResult{
		ID:           uuid.New(),
		Symbol:       symbol,
		TotalReturn:  perf.TotalReturn,
		SharpeRatio:  perf.SharpeRatio,
		MaxDrawdown:  perf.MaxDrawdown,
		WinRate:      perf.WinRate,
		TotalTrades:  perf.TotalTrades,
		ProfitFactor: perf.ProfitFactor,
		FinalBalance: perf.FinalBalance,
		Trades:       state.Trades,
		EquityCurve:  state.EquityCurve.Points(),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// executeTrade applies one signal to the portfolio. Buys with an open
// position and sells without one are no-ops, as is a hold.
func (e *Engine) executeTrade(ctx context.Context, action signal.Action, symbol string, bar models.Bar, state *State) error {
	switch action {
	case signal.ActionBuy:
		return e.enterPosition(ctx, symbol, bar, state)
	case signal.ActionSell:
		return e.exitPosition(ctx, symbol, bar, state)
	case signal.ActionHold:
		return nil
	default:
		return fmt.Errorf("%w: unknown action %q", signal.ErrInvalidPrediction, action)
	}
}

func (e *Engine) enterPosition(ctx context.Context, symbol string, bar models.Bar, state *State) error {
	portfolio := state.Portfolio
	if portfolio.Position(symbol) != nil {
		return nil
	}

	price := bar.Close
	quantity, err := e.riskManager.PositionSize(ctx, portfolio.AvailableBalance, price)
	if err != nil {
		return fmt.Errorf("position sizing failed: %w", err)
	}
	if quantity <= 0 {
		return nil
	}

	cost := quantity * price
	fee := cost * e.config.Commission
	if cost+fee > portfolio.AvailableBalance {
		e.logger.WithFields(logrus.Fields{
			"symbol":    symbol,
			"cost":      cost + fee,
			"available": portfolio.AvailableBalance,
		}).Debug("Skipping entry, insufficient balance")
		return nil
	}

	portfolio.AvailableBalance -= cost + fee
	portfolio.OpenPositions[symbol] = &models.Position{
		Symbol:     symbol,
		Side:       models.PositionSideLong,
		EntryPrice: price,
		Quantity:   quantity,
		EntryTime:  bar.Timestamp,
	}

	trade := models.Trade{
		ID:        uuid.New(),
		Symbol:    symbol,
		Side:      models.TradeSideBuy,
		Amount:    quantity,
		Price:     price,
		Fee:       fee,
		Total:     cost,
		Timestamp: bar.Timestamp,
	}
	state.RecordTrade(trade)
	if err := e.riskManager.RecordTrade(ctx, trade); err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	metrics.RecordTradeExecuted("buy")

	e.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"quantity": quantity,
		"price":    price,
		"fee":      fee,
	}).Debug("Entered long position")

	return nil
}

func (e *Engine) exitPosition(ctx context.Context, symbol string, bar models.Bar, state *State) error {
	portfolio := state.Portfolio
	position := portfolio.Position(symbol)
	if position == nil {
		return nil
	}

	price := bar.Close
	exitValue := position.Value(price)
	fee := exitValue * e.config.Commission
	pnl := exitValue - position.EntryValue() - fee

	portfolio.AvailableBalance += exitValue - fee
	portfolio.CumulativePnL += pnl
	delete(portfolio.OpenPositions, symbol)

	trade := models.Trade{
		ID:          uuid.New(),
		Symbol:      symbol,
		Side:        models.TradeSideSell,
		Amount:      position.Quantity,
		Price:       price,
		Fee:         fee,
		Total:       exitValue,
		Timestamp:   bar.Timestamp,
		RealizedPnL: &pnl,
	}
	state.RecordTrade(trade)
	if err := e.riskManager.RecordTrade(ctx, trade); err != nil {
		return fmt.Errorf("failed to record trade: %w", err)
	}
	metrics.RecordTradeExecuted("sell")

	e.logger.WithFields(logrus.Fields{
		"symbol":   symbol,
		"quantity": position.Quantity,
		"price":    price,
		"pnl":      pnl,
	}).Debug("Exited position")

	return nil
}
