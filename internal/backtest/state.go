package backtest

import (
	"time"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// Status describes where an engine is in its lifecycle
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// State tracks the evolving portfolio, fills and equity curve of a run.
// It is owned by the engine loop; nothing else writes to it mid-run.
type State struct {
	Portfolio   *models.Portfolio
	Trades      []models.Trade
	EquityCurve EquityCurve
	PeakEquity  float64
}

// NewState initializes run state with the starting balance.
func NewState(initialBalance float64) *State {
	return &State{
		Portfolio:   models.NewPortfolio(initialBalance),
		Trades:      []models.Trade{},
		EquityCurve: EquityCurve{},
		PeakEquity:  initialBalance,
	}
}

// RecordTrade appends an executed fill.
func (s *State) RecordTrade(trade models.Trade) {
	s.Trades = append(s.Trades, trade)
}

// RecordEquityPoint marks the portfolio to market and appends one curve
// point, tracking peak equity for drawdown.
func (s *State) RecordEquityPoint(t time.Time, value float64) {
	if value > s.PeakEquity {
		s.PeakEquity = value
	}

	drawdown := 0.0
	if s.PeakEquity > 0 && value < s.PeakEquity {
		drawdown = (s.PeakEquity - value) / s.PeakEquity
	}

	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    value,
		Drawdown: drawdown,
	})
}

// CurrentDrawdown calculates peak-to-trough drawdown of the latest point.
func (s *State) CurrentDrawdown() float64 {
	if len(s.EquityCurve) == 0 || s.PeakEquity == 0 {
		return 0
	}
	current := s.EquityCurve[len(s.EquityCurve)-1].Value
	drawdown := (s.PeakEquity - current) / s.PeakEquity
	if drawdown < 0 {
		return 0
	}
	return drawdown
}
