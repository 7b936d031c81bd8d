package models

import (
	"time"

	"github.com/google/uuid"
)

// EquityPoint is a single mark-to-market observation of total equity.
type EquityPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Equity    float64   `json:"equity"`
}

// BacktestResult holds the complete outcome of a finished simulation run.
// A result only exists for runs that reached the end of the series; failed
// runs produce an error, never a partial result.
type BacktestResult struct {
	ID           uuid.UUID     `db:"id" json:"id"`
	Symbol       string        `db:"symbol" json:"symbol"`
	TotalReturn  float64       `db:"total_return" json:"total_return"`
	SharpeRatio  float64       `db:"sharpe_ratio" json:"sharpe_ratio"`
	MaxDrawdown  float64       `db:"max_drawdown" json:"max_drawdown"`
	WinRate      float64       `db:"win_rate" json:"win_rate"`
	TotalTrades  int           `db:"total_trades" json:"total_trades"`
	ProfitFactor float64       `db:"profit_factor" json:"profit_factor"`
	FinalBalance float64       `db:"final_balance" json:"final_balance"`
	Trades       []Trade       `json:"trades"`
	EquityCurve  []EquityPoint `json:"equity_curve"`
	CreatedAt    time.Time     `db:"created_at" json:"created_at"`
}
