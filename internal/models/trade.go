package models

import (
	"time"

	"github.com/google/uuid"
)

// TradeSide represents the side of a trade (buy or sell)
type TradeSide string

const (
	TradeSideBuy  TradeSide = "buy"
	TradeSideSell TradeSide = "sell"
)

// Trade represents a simulated fill. Trades are immutable and append-only:
// a sell trade carries the realized P&L of the position it closed.
type Trade struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Symbol      string    `db:"symbol" json:"symbol"`
	Side        TradeSide `db:"side" json:"side" validate:"required,oneof=buy sell"`
	Amount      float64   `db:"amount" json:"amount" validate:"required,gt=0"`
	Price       float64   `db:"price" json:"price" validate:"required,gt=0"`
	Fee         float64   `db:"fee" json:"fee"`
	Total       float64   `db:"total" json:"total"`
	Timestamp   time.Time `db:"executed_at" json:"timestamp"`
	RealizedPnL *float64  `db:"realized_pnl" json:"realized_pnl"`
}

// PnL returns the realized profit or loss, zero for entry trades.
func (t *Trade) PnL() float64 {
	if t.RealizedPnL == nil {
		return 0
	}
	return *t.RealizedPnL
}

// IsWin reports whether the trade closed a position at a profit.
func (t *Trade) IsWin() bool {
	return t.RealizedPnL != nil && *t.RealizedPnL > 0
}

// IsLoss reports whether the trade closed a position at a loss.
func (t *Trade) IsLoss() bool {
	return t.RealizedPnL != nil && *t.RealizedPnL < 0
}

// Day returns the UTC calendar day the trade executed on.
func (t *Trade) Day() time.Time {
	ts := t.Timestamp.UTC()
	return time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC)
}
