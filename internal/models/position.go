package models

import "time"

// PositionSide represents the direction of an open position
type PositionSide string

const (
	PositionSideLong  PositionSide = "long"
	PositionSideShort PositionSide = "short"
)

// Position represents an open position. Created on a buy signal and
// destroyed when the position closes; only one position per symbol is
// tracked.
type Position struct {
	Symbol     string       `json:"symbol"`
	Side       PositionSide `json:"side"`
	EntryPrice float64      `json:"entry_price"`
	Quantity   float64      `json:"quantity"`
	EntryTime  time.Time    `json:"entry_time"`
}

// Value returns the mark-to-market value of the position at the given price.
// Short positions gain as price falls below entry.
func (p *Position) Value(currentPrice float64) float64 {
	if p.Side == PositionSideShort {
		return p.Quantity * (2*p.EntryPrice - currentPrice)
	}
	return p.Quantity * currentPrice
}

// EntryValue returns the capital committed when the position opened.
func (p *Position) EntryValue() float64 {
	return p.Quantity * p.EntryPrice
}

// UnrealizedPnL returns the open profit or loss at the given price.
func (p *Position) UnrealizedPnL(currentPrice float64) float64 {
	return p.Value(currentPrice) - p.EntryValue()
}
