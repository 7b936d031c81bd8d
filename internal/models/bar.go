package models

import "time"

// Bar represents a single OHLCV candle. Bars are input-only and never
// mutated once loaded.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// Day returns the UTC calendar day the bar belongs to.
func (b Bar) Day() time.Time {
	t := b.Timestamp.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
