// Package risk implements position sizing, limit evaluation and alerting
// for trading bots and backtests.
package risk

// Limits holds the risk thresholds a bot operates under. All fractional
// fields are expressed relative to portfolio balance.
type Limits struct {
	MaxDrawdown          float64 `json:"max_drawdown" yaml:"max_drawdown"`
	MaxDailyLoss         float64 `json:"max_daily_loss" yaml:"max_daily_loss"`
	MaxPositionSize      float64 `json:"max_position_size" yaml:"max_position_size"`
	MaxTotalExposure     float64 `json:"max_total_exposure" yaml:"max_total_exposure"`
	StopLossMultiplier   float64 `json:"stop_loss_multiplier" yaml:"stop_loss_multiplier"`
	TakeProfitMultiplier float64 `json:"take_profit_multiplier" yaml:"take_profit_multiplier"`
	MinPositionSize      float64 `json:"min_position_size" yaml:"min_position_size"`
	MicroModeEnabled     bool    `json:"micro_mode_enabled" yaml:"micro_mode_enabled"`
	PersistentMode       bool    `json:"persistent_mode" yaml:"persistent_mode"`

	// KellyBootstrap is the fraction used before any closed trades exist.
	KellyBootstrap float64 `json:"kelly_bootstrap" yaml:"kelly_bootstrap"`
	// MicroBalanceThreshold is the balance below which micro sizing applies.
	MicroBalanceThreshold float64 `json:"micro_balance_threshold" yaml:"micro_balance_threshold"`
	// MicroMaxFraction caps micro positions as a fraction of available balance.
	MicroMaxFraction float64 `json:"micro_max_fraction" yaml:"micro_max_fraction"`
}

// DefaultLimits returns the standard limit set.
func DefaultLimits() Limits {
	return Limits{
		MaxDrawdown:           0.10,
		MaxDailyLoss:          0.05,
		MaxPositionSize:       0.10,
		MaxTotalExposure:      0.50,
		StopLossMultiplier:    1.5,
		TakeProfitMultiplier:  3.0,
		MinPositionSize:       0.0001,
		MicroModeEnabled:      true,
		PersistentMode:        true,
		KellyBootstrap:        0.01,
		MicroBalanceThreshold: 1000,
		MicroMaxFraction:      0.01,
	}
}

// TradeParams holds the per-bot trade configuration the sizing formulas
// depend on. StopLoss and TakeProfit are price fractions, RiskPerTrade a
// balance fraction.
type TradeParams struct {
	RiskPerTrade float64 `json:"risk_per_trade" yaml:"risk_per_trade"`
	StopLoss     float64 `json:"stop_loss" yaml:"stop_loss"`
	TakeProfit   float64 `json:"take_profit" yaml:"take_profit"`
}

// Metrics represents current risk exposure relative to limits.
type Metrics struct {
	CurrentDrawdown float64 `json:"current_drawdown"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	DailyLoss       float64 `json:"daily_loss"`
	PositionSize    float64 `json:"position_size"`
	TotalExposure   float64 `json:"total_exposure"`
	RiskPerTrade    float64 `json:"risk_per_trade"`
}
