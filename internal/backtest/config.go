package backtest

import "fmt"

// Defaults applied by Normalize.
const (
	DefaultWarmupBars           = 50
	DefaultAnnualizationPeriods = 365
	DefaultInitialBalance       = 1000.0
	DefaultCommission           = 0.001
)

// Config holds the parameters of one simulation run.
type Config struct {
	BotID          string
	Symbol         string
	InitialBalance float64
	// Commission is the exchange fee charged on each fill, as a fraction
	// of trade value.
	Commission float64
	// WarmupBars is how many bars the signal source sees before the first
	// simulated decision.
	WarmupBars int
	// AnnualizationPeriods scales the Sharpe ratio; 365 for daily bars.
	AnnualizationPeriods int
	OutputPath           string
	MonteCarloIterations int
}

// Normalize fills zero-valued fields with defaults.
func (c Config) Normalize() Config {
	if c.InitialBalance == 0 {
		c.InitialBalance = DefaultInitialBalance
	}
	if c.Commission == 0 {
		c.Commission = DefaultCommission
	}
	if c.WarmupBars == 0 {
		c.WarmupBars = DefaultWarmupBars
	}
	if c.AnnualizationPeriods == 0 {
		c.AnnualizationPeriods = DefaultAnnualizationPeriods
	}
	return c
}

// Validate validates backtest config parameters
func (c Config) Validate() error {
	if c.InitialBalance <= 0 {
		return fmt.Errorf("%w: initial balance must be positive", ErrInvalidConfig)
	}
	if c.Commission < 0 || c.Commission > 0.1 {
		return fmt.Errorf("%w: commission must be between 0 and 0.1", ErrInvalidConfig)
	}
	if c.WarmupBars <= 0 {
		return fmt.Errorf("%w: warmup bars must be positive", ErrInvalidConfig)
	}
	if c.AnnualizationPeriods <= 0 {
		return fmt.Errorf("%w: annualization periods must be positive", ErrInvalidConfig)
	}
	return nil
}
