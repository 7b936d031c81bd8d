// Package config provides configuration management for the crypto
// orchestrator application.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/crypto-orchestrator/internal/risk"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Signal    SignalConfig    `mapstructure:"signal" validate:"required"`
	Risk      RiskConfig      `mapstructure:"risk" validate:"required"`
	Backtest  BacktestConfig  `mapstructure:"backtest" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
	Features  FeaturesConfig  `mapstructure:"features" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host               string `mapstructure:"host" validate:"required"`
	Port               int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name               string `mapstructure:"name" validate:"required"`
	User               string `mapstructure:"user" validate:"required"`
	Password           string `mapstructure:"password" validate:"required"`
	SSLMode            string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections     int    `mapstructure:"max_connections" validate:"required,gt=0"`
	MaxIdleConnections int    `mapstructure:"max_idle_connections" validate:"required,gt=0"`
}

// SignalConfig represents signal source configuration. Source selects
// the local momentum strategy or a remote prediction service.
type SignalConfig struct {
	Source            string  `mapstructure:"source" validate:"required,oneof=momentum remote"`
	ServiceURL        string  `mapstructure:"service_url" validate:"omitempty,url"`
	APIKey            string  `mapstructure:"api_key"`
	TimeoutSeconds    int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	RetryAttempts     int     `mapstructure:"retry_attempts" validate:"gte=0"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" validate:"gt=0"`
	WindowSize        int     `mapstructure:"window_size" validate:"required,gt=0"`
	CacheTTLSeconds   int     `mapstructure:"cache_ttl_seconds" validate:"required,gt=0"`

	Momentum MomentumConfig `mapstructure:"momentum"`
}

// MomentumConfig tunes the built-in moving average crossover source.
type MomentumConfig struct {
	FastPeriod int     `mapstructure:"fast_period" validate:"required,gt=0"`
	SlowPeriod int     `mapstructure:"slow_period" validate:"required,gt=0"`
	Threshold  float64 `mapstructure:"threshold" validate:"gte=0"`
}

// RiskConfig represents risk limit and position sizing configuration
type RiskConfig struct {
	MaxDrawdown           float64 `mapstructure:"max_drawdown" validate:"required,gt=0,lt=1"`
	MaxDailyLoss          float64 `mapstructure:"max_daily_loss" validate:"required,gt=0,lt=1"`
	MaxPositionSize       float64 `mapstructure:"max_position_size" validate:"required,gt=0,lte=1"`
	MaxTotalExposure      float64 `mapstructure:"max_total_exposure" validate:"required,gt=0,lte=1"`
	StopLossMultiplier    float64 `mapstructure:"stop_loss_multiplier" validate:"required,gt=0"`
	TakeProfitMultiplier  float64 `mapstructure:"take_profit_multiplier" validate:"required,gt=0"`
	MinPositionSize       float64 `mapstructure:"min_position_size" validate:"required,gt=0"`
	MicroModeEnabled      bool    `mapstructure:"micro_mode_enabled"`
	PersistentMode        bool    `mapstructure:"persistent_mode"`
	KellyBootstrap        float64 `mapstructure:"kelly_bootstrap" validate:"required,gt=0,lte=1"`
	MicroBalanceThreshold float64 `mapstructure:"micro_balance_threshold" validate:"required,gt=0"`
	MicroMaxFraction      float64 `mapstructure:"micro_max_fraction" validate:"required,gt=0,lte=1"`

	RiskPerTrade float64 `mapstructure:"risk_per_trade" validate:"required,gt=0,lt=1"`
	StopLoss     float64 `mapstructure:"stop_loss" validate:"required,gt=0,lt=1"`
	TakeProfit   float64 `mapstructure:"take_profit" validate:"required,gt=0,lt=1"`
}

// BacktestConfig represents backtesting configuration
type BacktestConfig struct {
	Symbol               string  `mapstructure:"symbol" validate:"required"`
	DataPath             string  `mapstructure:"data_path" validate:"required"`
	InitialBalance       float64 `mapstructure:"initial_balance" validate:"required,gt=0"`
	Commission           float64 `mapstructure:"commission" validate:"gte=0,lte=0.1"`
	WarmupBars           int     `mapstructure:"warmup_bars" validate:"gte=0"`
	MonteCarloIterations int     `mapstructure:"monte_carlo_iterations" validate:"required,gt=0"`
	OutputPath           string  `mapstructure:"output_path" validate:"required"`
	ExportEnabled        bool    `mapstructure:"export_enabled"`

	WalkForward WalkForwardConfig `mapstructure:"walk_forward"`
}

// WalkForwardConfig represents walk-forward window configuration
type WalkForwardConfig struct {
	TrainBars          int `mapstructure:"train_bars" validate:"required,gt=0"`
	TestBars           int `mapstructure:"test_bars" validate:"required,gt=0"`
	StepBars           int `mapstructure:"step_bars" validate:"gte=0"`
	MinTradesPerWindow int `mapstructure:"min_trades_per_window" validate:"gte=0"`
}

// SchedulerConfig represents background job scheduling
type SchedulerConfig struct {
	Enabled                bool   `mapstructure:"enabled"`
	VolatilityRefreshCron  string `mapstructure:"volatility_refresh_cron" validate:"required"`
	RiskEvaluationCron     string `mapstructure:"risk_evaluation_cron" validate:"required"`
	EvaluationTimeoutSecs  int    `mapstructure:"evaluation_timeout_seconds" validate:"required,gt=0"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// FeaturesConfig represents feature flags
type FeaturesConfig struct {
	PaperTradingEnabled  bool `mapstructure:"paper_trading_enabled"`
	RemoteSignalsEnabled bool `mapstructure:"remote_signals_enabled"`
	PersistenceEnabled   bool `mapstructure:"persistence_enabled"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SignalTimeout returns the signal service request timeout
func (c *Config) SignalTimeout() time.Duration {
	return time.Duration(c.Signal.TimeoutSeconds) * time.Second
}

// SignalCacheTTL returns the prediction cache TTL
func (c *Config) SignalCacheTTL() time.Duration {
	return time.Duration(c.Signal.CacheTTLSeconds) * time.Second
}

// RiskLimits maps the configuration onto the risk engine's limit set.
func (r RiskConfig) RiskLimits() risk.Limits {
	return risk.Limits{
		MaxDrawdown:           r.MaxDrawdown,
		MaxDailyLoss:          r.MaxDailyLoss,
		MaxPositionSize:       r.MaxPositionSize,
		MaxTotalExposure:      r.MaxTotalExposure,
		StopLossMultiplier:    r.StopLossMultiplier,
		TakeProfitMultiplier:  r.TakeProfitMultiplier,
		MinPositionSize:       r.MinPositionSize,
		MicroModeEnabled:      r.MicroModeEnabled,
		PersistentMode:        r.PersistentMode,
		KellyBootstrap:        r.KellyBootstrap,
		MicroBalanceThreshold: r.MicroBalanceThreshold,
		MicroMaxFraction:      r.MicroMaxFraction,
	}
}

// TradeParams maps the configuration onto per-bot trade parameters.
func (r RiskConfig) TradeParams() risk.TradeParams {
	return risk.TradeParams{
		RiskPerTrade: r.RiskPerTrade,
		StopLoss:     r.StopLoss,
		TakeProfit:   r.TakeProfit,
	}
}
