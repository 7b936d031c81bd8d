// Package config provides configuration management for the crypto
// orchestrator application.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CRYPTO_ORCH"

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the configuration (${VAR} syntax)
	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional
// fields. A missing config file is not an error; defaults and environment
// variables alone can produce a usable configuration.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBuffer([]byte(expanded))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "crypto-orchestrator")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("signal.source", "momentum")
	v.SetDefault("signal.timeout_seconds", 10)
	v.SetDefault("signal.retry_attempts", 3)
	v.SetDefault("signal.requests_per_second", 5)
	v.SetDefault("signal.window_size", 50)
	v.SetDefault("signal.cache_ttl_seconds", 60)
	v.SetDefault("signal.momentum.fast_period", 10)
	v.SetDefault("signal.momentum.slow_period", 30)
	v.SetDefault("signal.momentum.threshold", 0.001)

	v.SetDefault("risk.max_drawdown", 0.10)
	v.SetDefault("risk.max_daily_loss", 0.05)
	v.SetDefault("risk.max_position_size", 0.10)
	v.SetDefault("risk.max_total_exposure", 0.50)
	v.SetDefault("risk.stop_loss_multiplier", 1.5)
	v.SetDefault("risk.take_profit_multiplier", 3.0)
	v.SetDefault("risk.min_position_size", 0.0001)
	v.SetDefault("risk.micro_mode_enabled", true)
	v.SetDefault("risk.persistent_mode", true)
	v.SetDefault("risk.kelly_bootstrap", 0.01)
	v.SetDefault("risk.micro_balance_threshold", 1000)
	v.SetDefault("risk.micro_max_fraction", 0.01)
	v.SetDefault("risk.risk_per_trade", 0.02)
	v.SetDefault("risk.stop_loss", 0.02)
	v.SetDefault("risk.take_profit", 0.03)

	v.SetDefault("backtest.initial_balance", 1000)
	v.SetDefault("backtest.commission", 0.001)
	v.SetDefault("backtest.warmup_bars", 50)
	v.SetDefault("backtest.monte_carlo_iterations", 1000)
	v.SetDefault("backtest.output_path", "output/backtest")
	v.SetDefault("backtest.walk_forward.train_bars", 500)
	v.SetDefault("backtest.walk_forward.test_bars", 250)

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.volatility_refresh_cron", "@every 15m")
	v.SetDefault("scheduler.risk_evaluation_cron", "@every 1m")
	v.SetDefault("scheduler.evaluation_timeout_seconds", 30)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("features.paper_trading_enabled", true)
}

// ReloadFromEnv reloads the configuration from the path named in
// CRYPTO_ORCH_CONFIG_PATH, if set.
func ReloadFromEnv(cfg *Config) error {
	if envPath := os.Getenv(envPrefix + "_CONFIG_PATH"); envPath != "" {
		newCfg, err := Load(envPath)
		if err != nil {
			return err
		}
		*cfg = *newCfg
	}
	return nil
}
