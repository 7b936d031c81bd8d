// Package main provides the entry point for the backtesting CLI tool.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/crypto-orchestrator/internal/backtest"
	"github.com/yourusername/crypto-orchestrator/internal/config"
	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/logger"
	"github.com/yourusername/crypto-orchestrator/internal/marketdata"
	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
	"github.com/yourusername/crypto-orchestrator/internal/signal"
)

type cliOptions struct {
	configPath string
	symbol     string
	dataPath   string
	botID      string
	mode       string
	output     string
	persist    bool
	seed       int64
}

func main() {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:   "backtest",
		Short: "Replay historical market data against a signal source",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&opts.configPath, "config", "config/config.yaml", "Path to config file")
	rootCmd.Flags().StringVar(&opts.symbol, "symbol", "", "Trading pair symbol (overrides config)")
	rootCmd.Flags().StringVar(&opts.dataPath, "data", "", "Path to OHLCV CSV file (overrides config)")
	rootCmd.Flags().StringVar(&opts.botID, "bot-id", "backtest-cli", "Bot identifier for reporting")
	rootCmd.Flags().StringVar(&opts.mode, "mode", "all", "Backtest mode: historical, monte-carlo, walk-forward, all")
	rootCmd.Flags().StringVar(&opts.output, "output", "", "Output directory for exports (overrides config)")
	rootCmd.Flags().BoolVar(&opts.persist, "persist", false, "Persist results to the database")
	rootCmd.Flags().Int64Var(&opts.seed, "seed", 0, "Monte Carlo seed (0 uses current time)")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *cliOptions) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	btLog := logger.NewBacktestLogger(appLog)

	symbol := cfg.Backtest.Symbol
	if opts.symbol != "" {
		symbol = opts.symbol
	}
	dataPath := cfg.Backtest.DataPath
	if opts.dataPath != "" {
		dataPath = opts.dataPath
	}
	outputDir := cfg.Backtest.OutputPath
	if opts.output != "" {
		outputDir = opts.output
	}

	series, err := marketdata.LoadCSV(dataPath, symbol)
	if err != nil {
		return fmt.Errorf("failed to load market data: %w", err)
	}
	btLog.LogRunStart(opts.botID, symbol, series.Len(), cfg.Backtest.InitialBalance)

	engineConfig := backtest.Config{
		BotID:                opts.botID,
		Symbol:               symbol,
		InitialBalance:       cfg.Backtest.InitialBalance,
		Commission:           cfg.Backtest.Commission,
		WarmupBars:           cfg.Backtest.WarmupBars,
		OutputPath:           outputDir,
		MonteCarloIterations: cfg.Backtest.MonteCarloIterations,
	}

	factory := engineFactory(cfg, engineConfig, appLog)

	switch opts.mode {
	case "historical":
		return runHistorical(ctx, factory, series, engineConfig, outputDir, appLog)
	case "monte-carlo":
		return runMonteCarlo(ctx, factory, series, engineConfig, opts.seed, appLog)
	case "walk-forward":
		return runWalkForward(ctx, factory, series, cfg, appLog)
	case "all":
		return runAll(ctx, factory, series, cfg, engineConfig, opts, outputDir, appLog, btLog)
	default:
		return fmt.Errorf("unsupported mode: %s", opts.mode)
	}
}

func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadWithDefaults(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			return nil, fmt.Errorf("AWS_REGION and AWS_SECRET_NAME must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			return nil, fmt.Errorf("failed to load secrets: %w", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// engineFactory builds a fresh engine per run so walk-forward windows
// and the main replay never share trade history.
func engineFactory(cfg *config.Config, engineConfig backtest.Config, appLog *logrus.Logger) backtest.EngineFactory {
	return func() (*backtest.Engine, error) {
		source, err := buildSignalSource(cfg, appLog)
		if err != nil {
			return nil, err
		}
		manager := risk.NewManager(
			cfg.Risk.RiskLimits(),
			cfg.Risk.TradeParams(),
			risk.NewMemoryHistory(),
			risk.NewLogSink(appLog),
			appLog,
		)
		return backtest.NewEngine(engineConfig, source, manager, appLog)
	}
}

func buildSignalSource(cfg *config.Config, appLog *logrus.Logger) (signal.Source, error) {
	switch cfg.Signal.Source {
	case "remote":
		source := signal.NewHTTPSource(signal.HTTPSourceConfig{
			BaseURL:           cfg.Signal.ServiceURL,
			APIKey:            cfg.Signal.APIKey,
			TimeoutSeconds:    cfg.Signal.TimeoutSeconds,
			RetryMax:          cfg.Signal.RetryAttempts,
			RequestsPerSecond: cfg.Signal.RequestsPerSecond,
			WindowSize:        cfg.Signal.WindowSize,
		}, appLog)
		return signal.NewCachedSource(source, cfg.SignalCacheTTL(), appLog), nil
	case "momentum":
		return signal.NewMomentumSource(
			cfg.Signal.Momentum.FastPeriod,
			cfg.Signal.Momentum.SlowPeriod,
			cfg.Signal.Momentum.Threshold,
			appLog,
		)
	default:
		return nil, fmt.Errorf("unknown signal source: %s", cfg.Signal.Source)
	}
}

func runHistorical(ctx context.Context, factory backtest.EngineFactory, series *marketdata.Series, engineConfig backtest.Config, outputDir string, appLog *logrus.Logger) error {
	engine, err := factory()
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx, series)
	if err != nil {
		return fmt.Errorf("historical backtest failed: %w", err)
	}

	fmt.Print(backtest.GenerateConsoleReport(result))

	if outputDir != "" {
		if err := backtest.GenerateCSVExport(result, filepath.Join(outputDir, "metrics.csv")); err != nil {
			appLog.WithError(err).Warn("Failed to export metrics CSV")
		}
	}
	return nil
}

func runMonteCarlo(ctx context.Context, factory backtest.EngineFactory, series *marketdata.Series, engineConfig backtest.Config, seed int64, appLog *logrus.Logger) error {
	engine, err := factory()
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx, series)
	if err != nil {
		return fmt.Errorf("historical run for Monte Carlo failed: %w", err)
	}

	mc, err := backtest.RunMonteCarlo(ctx, result.Trades, backtest.MonteCarloConfig{
		Iterations:     engineConfig.MonteCarloIterations,
		Seed:           seed,
		InitialBalance: engineConfig.InitialBalance,
	})
	if err != nil {
		return fmt.Errorf("Monte Carlo failed: %w", err)
	}

	appLog.WithFields(logrus.Fields{
		"mean_return":           mc.MeanReturn,
		"var_95":                mc.VaR95,
		"probability_of_profit": mc.ProbabilityOfProfit,
		"probability_of_ruin":   mc.ProbabilityOfRuin,
	}).Info("Monte Carlo completed")
	return nil
}

func runWalkForward(ctx context.Context, factory backtest.EngineFactory, series *marketdata.Series, cfg *config.Config, appLog *logrus.Logger) error {
	result, err := backtest.RunWalkForward(ctx, factory, series, walkForwardConfig(cfg))
	if err != nil {
		return fmt.Errorf("walk-forward failed: %w", err)
	}

	appLog.WithFields(logrus.Fields{
		"windows":       len(result.Windows),
		"consistency":   result.ConsistencyScore,
		"overfit_score": result.OverfitScore,
	}).Info("Walk-forward completed")
	return nil
}

func runAll(ctx context.Context, factory backtest.EngineFactory, series *marketdata.Series, cfg *config.Config, engineConfig backtest.Config, opts *cliOptions, outputDir string, appLog *logrus.Logger, btLog *logger.BacktestLogger) error {
	engine, err := factory()
	if err != nil {
		return err
	}

	start := time.Now()
	result, err := engine.Run(ctx, series)
	if err != nil {
		return fmt.Errorf("historical backtest failed: %w", err)
	}

	curve := make(backtest.EquityCurve, len(result.EquityCurve))
	for i, p := range result.EquityCurve {
		curve[i] = backtest.EquityPoint{Time: p.Timestamp, Value: p.Equity}
	}
	historical := backtest.CalculateMetrics(result.Trades, curve, engineConfig.InitialBalance, engine.Config().AnnualizationPeriods)

	monteCarlo, err := backtest.RunMonteCarlo(ctx, result.Trades, backtest.MonteCarloConfig{
		Iterations:     engineConfig.MonteCarloIterations,
		Seed:           opts.seed,
		InitialBalance: engineConfig.InitialBalance,
	})
	if err != nil {
		return fmt.Errorf("Monte Carlo failed: %w", err)
	}

	walkForward, err := backtest.RunWalkForward(ctx, factory, series, walkForwardConfig(cfg))
	if err != nil {
		return fmt.Errorf("walk-forward failed: %w", err)
	}

	aggregated := backtest.AggregateResults(opts.botID, historical, monteCarlo, walkForward, backtest.DefaultAggregationWeights())

	btLog.LogRunComplete(opts.botID, result.TotalTrades, result.TotalReturn, result.SharpeRatio, result.MaxDrawdown, float64(time.Since(start).Milliseconds()))
	btLog.LogRecommendation(opts.botID, aggregated.Recommendation, aggregated.CompositeScore, walkForward.ConsistencyScore)

	fmt.Print(backtest.GenerateConsoleReport(result))
	fmt.Print(backtest.GenerateAggregatedReport(aggregated))

	if cfg.Backtest.ExportEnabled && outputDir != "" {
		if err := backtest.ExportToJSON(aggregated, filepath.Join(outputDir, "aggregated_results.json")); err != nil {
			return fmt.Errorf("failed to export aggregated results: %w", err)
		}
		if err := backtest.ExportEquityCurveCSV(curve, filepath.Join(outputDir, "equity_curve.csv")); err != nil {
			appLog.WithError(err).Warn("Failed to export equity curve")
		}
	}

	if opts.persist && cfg.Features.PersistenceEnabled {
		if err := persistResult(ctx, cfg, result, appLog); err != nil {
			return err
		}
	}

	return nil
}

func persistResult(ctx context.Context, cfg *config.Config, result *models.BacktestResult, appLog *logrus.Logger) error {
	db, err := database.NewDB(ctx, &cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return err
	}

	if err := backtest.SaveResult(ctx, result, repos.BacktestResult); err != nil {
		return err
	}
	appLog.WithField("result_id", result.ID).Info("Backtest result persisted")
	return nil
}

func walkForwardConfig(cfg *config.Config) backtest.WalkForwardConfig {
	return backtest.WalkForwardConfig{
		TrainBars:          cfg.Backtest.WalkForward.TrainBars,
		TestBars:           cfg.Backtest.WalkForward.TestBars,
		StepBars:           cfg.Backtest.WalkForward.StepBars,
		MinTradesPerWindow: cfg.Backtest.WalkForward.MinTradesPerWindow,
	}
}
