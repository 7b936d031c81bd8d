// Package main provides a CLI for loading historical OHLCV data files
// into the market data store.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/crypto-orchestrator/internal/config"
	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/logger"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
	"github.com/yourusername/crypto-orchestrator/internal/service"
)

var (
	configPath string
	dataPath   string
	symbol     string
	batchSize  int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "import-data",
		Short: "Import historical OHLCV data into the market data store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
		SilenceUsage: true,
	}

	rootCmd.Flags().StringVar(&configPath, "config", "config/config.yaml", "path to configuration file")
	rootCmd.Flags().StringVar(&dataPath, "data", "", "path to OHLCV CSV file (required)")
	rootCmd.Flags().StringVar(&symbol, "symbol", "", "trading pair symbol, e.g. BTC/USDT (required)")
	rootCmd.Flags().IntVar(&batchSize, "batch-size", 500, "number of bars per insert batch")
	_ = rootCmd.MarkFlagRequired("data")
	_ = rootCmd.MarkFlagRequired("symbol")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.LoadWithDefaults(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)

	ctx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repos, err := repository.NewRepositories(db)
	if err != nil {
		return fmt.Errorf("failed to initialize repositories: %w", err)
	}

	svc := service.NewIngestionService(repos.Bar, appLog, batchSize)
	metrics, err := svc.IngestCSV(ctx, dataPath, symbol)
	if err != nil {
		if metrics != nil {
			appLog.WithField("metrics", metrics.String()).Error("Ingestion failed")
		}
		return err
	}

	appLog.WithFields(logrus.Fields{
		"symbol": symbol,
		"bars":   metrics.InsertedBars,
	}).Info("Import finished")
	fmt.Println(metrics.String())

	return nil
}
