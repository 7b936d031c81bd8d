// Package main provides the entry point for the orchestrator daemon. It
// serves metrics and health endpoints and runs the background risk jobs.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-orchestrator/internal/config"
	"github.com/yourusername/crypto-orchestrator/internal/database"
	"github.com/yourusername/crypto-orchestrator/internal/health"
	"github.com/yourusername/crypto-orchestrator/internal/logger"
	"github.com/yourusername/crypto-orchestrator/internal/metrics"
	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
	"github.com/yourusername/crypto-orchestrator/internal/scheduler"
	"github.com/yourusername/crypto-orchestrator/internal/tracing"
)

func main() {
	cfg, err := config.LoadWithDefaults(getConfigPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if os.Getenv("AWS_SECRETS_ENABLED") == "true" {
		region := os.Getenv("AWS_REGION")
		secretName := os.Getenv("AWS_SECRET_NAME")
		if region == "" || secretName == "" {
			log.Fatalf("AWS_REGION and AWS_SECRET_NAME environment variables must be set when AWS_SECRETS_ENABLED is true")
		}
		if err := config.LoadSecretsFromAWS(context.Background(), cfg, region, secretName); err != nil {
			log.Fatalf("Failed to load secrets: %v", err)
		}
	}

	if err := config.Validate(cfg); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	appLog := logger.NewLogger(cfg.App.LogLevel)
	appLog.WithFields(logrus.Fields{
		"environment": cfg.App.Environment,
		"log_level":   cfg.App.LogLevel,
	}).Info("Crypto orchestrator starting")

	if err := tracing.Initialize(tracing.Config{
		ServiceName:  cfg.App.Name,
		Enabled:      os.Getenv("XRAY_ENABLED") == "true",
		SamplingRate: 0.05,
		DaemonAddr:   os.Getenv("XRAY_DAEMON_ADDR"),
	}, appLog); err != nil {
		appLog.WithError(err).Warn("Tracing initialization failed, continuing without tracing")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()
	appLog.Info("Database connection established")

	repos, err := repository.NewRepositories(db)
	if err != nil {
		appLog.WithError(err).Fatal("Failed to initialize repositories")
	}

	botID := os.Getenv("BOT_ID")
	if botID == "" {
		botID = "default"
	}

	riskManager := risk.NewManager(
		cfg.Risk.RiskLimits(),
		cfg.Risk.TradeParams(),
		repository.NewTradeHistory(repos.Trade, botID),
		risk.NewLogSink(appLog),
		appLog,
	)

	sched := scheduler.NewScheduler(
		riskManager,
		repos.Bar,
		time.Duration(cfg.Scheduler.EvaluationTimeoutSecs)*time.Second,
		appLog,
	)

	if cfg.Scheduler.Enabled {
		symbol := cfg.Backtest.Symbol
		if err := sched.ScheduleVolatilityRefresh(cfg.Scheduler.VolatilityRefreshCron, symbol); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule volatility refresh")
		}
		provider := portfolioProvider(repos, botID, symbol, cfg.Backtest.InitialBalance)
		if err := sched.ScheduleRiskEvaluation(cfg.Scheduler.RiskEvaluationCron, botID, provider); err != nil {
			appLog.WithError(err).Fatal("Failed to schedule risk evaluation")
		}
		if err := sched.Start(); err != nil {
			appLog.WithError(err).Fatal("Failed to start scheduler")
		}
		defer func() {
			if err := sched.Stop(); err != nil {
				appLog.WithError(err).Error("Error stopping scheduler")
			}
		}()
	}

	healthServer := health.NewServer(health.Config{
		ServiceName: cfg.App.Name,
		Logger:      appLog,
		DB:          db,
	})
	if err := healthServer.Start(ctx); err != nil {
		appLog.WithError(err).Fatal("Failed to start health server")
	}
	healthServer.SetReady(true)

	var metricsServer *http.Server
	if cfg.Metrics.Enabled {
		metrics.InitRegistry()
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, metrics.Handler())
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: mux,
		}
		go func() {
			appLog.WithField("port", cfg.Metrics.Port).Info("Metrics server starting")
			if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLog.WithError(err).Error("Metrics server error")
			}
		}()
	}

	appLog.WithFields(logrus.Fields{
		"bot_id":            botID,
		"scheduler_enabled": cfg.Scheduler.Enabled,
		"metrics_enabled":   cfg.Metrics.Enabled,
		"paper_trading":     cfg.Features.PaperTradingEnabled,
	}).Info("Orchestrator is running")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	appLog.WithField("signal", sig).Info("Shutdown signal received")

	healthServer.SetReady(false)
	cancel()

	if metricsServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			appLog.WithError(err).Error("Error shutting down metrics server")
		}
	}

	appLog.Info("Crypto orchestrator shut down successfully")
}

func getConfigPath() string {
	if path := os.Getenv("CRYPTO_ORCH_CONFIG_PATH"); path != "" {
		return path
	}
	return "config/config.yaml"
}

// portfolioProvider reconstructs a bot's portfolio from its recorded
// trades and marks it against the latest stored bar.
func portfolioProvider(repos *repository.Repositories, botID, symbol string, initialBalance float64) scheduler.PortfolioProvider {
	return func(ctx context.Context) (*models.Portfolio, float64, error) {
		trades, err := repos.Trade.GetByBot(ctx, botID)
		if err != nil {
			return nil, 0, err
		}

		portfolio := models.NewPortfolio(initialBalance)
		for _, trade := range trades {
			if trade.RealizedPnL != nil {
				portfolio.CumulativePnL += *trade.RealizedPnL
			}
		}
		portfolio.AvailableBalance = initialBalance + portfolio.CumulativePnL
		portfolio.TotalBalance = portfolio.AvailableBalance

		bars, err := repos.Bar.GetLatest(ctx, symbol, 1)
		if err != nil {
			return nil, 0, err
		}
		price := 0.0
		if len(bars) > 0 {
			price = bars[len(bars)-1].Close
		}
		return portfolio, price, nil
	}
}
