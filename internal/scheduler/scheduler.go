// Package scheduler runs the periodic background jobs of the
// orchestrator: volatility refreshes and risk limit evaluation.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-orchestrator/internal/models"
	"github.com/yourusername/crypto-orchestrator/internal/repository"
	"github.com/yourusername/crypto-orchestrator/internal/risk"
)

// volatilityWindowBars is how many recent bars feed a volatility refresh.
const volatilityWindowBars = 100

// PortfolioProvider supplies the current portfolio and mark price for a
// bot when its risk limits are evaluated.
type PortfolioProvider func(ctx context.Context) (*models.Portfolio, float64, error)

// Scheduler manages scheduled background jobs
type Scheduler struct {
	cron            *cron.Cron
	riskManager     *risk.Manager
	bars            repository.BarRepository
	logger          *logrus.Logger
	mu              sync.RWMutex
	isRunning       bool
	jobIDs          []cron.EntryID
	jobTimeout      time.Duration
	gracefulTimeout time.Duration
}

// NewScheduler creates a new scheduler
func NewScheduler(riskManager *risk.Manager, bars repository.BarRepository, jobTimeout time.Duration, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	if jobTimeout <= 0 {
		jobTimeout = 30 * time.Second
	}
	return &Scheduler{
		cron:            cron.New(cron.WithLocation(time.UTC)),
		riskManager:     riskManager,
		bars:            bars,
		logger:          logger,
		jobIDs:          make([]cron.EntryID, 0),
		jobTimeout:      jobTimeout,
		gracefulTimeout: 30 * time.Second,
	}
}

// ScheduleVolatilityRefresh schedules periodic volatility recomputation
// from the most recent stored bars for a symbol.
func (s *Scheduler) ScheduleVolatilityRefresh(cronExpression, symbol string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if s.bars == nil {
		return fmt.Errorf("bar repository is required for volatility refresh")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		bars, err := s.bars.GetLatest(ctx, symbol, volatilityWindowBars)
		if err != nil {
			s.logger.WithError(err).WithField("symbol", symbol).Error("Volatility refresh failed to load bars")
			return
		}

		if s.riskManager.UpdateVolatility(bars) {
			s.logger.WithFields(logrus.Fields{
				"symbol":     symbol,
				"volatility": s.riskManager.Volatility(),
				"bars":       len(bars),
			}).Info("Volatility refreshed")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"symbol": symbol,
	}).Info("Scheduled volatility refresh job")

	return nil
}

// ScheduleRiskEvaluation schedules periodic risk limit evaluation for a
// bot. Halt decisions and alerts are handled inside the risk manager.
func (s *Scheduler) ScheduleRiskEvaluation(cronExpression, botID string, provider PortfolioProvider) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}
	if provider == nil {
		return fmt.Errorf("portfolio provider is required for risk evaluation")
	}

	jobFunc := func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
		defer cancel()

		portfolio, price, err := provider(ctx)
		if err != nil {
			s.logger.WithError(err).WithField("bot_id", botID).Error("Risk evaluation failed to load portfolio")
			return
		}

		halt, reason, err := s.riskManager.ShouldHalt(ctx, botID, portfolio, price)
		if err != nil {
			s.logger.WithError(err).WithField("bot_id", botID).Error("Risk evaluation failed")
			return
		}
		if halt {
			s.logger.WithFields(logrus.Fields{
				"bot_id": botID,
				"reason": reason,
			}).Warn("Risk evaluation recommends halting trading")
		}
	}

	entryID, err := s.cron.AddFunc(cronExpression, jobFunc)
	if err != nil {
		return fmt.Errorf("failed to add job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, entryID)
	s.logger.WithFields(logrus.Fields{
		"cron":   cronExpression,
		"bot_id": botID,
	}).Info("Scheduled risk evaluation job")

	return nil
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	if len(s.jobIDs) == 0 {
		return fmt.Errorf("no jobs scheduled")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")

	return nil
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return nil
	}

	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(s.gracefulTimeout):
		s.logger.Warn("Scheduler stop timed out waiting for running jobs")
	}

	s.isRunning = false
	s.logger.Info("Scheduler stopped")

	return nil
}

// IsRunning returns whether the scheduler is currently running
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRun returns the time of the next scheduled job run
func (s *Scheduler) GetNextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning || len(s.jobIDs) == 0 {
		return time.Time{}
	}

	nextRun := time.Time{}
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			if nextRun.IsZero() || entry.Next.Before(nextRun) {
				nextRun = entry.Next
			}
		}
	}

	return nextRun
}

// Entries returns information about scheduled entries
func (s *Scheduler) Entries() []cron.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]cron.Entry, 0, len(s.jobIDs))
	for _, jobID := range s.jobIDs {
		entry := s.cron.Entry(jobID)
		if entry.Valid() {
			entries = append(entries, entry)
		}
	}

	return entries
}

// RemoveJob removes a scheduled job
func (s *Scheduler) RemoveJob(jobID cron.EntryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot remove job while scheduler is running")
	}

	s.cron.Remove(jobID)
	s.logger.WithField("job_id", jobID).Info("Removed job")

	return nil
}
