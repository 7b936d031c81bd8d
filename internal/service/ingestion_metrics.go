package service

import (
	"fmt"
	"sync"
	"time"
)

// IngestionMetrics tracks statistics about data ingestion
type IngestionMetrics struct {
	mu           sync.RWMutex
	StartTime    time.Time
	Duration     time.Duration
	TotalBars    int
	InsertedBars int
	Batches      int
	Errors       int
}

// NewIngestionMetrics creates a new metrics tracker
func NewIngestionMetrics() *IngestionMetrics {
	return &IngestionMetrics{
		StartTime: time.Now(),
	}
}

// Reset resets all metrics
func (m *IngestionMetrics) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.StartTime = time.Now()
	m.Duration = 0
	m.TotalBars = 0
	m.InsertedBars = 0
	m.Batches = 0
	m.Errors = 0
}

// RecordBatch records a successfully written batch of bars
func (m *IngestionMetrics) RecordBatch(bars int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Batches++
	m.InsertedBars += bars
}

// RecordError increments error count
func (m *IngestionMetrics) RecordError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors++
}

func (m *IngestionMetrics) setTotal(total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TotalBars = total
}

func (m *IngestionMetrics) setDuration(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Duration = d
}

// String returns a formatted string representation of metrics
func (m *IngestionMetrics) String() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	successRate := float64(0)
	if m.TotalBars > 0 {
		successRate = float64(m.InsertedBars) / float64(m.TotalBars) * 100
	}

	return fmt.Sprintf(
		"IngestionMetrics{Total=%d, Inserted=%d (%.1f%%), Batches=%d, Errors=%d, Duration=%v}",
		m.TotalBars,
		m.InsertedBars,
		successRate,
		m.Batches,
		m.Errors,
		m.Duration,
	)
}
