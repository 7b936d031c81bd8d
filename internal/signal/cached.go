package signal

import (
	"context"
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/crypto-orchestrator/internal/models"
)

// CachedSource wraps a Source with TTL prediction caching. A window is
// identified by its length and last bar timestamp, so replaying the same
// series hits the cache instead of the wrapped source.
type CachedSource struct {
	source Source
	cache  *cache.Cache
	ttl    time.Duration
	logger *logrus.Logger

	mu        sync.Mutex
	hitCount  uint64
	missCount uint64
}

// NewCachedSource wraps the given source with a TTL cache.
func NewCachedSource(source Source, ttl time.Duration, logger *logrus.Logger) *CachedSource {
	return &CachedSource{
		source: source,
		cache:  cache.New(ttl, ttl*2),
		ttl:    ttl,
		logger: logger,
	}
}

// Name returns the wrapped source identifier.
func (c *CachedSource) Name() string {
	return c.source.Name()
}

// Predict serves from cache when the same window was already predicted.
func (c *CachedSource) Predict(ctx context.Context, bars []models.Bar) (Prediction, error) {
	if len(bars) == 0 {
		return Prediction{}, ErrNotEnoughBars
	}

	key := c.cacheKey(bars)
	if cached, found := c.cache.Get(key); found {
		if prediction, ok := cached.(Prediction); ok {
			c.recordHit()
			c.logger.WithField("cache_key", key).Debug("Cache hit for prediction")
			PredictionsTotal.WithLabelValues(c.Name(), "true").Inc()
			return prediction, nil
		}
	}

	c.recordMiss()
	prediction, err := c.source.Predict(ctx, bars)
	if err != nil {
		return Prediction{}, err
	}

	c.cache.Set(key, prediction, c.ttl)
	return prediction, nil
}

func (c *CachedSource) cacheKey(bars []models.Bar) string {
	last := bars[len(bars)-1]
	return fmt.Sprintf("%s:%d:%d", c.source.Name(), len(bars), last.Timestamp.UnixNano())
}

func (c *CachedSource) recordHit() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hitCount++
	c.updateRatio()
}

func (c *CachedSource) recordMiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.missCount++
	c.updateRatio()
}

func (c *CachedSource) updateRatio() {
	total := c.hitCount + c.missCount
	if total > 0 {
		CacheHitRatio.Set(float64(c.hitCount) / float64(total))
	}
}

// Stats returns cache hit statistics.
func (c *CachedSource) Stats() (hits, misses uint64, ratio float64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	hits = c.hitCount
	misses = c.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// Clear flushes the cache and resets counters.
func (c *CachedSource) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Flush()
	c.hitCount = 0
	c.missCount = 0
}
