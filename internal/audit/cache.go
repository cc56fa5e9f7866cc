package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/aegis-factor/pkg/logger"
	"github.com/wonny/aegis-factor/pkg/redis"
)

// ReportSource is the system of record behind the cache
type ReportSource interface {
	LatestRunID(ctx context.Context) (uuid.UUID, error)
	GetReport(ctx context.Context, runID uuid.UUID) (*StoredReport, error)
}

// RunSaver persists a finished run
type RunSaver interface {
	SaveRun(ctx context.Context, rec *RunRecord) error
}

// ReportCache is a read-through cache of stored run summaries.
// With Redis disabled every read goes to the source.
type ReportCache struct {
	cache  *redis.Cache
	source ReportSource
	ttl    time.Duration
	logger *logger.Logger
}

// NewReportCache creates a report cache over source
func NewReportCache(cache *redis.Cache, source ReportSource, ttl time.Duration, log *logger.Logger) *ReportCache {
	return &ReportCache{
		cache:  cache,
		source: source,
		ttl:    ttl,
		logger: log,
	}
}

// Get returns the summary of one run
func (c *ReportCache) Get(ctx context.Context, runID uuid.UUID) (*StoredReport, error) {
	var out StoredReport
	err := c.cache.GetOrSet(ctx, redis.ReportKey(runID.String()), &out, c.ttl, func() (interface{}, error) {
		return c.source.GetReport(ctx, runID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Latest returns the summary of the most recent run
func (c *ReportCache) Latest(ctx context.Context) (*StoredReport, error) {
	var id uuid.UUID
	err := c.cache.GetOrSet(ctx, redis.LatestRunKey(), &id, c.ttl, func() (interface{}, error) {
		return c.source.LatestRunID(ctx)
	})
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, id)
}

// Publish writes a fresh run into the cache and marks it latest
func (c *ReportCache) Publish(ctx context.Context, rec *RunRecord) error {
	if err := c.cache.Set(ctx, redis.ReportKey(rec.RunID.String()), rec.Summary(), c.ttl); err != nil {
		return fmt.Errorf("cache report: %w", err)
	}
	if err := c.cache.Set(ctx, redis.LatestRunKey(), rec.RunID, c.ttl); err != nil {
		return fmt.Errorf("cache latest run: %w", err)
	}
	return nil
}

// CachingStore saves runs to the repository, then publishes them to the cache
type CachingStore struct {
	store RunSaver
	cache *ReportCache
}

// NewCachingStore wraps store so every saved run is also cached
func NewCachingStore(store RunSaver, cache *ReportCache) *CachingStore {
	return &CachingStore{store: store, cache: cache}
}

// SaveRun persists rec; a cache failure is logged, never returned
func (s *CachingStore) SaveRun(ctx context.Context, rec *RunRecord) error {
	if err := s.store.SaveRun(ctx, rec); err != nil {
		return err
	}
	if err := s.cache.Publish(ctx, rec); err != nil {
		s.cache.logger.WithError(err).WithField("run_id", rec.RunID.String()).Warn("Report cache publish failed")
	}
	return nil
}
