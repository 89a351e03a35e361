// Package cache keeps /summary results in redis between writes.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"habittracker/internal/model"
	"habittracker/pkg/metrics"
)

const summaryKey = "habittracker:summary"

// SummaryCache stores summary rows in one redis hash, one field per
// requested range, so a single DEL invalidates everything. Every method is
// a no-op on a nil receiver or nil client, and redis errors are logged and
// treated as a miss.
type SummaryCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewSummaryCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &SummaryCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *SummaryCache) enabled() bool {
	return c != nil && c.rdb != nil
}

// RangeField names the hash field for a [from, to] range; nil bounds are
// open.
func RangeField(from, to *time.Time) string {
	f, t := "*", "*"
	if from != nil {
		f = from.Format(time.DateOnly)
	}
	if to != nil {
		t = to.Format(time.DateOnly)
	}
	return f + ".." + t
}

func (c *SummaryCache) Get(ctx context.Context, field string) ([]model.DaySummary, bool) {
	if !c.enabled() {
		return nil, false
	}

	raw, err := c.rdb.HGet(ctx, summaryKey, field).Bytes()
	if err == redis.Nil {
		metrics.IncrementSummaryCache("miss")
		return nil, false
	}
	if err != nil {
		c.logger.Warn("Summary cache read failed", zap.String("field", field), zap.Error(err))
		metrics.IncrementSummaryCache("error")
		return nil, false
	}

	var rows []model.DaySummary
	if err := json.Unmarshal(raw, &rows); err != nil {
		c.logger.Warn("Summary cache entry corrupt", zap.String("field", field), zap.Error(err))
		metrics.IncrementSummaryCache("error")
		return nil, false
	}
	metrics.IncrementSummaryCache("hit")
	return rows, true
}

func (c *SummaryCache) Set(ctx context.Context, field string, rows []model.DaySummary) {
	if !c.enabled() {
		return
	}

	raw, err := json.Marshal(rows)
	if err != nil {
		return
	}
	pipe := c.rdb.TxPipeline()
	pipe.HSet(ctx, summaryKey, field, raw)
	pipe.Expire(ctx, summaryKey, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Warn("Summary cache write failed", zap.String("field", field), zap.Error(err))
	}
}

// Invalidate drops every cached range.
func (c *SummaryCache) Invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.Del(ctx, summaryKey).Err(); err != nil {
		c.logger.Warn("Summary cache invalidation failed", zap.Error(err))
	}
}
