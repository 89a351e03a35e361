package util

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Deduper remembers keys in redis for ttl so a repeated request can be
// recognised. A nil Deduper, or a nil client, lets everything through.
type Deduper struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewDeduper(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Deduper {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Deduper{
		rdb:    rdb,
		ttl:    ttl,
		logger: logger,
	}
}

// AcquireOnce returns true the first time scope+key is seen within ttl and
// false for duplicates.
func (d *Deduper) AcquireOnce(ctx context.Context, scope, key string) bool {
	if d == nil || d.rdb == nil || key == "" {
		return true
	}

	redisKey := "dedup:" + scope + ":" + key
	ok, err := d.rdb.SetNX(ctx, redisKey, 1, d.ttl).Result()
	if err != nil {
		// redis 不可用时不阻止处理
		if d.logger != nil {
			d.logger.Warn("Redis dedup check failed, allowing processing",
				zap.String("scope", scope),
				zap.String("key", key),
				zap.Error(err),
			)
		}
		return true
	}

	if !ok && d.logger != nil {
		d.logger.Info("Skipped duplicated request",
			zap.String("scope", scope),
			zap.String("dedup_key", redisKey),
		)
	}
	return ok
}

// Release forgets scope+key so the request can be retried after a failure.
func (d *Deduper) Release(ctx context.Context, scope, key string) {
	if d == nil || d.rdb == nil || key == "" {
		return
	}

	redisKey := "dedup:" + scope + ":" + key
	if err := d.rdb.Del(ctx, redisKey).Err(); err != nil && d.logger != nil {
		d.logger.Warn("Failed to release dedup key",
			zap.String("dedup_key", redisKey),
			zap.Error(err),
		)
	}
}
