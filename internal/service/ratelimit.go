package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/mkovalev/filevault/internal/util"
)

const (
	rateCountKeyPrefix = "ratelimit:count:"
	rateBlockKeyPrefix = "ratelimit:block:"
)

// LoginRateLimiter counts credential attempts per client key in a fixed
// redis window and blocks the key once the limit is exceeded.
type LoginRateLimiter struct {
	rdb       *redis.Client
	limit     int64
	interval  time.Duration
	blockTime time.Duration
	log       *zap.SugaredLogger
}

func NewLoginRateLimiter(rdb *redis.Client, cfg *util.RateLimiterConfig, log *zap.SugaredLogger) *LoginRateLimiter {
	return &LoginRateLimiter{
		rdb:       rdb,
		limit:     int64(cfg.Limit),
		interval:  cfg.Interval,
		blockTime: cfg.BlockTime,
		log:       log,
	}
}

func (l *LoginRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	blocked, err := l.rdb.Exists(ctx, rateBlockKeyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("check block key: %w", err)
	}
	if blocked > 0 {
		return false, nil
	}

	countKey := rateCountKeyPrefix + key
	count, err := l.rdb.Incr(ctx, countKey).Result()
	if err != nil {
		return false, fmt.Errorf("increment counter: %w", err)
	}
	if count == 1 {
		if err := l.rdb.Expire(ctx, countKey, l.interval).Err(); err != nil {
			return false, fmt.Errorf("set counter ttl: %w", err)
		}
	}

	if count > l.limit {
		pipe := l.rdb.Pipeline()
		pipe.Set(ctx, rateBlockKeyPrefix+key, "1", l.blockTime)
		pipe.Del(ctx, countKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return false, fmt.Errorf("set block key: %w", err)
		}
		l.log.Warnw("client rate limited", "key", key)
		return false, nil
	}

	return true, nil
}
