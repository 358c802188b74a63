package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisWindow is a sliding window limiter kept in a Redis sorted set per
// key, scored by the failure time in milliseconds.
type RedisWindow struct {
	rdb *redis.Client
	cfg WindowConfig
	now func() time.Time
}

func NewRedisWindow(rdb *redis.Client, cfg WindowConfig) *RedisWindow {
	return &RedisWindow{rdb: rdb, cfg: cfg, now: time.Now}
}

func (w *RedisWindow) key(k string) string { return w.cfg.Prefix + ":" + k }

func (w *RedisWindow) cutoff() string {
	return strconv.FormatInt(w.now().Add(-w.cfg.Window).UnixMilli(), 10)
}

func (w *RedisWindow) Allow(ctx context.Context, key string) (bool, error) {
	k := w.key(key)
	pipe := w.rdb.Pipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", w.cutoff())
	card := pipe.ZCard(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return true, err
	}
	return card.Val() < int64(w.cfg.MaxAttempts), nil
}

func (w *RedisWindow) Fail(ctx context.Context, key string) (int, error) {
	k := w.key(key)
	now := w.now()
	pipe := w.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, k, "-inf", w.cutoff())
	pipe.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixMilli()), Member: uuid.NewString()})
	card := pipe.ZCard(ctx, k)
	pipe.Expire(ctx, k, w.cfg.Window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}

func (w *RedisWindow) Reset(ctx context.Context, key string) error {
	return w.rdb.Del(ctx, w.key(key)).Err()
}
