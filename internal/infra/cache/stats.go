package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StatsCache stores per-user hour statistics under a per-user generation.
// Invalidate bumps the generation, so a value computed before a write can
// only land under a key nobody reads anymore.
type StatsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	genTTL time.Duration
}

func NewStatsCache(rdb *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	// the generation must outlive every value stored under it
	genTTL := 7 * 24 * time.Hour
	if genTTL < 2*ttl {
		genTTL = 2 * ttl
	}
	return &StatsCache{rdb: rdb, ttl: ttl, genTTL: genTTL}
}

func statsKey(userID uuid.UUID, gen int64, period string) string {
	return fmt.Sprintf("hourstats:%s:%d:%s", userID, gen, period)
}

func genKey(userID uuid.UUID) string {
	return fmt.Sprintf("hourstats:%s:gen", userID)
}

func (c *StatsCache) generation(ctx context.Context, userID uuid.UUID) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns the generation the lookup ran under. A miss is (gen, false, nil);
// pass gen back to Set.
func (c *StatsCache) Get(ctx context.Context, userID uuid.UUID, period string, dest any) (int64, bool, error) {
	gen, err := c.generation(ctx, userID)
	if err != nil {
		return 0, false, err
	}
	raw, err := c.rdb.Get(ctx, statsKey(userID, gen, period)).Bytes()
	if errors.Is(err, redis.Nil) {
		return gen, false, nil
	}
	if err != nil {
		return gen, false, err
	}
	if err := sonic.Unmarshal(raw, dest); err != nil {
		return gen, false, fmt.Errorf("decode cached stats: %w", err)
	}
	return gen, true, nil
}

func (c *StatsCache) Set(ctx context.Context, userID uuid.UUID, gen int64, period string, v any) error {
	raw, err := sonic.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode stats: %w", err)
	}
	return c.rdb.Set(ctx, statsKey(userID, gen, period), raw, c.ttl).Err()
}

func (c *StatsCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	pipe := c.rdb.TxPipeline()
	pipe.Incr(ctx, genKey(userID))
	pipe.Expire(ctx, genKey(userID), c.genTTL)
	_, err := pipe.Exec(ctx)
	return err
}
