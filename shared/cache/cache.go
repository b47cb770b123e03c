package cache

//go:generate go run go.uber.org/mock/mockgen -source=./cache.go -destination=./mocks/cache_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"driveease/infras/otel"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName         = "cache"
	otelCacheKeyAttribute = "cache.key"
	scanBatch             = 100
	Nil                   = redis.Nil
)

// RedisCache stores JSON encoded read models with a TTL in seconds. A miss is
// reported as an error wrapping Nil.
type RedisCache interface {
	Save(ctx context.Context, key string, value any, ttlSeconds int) error
	Get(ctx context.Context, key string, value any) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context, pattern string) error
	Incr(ctx context.Context, key string, ttlSeconds int) (int64, error)
}

type redisCache struct {
	client *redis.Client
	otel   otel.Otel
}

func NewRedisCache(client *redis.Client, ot otel.Otel) RedisCache {
	return &redisCache{
		client: client,
		otel:   ot,
	}
}

func (c *redisCache) scope(ctx context.Context, op, key string) (context.Context, otel.Scope) {
	ctx, scope := c.otel.NewScope(ctx, otelScopeName, otelScopeName+"."+op)
	scope.SetAttribute(otelCacheKeyAttribute, key)

	return ctx, scope
}

// Clear removes every key matching pattern, deleting in scan-sized batches.
func (c *redisCache) Clear(ctx context.Context, pattern string) error {
	ctx, scope := c.scope(ctx, "Clear", pattern)
	defer scope.End()

	iter := c.client.Scan(ctx, 0, pattern, scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := c.client.Unlink(ctx, batch...).Err(); err != nil {
			return err //nolint:wrapcheck
		}

		batch = batch[:0]

		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())

		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				scope.TraceError(err)

				return fmt.Errorf("failed to clear cache %s: %w", pattern, err)
			}
		}
	}

	if err := iter.Err(); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to scan cache %s: %w", pattern, err)
	}

	if err := flush(); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to clear cache %s: %w", pattern, err)
	}

	return nil
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	ctx, scope := c.scope(ctx, "Delete", key)
	defer scope.End()

	if err := c.client.Del(ctx, key).Err(); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to delete cache value: %w", err)
	}

	return nil
}

func (c *redisCache) Get(ctx context.Context, key string, value any) error {
	ctx, scope := c.scope(ctx, "Get", key)
	defer scope.End()

	raw, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		scope.SetAttribute("cache.hit", false)

		return fmt.Errorf("failed to get cache value: %w", err)
	}

	scope.SetAttribute("cache.hit", true)

	if err = json.Unmarshal(raw, value); err != nil {
		scope.TraceError(err)
		log.Warn().Err(err).Str("key", key).Msg("dropping undecodable cache entry")

		_ = c.client.Del(ctx, key).Err()

		return fmt.Errorf("failed to unmarshal cache value: %w", err)
	}

	return nil
}

func (c *redisCache) Save(ctx context.Context, key string, value any, ttlSeconds int) error {
	ctx, scope := c.scope(ctx, "Save", key)
	defer scope.End()

	raw, err := json.Marshal(value)
	if err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to marshal cache value: %w", err)
	}

	if err = c.client.Set(ctx, key, raw, time.Duration(ttlSeconds)*time.Second).Err(); err != nil {
		scope.TraceError(err)

		return fmt.Errorf("failed to set cache value: %w", err)
	}

	log.Debug().Str("key", key).Int("ttl", ttlSeconds).Msg("cache saved")

	return nil
}

// Incr bumps a counter and starts its expiry on first use, in one round trip.
func (c *redisCache) Incr(ctx context.Context, key string, ttlSeconds int) (int64, error) {
	ctx, scope := c.scope(ctx, "Incr", key)
	defer scope.End()

	var incr *redis.IntCmd

	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.ExpireNX(ctx, key, time.Duration(ttlSeconds)*time.Second)

		return nil
	})
	if err != nil {
		scope.TraceError(err)

		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	return incr.Val(), nil
}
