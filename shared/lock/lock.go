package lock

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"driveease/config"
	"driveease/infras/otel"
	"driveease/shared/constant"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const otelLockKeyAttribute = "lock.key"

// ErrNotAcquired is returned when the lock is still held by someone else once
// the wait budget is spent.
var ErrNotAcquired = errors.New("lock not acquired")

//go:embed release.lua
var releaseSource string

var releaseScript = redis.NewScript(releaseSource)

// Unlock releases a held lock. It is safe to call more than once.
type Unlock func(ctx context.Context) error

type Locker interface {
	Acquire(ctx context.Context, key string) (Unlock, error)
}

type redisLocker struct {
	client *redis.Client
	otel   otel.Otel
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewRedisLocker(client *redis.Client, cfg *config.Config, otl otel.Otel) Locker {
	return &redisLocker{
		client: client,
		otel:   otl,
		ttl:    time.Duration(cfg.Booking.LockTTLSeconds) * time.Second,
		wait:   time.Duration(cfg.Booking.LockWaitMillis) * time.Millisecond,
		retry:  time.Duration(cfg.Booking.LockRetryMillis) * time.Millisecond,
	}
}

// Acquire polls SET NX until the key is free, the wait budget runs out or ctx is done.
func (l *redisLocker) Acquire(ctx context.Context, key string) (unlock Unlock, err error) {
	ctx, scope := l.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".Acquire")
	defer scope.End()
	defer scope.TraceIfError(err)

	scope.SetAttribute(otelLockKeyAttribute, key)

	token := uuid.NewString()

	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	ticker := time.NewTicker(l.retry)
	defer ticker.Stop()

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to acquire lock")

			return nil, fmt.Errorf("failed to acquire lock: %w", err)
		}

		if ok {
			return l.release(key, token), nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
		case <-deadline.C:
			log.Warn().Str("key", key).Dur("wait", l.wait).Msg("lock wait budget exhausted")

			return nil, ErrNotAcquired
		case <-ticker.C:
		}
	}
}

func (l *redisLocker) release(key, token string) Unlock {
	var once sync.Once

	return func(ctx context.Context) (err error) {
		once.Do(func() {
			ctx, scope := l.otel.NewScope(ctx, constant.OtelLockScopeName, constant.OtelLockScopeName+".Release")
			defer scope.End()

			scope.SetAttribute(otelLockKeyAttribute, key)

			if err = releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				scope.TraceError(err)
				log.Error().Err(err).Str("key", key).Msg("failed to release lock")

				err = fmt.Errorf("failed to release lock: %w", err)
			}
		})

		return err
	}
}

type localLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
	wait  time.Duration
}

// NewLocalLocker serializes holders of the same key inside one process.
func NewLocalLocker(wait time.Duration) Locker {
	return &localLocker{
		slots: map[string]chan struct{}{},
		wait:  wait,
	}
}

func (l *localLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	l.mu.Lock()

	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}

	l.mu.Unlock()

	deadline := time.NewTimer(l.wait)
	defer deadline.Stop()

	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("failed to acquire lock: %w", ctx.Err())
	case <-deadline.C:
		return nil, ErrNotAcquired
	}

	var once sync.Once

	return func(context.Context) error {
		once.Do(func() { <-slot })

		return nil
	}, nil
}
