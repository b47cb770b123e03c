package lock_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"driveease/shared/lock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_Exclusive(t *testing.T) {
	locker := lock.NewLocalLocker(time.Second)

	var (
		inside  atomic.Int32
		maximum atomic.Int32
		wg      sync.WaitGroup
	)

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			unlock, err := locker.Acquire(context.Background(), "booking:lock:car:x")
			if !assert.NoError(t, err) {
				return
			}

			current := inside.Add(1)
			if current > maximum.Load() {
				maximum.Store(current)
			}

			time.Sleep(5 * time.Millisecond)
			inside.Add(-1)

			assert.NoError(t, unlock(context.Background()))
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), maximum.Load())
}

func TestLocalLocker_Timeout(t *testing.T) {
	locker := lock.NewLocalLocker(20 * time.Millisecond)

	unlock, err := locker.Acquire(context.Background(), "car:x")
	require.NoError(t, err)

	_, err = locker.Acquire(context.Background(), "car:x")
	assert.ErrorIs(t, err, lock.ErrNotAcquired)

	require.NoError(t, unlock(context.Background()))
	require.NoError(t, unlock(context.Background()), "second unlock is a no-op")

	unlock, err = locker.Acquire(context.Background(), "car:x")
	require.NoError(t, err)
	assert.NoError(t, unlock(context.Background()))
}

func TestLocalLocker_ContextDone(t *testing.T) {
	locker := lock.NewLocalLocker(time.Second)

	unlock, err := locker.Acquire(context.Background(), "car:x")
	require.NoError(t, err)

	defer unlock(context.Background()) //nolint:errcheck

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "car:x")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLocker_KeysAreIndependent(t *testing.T) {
	locker := lock.NewLocalLocker(20 * time.Millisecond)

	unlockX, err := locker.Acquire(context.Background(), "car:x")
	require.NoError(t, err)

	unlockY, err := locker.Acquire(context.Background(), "car:y")
	require.NoError(t, err)

	assert.NoError(t, unlockX(context.Background()))
	assert.NoError(t, unlockY(context.Background()))
}
