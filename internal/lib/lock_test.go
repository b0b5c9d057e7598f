package lib

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMutexTimeout(t *testing.T) {
	m := NewMutex()
	timeout := time.Millisecond * 40

	// test lock
	m.Lock()
	start := time.Now()
	err := m.LockTimeout(timeout)
	require.ErrorIsf(t, err, ErrTimeout, "locked mutex should timeout")
	require.GreaterOrEqual(t, time.Since(start), timeout)

	// test unlock
	m.Unlock()
	err = m.LockTimeout(0)
	require.NoErrorf(t, err, "unlocked mutex should not return error")

	// unlock of unlocked
	m.Unlock()
	m.Unlock()
	err = m.LockTimeout(0)
	require.NoError(t, err, "unlock of unlocked mutex should not block")
}

func TestMutexCtx(t *testing.T) {
	m := NewMutex()
	timeout := time.Millisecond * 40
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// test lock
	m.Lock()
	start := time.Now()
	err := m.LockCtx(ctx)
	require.ErrorIsf(t, err, context.DeadlineExceeded, "locked mutex should timeout")
	require.GreaterOrEqual(t, time.Since(start), timeout)

	// test unlock
	m.Unlock()
	err = m.LockCtx(context.Background())
	require.NoErrorf(t, err, "unlocked mutex should not return error")

	// unlock of unlocked
	m.Unlock()
	m.Unlock()
	err = m.LockCtx(context.Background())
	require.NoError(t, err, "unlock of unlocked mutex should not block")
}

func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()
	counter := 0
	wg := sync.WaitGroup{}

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.LockCtx(context.Background(), "c1")
			require.NoError(t, err)
			counter++
			unlock()
		}()
	}
	wg.Wait()

	require.Equal(t, 100, counter)
}

func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	unlockA, err := km.LockCtx(context.Background(), "a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	unlockB, err := km.LockCtx(ctx, "b")
	require.NoError(t, err)
	unlockB()

	_, err = km.LockCtx(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestKeyedMutexReleasesKeys(t *testing.T) {
	km := NewKeyedMutex()
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		unlock, err := km.LockCtx(ctx, fmt.Sprintf("missing-%d", i))
		require.NoError(t, err)
		unlock()
		unlock()
	}
	require.Zero(t, km.Len())

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := km.LockCtx(ctx, fmt.Sprintf("k%d", i%5))
			require.NoError(t, err)
			unlock()
		}()
	}
	wg.Wait()
	require.Zero(t, km.Len())

	unlock, err := km.LockCtx(ctx, "held")
	require.NoError(t, err)
	timeoutCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	_, err = km.LockCtx(timeoutCtx, "held")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, km.Len())
	unlock()
	require.Zero(t, km.Len())
}
