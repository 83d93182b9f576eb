package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestProductLocker_SerializesSameProduct(t *testing.T) {
	locker := NewProductLocker()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := locker.Lock(context.Background(), "Widget")
			require.NoError(t, err)
			n := atomic.AddInt32(&inside, 1)
			for {
				prev := atomic.LoadInt32(&maxInside)
				if n <= prev || atomic.CompareAndSwapInt32(&maxInside, prev, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()
	require.Equal(t, int32(1), maxInside)
	require.Empty(t, locker.locks)
}

func TestProductLocker_DifferentProductsDoNotBlock(t *testing.T) {
	locker := NewProductLocker()
	unlockA, err := locker.Lock(context.Background(), "A")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := locker.Lock(ctx, "B")
	require.NoError(t, err)
	unlockB()
}

func TestProductLocker_HonoursContext(t *testing.T) {
	locker := NewProductLocker()
	unlock, err := locker.Lock(context.Background(), "Widget")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, "Widget")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	unlock()
	unlock()
	require.Empty(t, locker.locks)
}
