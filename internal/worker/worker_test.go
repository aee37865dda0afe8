package worker_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/worker"
)

func TestAllTasksCompleteWithoutErrors(t *testing.T) {
	t.Parallel()

	wp := worker.NewPool(5)

	var counter atomic.Int32

	for range 10 {
		wp.Submit(context.Background(), func(context.Context) error {
			counter.Add(1)
			return nil
		})
	}

	require.NoError(t, wp.Wait())
	assert.Equal(t, int32(10), counter.Load())
}

func TestSomeTasksReturnErrors(t *testing.T) {
	t.Parallel()

	wp := worker.NewPool(3)

	for i := range 6 {
		wp.Submit(context.Background(), func(context.Context) error {
			if i%2 == 0 {
				return errors.Errorf("task %d failed", i)
			}

			return nil
		})
	}

	err := wp.Wait()
	require.Error(t, err)

	var multiErr *errors.MultiError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, 3, multiErr.Len())
}

func TestConcurrencyIsBounded(t *testing.T) {
	t.Parallel()

	wp := worker.NewPool(2)

	var running, peak atomic.Int32

	for range 8 {
		wp.Submit(context.Background(), func(context.Context) error {
			current := running.Add(1)

			for {
				seen := peak.Load()
				if current <= seen || peak.CompareAndSwap(seen, current) {
					break
				}
			}

			time.Sleep(5 * time.Millisecond)
			running.Add(-1)

			return nil
		})
	}

	require.NoError(t, wp.Wait())
	assert.LessOrEqual(t, peak.Load(), int32(2))
}

func TestCancelledContextSkipsTasks(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	wp := worker.NewPool(1)

	var ran atomic.Bool

	for range 4 {
		wp.Submit(ctx, func(context.Context) error {
			ran.Store(true)
			return nil
		})
	}

	err := wp.Wait()
	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, ran.Load())

	var multiErr *errors.MultiError
	require.ErrorAs(t, err, &multiErr)
	assert.Equal(t, 1, multiErr.Len())
}

func TestPanickingTaskIsRecorded(t *testing.T) {
	t.Parallel()

	wp := worker.NewPool(0)

	wp.Submit(context.Background(), func(context.Context) error {
		panic("coverage table corrupted")
	})
	wp.Submit(context.Background(), func(context.Context) error {
		return nil
	})

	err := wp.Wait()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "coverage table corrupted")
}
