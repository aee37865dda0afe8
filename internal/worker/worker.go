// Package worker runs tasks concurrently with a bounded number of goroutines and collects their errors.
package worker

import (
	"context"
	"sync"

	"github.com/kernelql/kernelql/internal/errors"
)

// Task is a unit of work.
type Task func(ctx context.Context) error

// Pool runs submitted tasks with at most maxWorkers running at once.
type Pool struct {
	semaphore chan struct{}
	errs      *errors.MultiError
	wg        sync.WaitGroup
	errsMu    sync.Mutex
	cancelled bool
}

// NewPool returns a pool with maxWorkers slots. Values below one are treated as one.
func NewPool(maxWorkers int) *Pool {
	if maxWorkers <= 0 {
		maxWorkers = 1
	}

	return &Pool{
		semaphore: make(chan struct{}, maxWorkers),
		errs:      &errors.MultiError{},
	}
}

// appendError records err. Cancellation is recorded once however many tasks it skipped.
func (wp *Pool) appendError(err error) {
	if err == nil {
		return
	}

	wp.errsMu.Lock()
	defer wp.errsMu.Unlock()

	if errors.IsContextCanceled(err) {
		if wp.cancelled {
			return
		}

		wp.cancelled = true
	}

	wp.errs = wp.errs.Append(err)
}

// Submit starts task once a slot is free. Tasks whose context is done by the time a slot frees up
// record the context error instead of running. A panicking task is recorded as an error.
func (wp *Pool) Submit(ctx context.Context, task Task) {
	wp.wg.Add(1)

	go func() {
		defer wp.wg.Done()

		select {
		case wp.semaphore <- struct{}{}:
		case <-ctx.Done():
			wp.appendError(errors.New(ctx.Err()))
			return
		}

		defer func() { <-wp.semaphore }()
		defer errors.Recover(wp.appendError)

		if err := ctx.Err(); err != nil {
			wp.appendError(errors.New(err))
			return
		}

		wp.appendError(task(ctx))
	}()
}

// Wait blocks until every submitted task has finished and returns the collected errors.
func (wp *Pool) Wait() error {
	wp.wg.Wait()

	wp.errsMu.Lock()
	defer wp.errsMu.Unlock()

	return wp.errs.ErrorOrNil()
}
