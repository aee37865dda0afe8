// Package kernel keeps reference counts for kernels furnished into a spice.Store, so that every
// file is furnished once no matter how many handles share it.
package kernel

import (
	"context"
	"sort"
	"sync"

	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/telemetry"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/pkg/log"
	"github.com/kernelql/kernelql/spice"
)

var (
	defaultPool     *Pool
	defaultPoolOnce sync.Once
)

// DefaultPool returns the process-wide pool, backed by an in-memory store over the OS filesystem.
func DefaultPool() *Pool {
	defaultPoolOnce.Do(func() {
		defaultPool = NewPool(spice.NewMemoryStore(vfs.NewOSFS()), log.Default())
	})

	return defaultPool
}

// Pool is the registry of furnished kernels. Every call into the store goes through the pool
// and is serialized by its mutex.
type Pool struct {
	store  spice.Store
	logger log.Logger
	refs   map[string]int
	mu     sync.Mutex
}

// NewPool returns an empty pool furnishing into store.
func NewPool(store spice.Store, logger log.Logger) *Pool {
	if logger == nil {
		logger = log.Default()
	}

	return &Pool{
		store:  store,
		logger: logger,
		refs:   make(map[string]int),
	}
}

// Load registers a reference to path and returns the reference count before the call.
// The file is furnished when it is new to the pool, or again when forceRefurnish is set.
func (pool *Pool) Load(ctx context.Context, path string, forceRefurnish bool) (int, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	count := pool.refs[path]

	if count == 0 || forceRefurnish {
		if err := pool.store.Furnish(path); err != nil {
			err = errors.New(err)
			pool.logger.WithField(log.FieldKeyKernel, path).Tracef("Furnish failed\n%s", errors.ErrorStack(err))

			return count, err
		}

		telemetry.TelemeterFromContext(ctx).Count(ctx, "kernel_furnish", 1)
		pool.logger.WithField(log.FieldKeyKernel, path).Debugf("Furnished kernel, %d references before load", count)
	}

	pool.refs[path] = count + 1

	return count, nil
}

// Unload releases a reference to path and returns the reference count after the call.
// The file is removed from the store when its last reference goes away.
func (pool *Pool) Unload(ctx context.Context, path string) (int, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	count, ok := pool.refs[path]
	if !ok {
		return 0, errors.New(OutOfRangeError{Path: path})
	}

	if count > 1 {
		pool.refs[path] = count - 1
		return count - 1, nil
	}

	if err := pool.store.Unload(path); err != nil {
		return count, errors.New(err)
	}

	delete(pool.refs, path)

	telemetry.TelemeterFromContext(ctx).Count(ctx, "kernel_unfurnish", 1)
	pool.logger.WithField(log.FieldKeyKernel, path).Debugf("Unloaded kernel")

	return 0, nil
}

// RefCount returns the number of live references to path.
func (pool *Pool) RefCount(path string) int {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	return pool.refs[path]
}

// RefCounts returns a snapshot of every reference count.
func (pool *Pool) RefCounts() map[string]int {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	counts := make(map[string]int, len(pool.refs))
	for path, count := range pool.refs {
		counts[path] = count
	}

	return counts
}

// LoadedKernels returns the sorted paths of every kernel with a live reference.
func (pool *Pool) LoadedKernels() []string {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	paths := make([]string, 0, len(pool.refs))
	for path := range pool.refs {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// Intervals returns the coverage of the kernel at path. The file is furnished for the duration
// of the query when the pool does not hold it already.
func (pool *Pool) Intervals(ctx context.Context, path string) ([]spice.Interval, error) {
	var intervals []spice.Interval

	err := pool.withFurnished(ctx, path, func() error {
		var err error

		intervals, err = pool.store.Intervals(path)

		return err
	})

	return intervals, err
}

// FileType identifies the kernel at path through the store.
func (pool *Pool) FileType(path string) (spice.FileType, error) {
	pool.mu.Lock()
	defer pool.mu.Unlock()

	fileType, err := pool.store.FileType(path)
	if err != nil {
		return fileType, errors.New(err)
	}

	return fileType, nil
}

func (pool *Pool) withFurnished(ctx context.Context, path string, fn func() error) error {
	if _, err := pool.Load(ctx, path, false); err != nil {
		return err
	}

	pool.mu.Lock()
	err := fn()
	pool.mu.Unlock()

	if _, unloadErr := pool.Unload(ctx, path); unloadErr != nil && err == nil {
		err = unloadErr
	}

	if err != nil {
		return errors.New(err)
	}

	return nil
}
