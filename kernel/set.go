package kernel

import (
	"context"
	"sort"
	"sync"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/telemetry"
)

// Set holds one handle per file listed under every kernels member of a catalog, keyed by the
// location of that member.
type Set struct {
	catalog  *config.Node
	kernels  map[config.Pointer][]*Kernel
	pointers []config.Pointer
	mu       sync.Mutex
}

// NewSet furnishes every kernel listed in catalog. When a file cannot be furnished, the handles
// opened so far are released and the error is returned.
func NewSet(ctx context.Context, pool *Pool, catalog *config.Node) (*Set, error) {
	set := &Set{
		catalog: catalog.Clone(),
		kernels: make(map[config.Pointer][]*Kernel),
	}

	err := telemetry.TelemeterFromContext(ctx).Collect(ctx, "kernel_set_load", nil, func(ctx context.Context) error {
		for _, ptr := range config.FindKey(set.catalog, config.KernelsKey, true) {
			node, _ := set.catalog.At(ptr)

			paths, err := node.Strings()
			if err != nil {
				return errors.Errorf("kernels at %s: %w", ptr, err)
			}

			handles := make([]*Kernel, 0, len(paths))

			for _, path := range paths {
				kernel, err := NewAt(ctx, pool, path, ptr)
				if err != nil {
					set.kernels[ptr] = handles
					set.pointers = append(set.pointers, ptr)

					return err
				}

				handles = append(handles, kernel)
			}

			set.kernels[ptr] = handles
			set.pointers = append(set.pointers, ptr)
		}

		return nil
	})
	if err != nil {
		if closeErr := set.Close(ctx); closeErr != nil {
			return nil, errors.Join(err, closeErr)
		}

		return nil, err
	}

	return set, nil
}

// LoadClockKernels furnishes the leap seconds and spacecraft clock kernels listed in clocks and keeps
// them until the returned set is closed.
func (pool *Pool) LoadClockKernels(ctx context.Context, clocks *config.Node) (*Set, error) {
	set, err := NewSet(ctx, pool, clocks)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "loading clock kernels")
	}

	pool.logger.Debugf("Loaded %d clock kernels", set.Len())

	return set, nil
}

// Catalog returns the catalog the set was built from.
func (set *Set) Catalog() *config.Node {
	return set.catalog
}

// Pointers returns the location of every kernels member, in discovery order.
func (set *Set) Pointers() []config.Pointer {
	set.mu.Lock()
	defer set.mu.Unlock()

	return append([]config.Pointer(nil), set.pointers...)
}

// Kernels returns the handles grouped by the location of their kernels member.
func (set *Set) Kernels() map[config.Pointer][]*Kernel {
	set.mu.Lock()
	defer set.mu.Unlock()

	kernels := make(map[config.Pointer][]*Kernel, len(set.kernels))
	for ptr, handles := range set.kernels {
		kernels[ptr] = append([]*Kernel(nil), handles...)
	}

	return kernels
}

// Paths returns the sorted, distinct files held by the set.
func (set *Set) Paths() []string {
	set.mu.Lock()
	defer set.mu.Unlock()

	seen := make(map[string]struct{})

	var paths []string

	for _, handles := range set.kernels {
		for _, kernel := range handles {
			if _, ok := seen[kernel.path]; ok {
				continue
			}

			seen[kernel.path] = struct{}{}
			paths = append(paths, kernel.path)
		}
	}

	sort.Strings(paths)

	return paths
}

// Len returns the number of handles in the set.
func (set *Set) Len() int {
	set.mu.Lock()
	defer set.mu.Unlock()

	var count int
	for _, handles := range set.kernels {
		count += len(handles)
	}

	return count
}

// Close releases every handle, collecting the failures.
func (set *Set) Close(ctx context.Context) error {
	set.mu.Lock()
	defer set.mu.Unlock()

	errs := &errors.MultiError{}

	for _, ptr := range set.pointers {
		for _, kernel := range set.kernels[ptr] {
			errs = errs.Append(kernel.Close(ctx))
		}
	}

	return errs.ErrorOrNil()
}
