package kernel

import (
	"context"
	"sync"

	"github.com/kernelql/kernelql/config"
)

// Kernel is a handle on a furnished file. The file stays furnished until every handle on it
// has been closed.
type Kernel struct {
	pool    *Pool
	path    string
	typ     Type
	quality Quality
	closed  bool
	mu      sync.Mutex
}

// New furnishes path, reloading it when another handle already holds it, and returns a handle.
func New(ctx context.Context, pool *Pool, path string) (*Kernel, error) {
	return open(ctx, pool, path, TypeFromPath(path), QualityNA, true)
}

// NewAt is like New, but classifies the kernel from its location in a catalog.
func NewAt(ctx context.Context, pool *Pool, path string, ptr config.Pointer) (*Kernel, error) {
	typ, quality := Classify(ptr, path)

	return open(ctx, pool, path, typ, quality, true)
}

func open(ctx context.Context, pool *Pool, path string, typ Type, quality Quality, force bool) (*Kernel, error) {
	if pool == nil {
		pool = DefaultPool()
	}

	if _, err := pool.Load(ctx, path, force); err != nil {
		return nil, err
	}

	return &Kernel{
		pool:    pool,
		path:    path,
		typ:     typ,
		quality: quality,
	}, nil
}

// Copy returns a second handle on the same file. The file is furnished again so that it takes
// precedence over anything furnished since the original handle was made.
func (kernel *Kernel) Copy(ctx context.Context) (*Kernel, error) {
	return open(ctx, kernel.pool, kernel.path, kernel.typ, kernel.quality, true)
}

// Close releases the handle. Closing a handle twice does nothing.
func (kernel *Kernel) Close(ctx context.Context) error {
	kernel.mu.Lock()
	defer kernel.mu.Unlock()

	if kernel.closed {
		return nil
	}

	if _, err := kernel.pool.Unload(ctx, kernel.path); err != nil {
		return err
	}

	kernel.closed = true

	return nil
}

// Path returns the file the handle refers to.
func (kernel *Kernel) Path() string { return kernel.path }

// Type returns the kernel type.
func (kernel *Kernel) Type() Type { return kernel.typ }

// Quality returns the kernel quality, QualityNA for kernels outside a quality bucket.
func (kernel *Kernel) Quality() Quality { return kernel.quality }
