package spice

import (
	"sort"
	"sync"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/vfs"
)

// MemoryStore keeps the working set in memory. Coverage windows are registered with SetIntervals.
type MemoryStore struct {
	fs        vfs.FS
	intervals map[string][]Interval
	furnished map[string]struct{}
	mu        sync.Mutex
}

// NewMemoryStore returns an empty store reading kernel files from fs.
func NewMemoryStore(fs vfs.FS) *MemoryStore {
	return &MemoryStore{
		fs:        fs,
		intervals: make(map[string][]Interval),
		furnished: make(map[string]struct{}),
	}
}

// SetIntervals registers the coverage windows of the binary kernel at path.
func (store *MemoryStore) SetIntervals(path string, intervals ...Interval) {
	store.mu.Lock()
	defer store.mu.Unlock()

	store.intervals[path] = append([]Interval(nil), intervals...)
}

// Furnish implements Store.
func (store *MemoryStore) Furnish(path string) error {
	exists, err := vfs.FileExists(store.fs, path)
	if err != nil {
		return errors.New(err)
	}

	if !exists {
		return errors.Errorf("cannot furnish %s: file not found", path)
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	store.furnished[path] = struct{}{}

	return nil
}

// Unload implements Store. Unloading a kernel that is not furnished does nothing.
func (store *MemoryStore) Unload(path string) error {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.furnished, path)

	return nil
}

// Intervals implements Store. Text kernels have no coverage and fail with config.InvalidArgumentError.
func (store *MemoryStore) Intervals(path string) ([]Interval, error) {
	fileType, err := store.FileType(path)
	if err != nil {
		return nil, err
	}

	if !fileType.IsBinary() {
		return nil, errors.New(config.InvalidArgumentError(path + " is a " + fileType.String() + " kernel, coverage is only defined for binary kernels"))
	}

	store.mu.Lock()
	defer store.mu.Unlock()

	return append([]Interval(nil), store.intervals[path]...), nil
}

// FileType implements Store.
func (store *MemoryStore) FileType(path string) (FileType, error) {
	return Identify(store.fs, path)
}

// IsFurnished reports whether path is in the working set.
func (store *MemoryStore) IsFurnished(path string) bool {
	store.mu.Lock()
	defer store.mu.Unlock()

	_, ok := store.furnished[path]

	return ok
}

// Furnished returns the working set in lexical order.
func (store *MemoryStore) Furnished() []string {
	store.mu.Lock()
	defer store.mu.Unlock()

	paths := make([]string, 0, len(store.furnished))
	for path := range store.furnished {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}
