// Package config loads mission configuration documents and implements the document operations used to
// resolve them into kernel catalogs: pointer lookup, merging, key search, erasure and dependency resolution.
package config

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/kernelql/kernelql/internal/cache"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/telemetry"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/options"
	"github.com/kernelql/kernelql/pkg/log"
)

const (
	// KernelsKey names the member holding kernel patterns or paths.
	KernelsKey = "kernels"

	documentCacheName = "config_document"
	configExt         = ".json"
)

// ExpandFunc turns the patterns of a kernels member into concrete paths.
type ExpandFunc func(ctx context.Context, patterns *Node) ([]string, error)

// document is a parsed file along with the stat it was parsed from.
type document struct {
	node    *Node
	modTime time.Time
	size    int64
}

// Store holds the union of every mission configuration document found under the config root.
type Store struct {
	opts   *options.Options
	docs   *cache.Cache[document]
	mega   *Node
	root   string
	files  []string
	mu     sync.RWMutex
	loaded bool
}

// NewStore returns a store reading configs as described by opts. Nothing is read until Load.
func NewStore(opts *options.Options) *Store {
	return &Store{
		opts: opts,
		docs: cache.NewCache[document](documentCacheName),
		mega: NewObject(),
	}
}

// Load discovers the configuration documents under the config root and builds the combined document.
// A top-level key defined by several files takes the value of the file that sorts last. Every call
// reads the files again.
func (store *Store) Load(ctx context.Context) error {
	return telemetry.TelemeterFromContext(ctx).Collect(ctx, "config_load", nil, func(ctx context.Context) error {
		store.docs.Purge()

		root, err := store.opts.ConfigRoot()
		if err != nil {
			return err
		}

		files, err := discover(store.opts.FS, root, store.opts.ConfigGlob)
		if err != nil {
			return err
		}

		mega, err := store.load(ctx, files...)
		if err != nil {
			return err
		}

		store.mu.Lock()
		defer store.mu.Unlock()

		store.root = root
		store.files = files
		store.mega = mega
		store.loaded = true

		store.opts.Logger.Debugf("Loaded %d mission configs from %s", len(files), root)

		return nil
	})
}

// Load reads the documents at paths and overlays their top-level keys in order.
func Load(ctx context.Context, fs vfs.FS, paths ...string) (*Node, error) {
	store := &Store{
		opts: &options.Options{FS: fs, Logger: log.Default()},
		docs: cache.NewCache[document](documentCacheName),
	}

	return store.load(ctx, paths...)
}

func (store *Store) load(ctx context.Context, paths ...string) (*Node, error) {
	mega := NewObject()

	for _, path := range paths {
		doc, err := store.document(ctx, path)
		if err != nil {
			return nil, err
		}

		if !doc.IsObject() {
			return nil, errors.New(InvalidArgumentError("config document " + path + " is not an object"))
		}

		for pair := doc.object.Oldest(); pair != nil; pair = pair.Next() {
			if mega.Has(pair.Key) {
				store.opts.Logger.WithField(log.FieldKeyMission, pair.Key).Debugf("%s replaces an earlier definition", path)
			}

			mega.Set(pair.Key, pair.Value.Clone())
		}
	}

	return mega, nil
}

// document returns the parsed file at path. The cached parse is reused while the file keeps its
// size and modification time. The returned node must not be modified.
func (store *Store) document(ctx context.Context, path string) (*Node, error) {
	info, err := store.opts.FS.Stat(path)
	if err != nil {
		return nil, errors.New(err)
	}

	if doc, ok := store.docs.Get(ctx, path); ok && doc.size == info.Size() && doc.modTime.Equal(info.ModTime()) {
		return doc.node, nil
	}

	data, err := vfs.ReadFile(store.opts.FS, path)
	if err != nil {
		return nil, errors.New(err)
	}

	node, err := Parse(data)
	if err != nil {
		return nil, errors.WithStackTraceAndPrefix(err, "parsing %s", path)
	}

	store.docs.Put(ctx, path, document{node: node, modTime: info.ModTime(), size: info.Size()})

	return node, nil
}

func discover(fs vfs.FS, root, pattern string) ([]string, error) {
	matcher, err := glob.Compile(pattern)
	if err != nil {
		return nil, errors.New(options.ConfigurationError{Message: "invalid config glob " + pattern + ": " + err.Error()})
	}

	files, err := vfs.List(fs, root, false)
	if err != nil {
		return nil, err
	}

	var matched []string

	for _, file := range files {
		if matcher.Match(filepath.Base(file)) {
			matched = append(matched, file)
		}
	}

	sort.Strings(matched)

	return matched, nil
}

// Get returns a copy of the sub-document at ptr.
func (store *Store) Get(ptr Pointer) (*Node, error) {
	store.mu.RLock()
	defer store.mu.RUnlock()

	node, ok := store.mega.At(ptr)
	if !ok {
		return nil, errors.New(NotFoundError{Pointer: ptr})
	}

	return node.Clone(), nil
}

// Raw returns a copy of the combined document.
func (store *Store) Raw() *Node {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return store.mega.Clone()
}

// FindKey searches the combined document, see FindKey.
func (store *Store) FindKey(key string, recursive bool) []Pointer {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return FindKey(store.mega, key, recursive)
}

// Files returns the configuration documents found by the last Load.
func (store *Store) Files() []string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return append([]string(nil), store.files...)
}

// Root returns the config root used by the last Load.
func (store *Store) Root() string {
	store.mu.RLock()
	defer store.mu.RUnlock()

	return store.root
}

func (store *Store) ensureLoaded(ctx context.Context) error {
	store.mu.RLock()
	loaded := store.loaded
	store.mu.RUnlock()

	if loaded {
		return nil
	}

	return store.Load(ctx)
}

// MissionConfigFile returns the path of the document named after mission.
func (store *Store) MissionConfigFile(ctx context.Context, mission string) (string, error) {
	if err := store.ensureLoaded(ctx); err != nil {
		return "", err
	}

	for _, file := range store.Files() {
		if filepath.Base(file) == mission+configExt {
			return file, nil
		}
	}

	return "", errors.New(InvalidArgumentError("config file for \"" + mission + "\" not found"))
}

// MissionConfig returns a copy of the document named after mission.
func (store *Store) MissionConfig(ctx context.Context, mission string) (*Node, error) {
	path, err := store.MissionConfigFile(ctx, mission)
	if err != nil {
		return nil, err
	}

	doc, err := store.document(ctx, path)
	if err != nil {
		return nil, err
	}

	return doc.Clone(), nil
}

// AvailableConfigs returns a copy of every discovered document, in file order.
func (store *Store) AvailableConfigs(ctx context.Context) ([]*Node, error) {
	if err := store.ensureLoaded(ctx); err != nil {
		return nil, err
	}

	files := store.Files()
	docs := make([]*Node, 0, len(files))

	for _, file := range files {
		doc, err := store.document(ctx, file)
		if err != nil {
			return nil, err
		}

		docs = append(docs, doc.Clone())
	}

	return docs, nil
}

// InstrumentConfig returns the catalog of instrument with the references it declares resolved against
// the document that defines it.
func (store *Store) InstrumentConfig(ctx context.Context, instrument string) (*Node, error) {
	docs, err := store.AvailableConfigs(ctx)
	if err != nil {
		return nil, err
	}

	for _, doc := range docs {
		conf, ok := doc.Get(instrument)
		if !ok {
			continue
		}

		conf = conf.Clone()

		if err := ResolveDependencies(conf, doc); err != nil {
			return nil, err
		}

		EraseAt(conf, NewPointer(DepsKey))

		return conf, nil
	}

	return nil, errors.New(NotFoundError{Pointer: NewPointer(instrument)})
}

// Evaluate replaces every kernels member below ptr with the paths returned by expand. The result keeps
// the location of ptr inside an otherwise empty document. With merge set the result is also
// merge-patched into the combined document.
func (store *Store) Evaluate(ctx context.Context, ptr Pointer, expand ExpandFunc, merge bool) (*Node, error) {
	src, err := store.Get(ptr)
	if err != nil {
		return nil, err
	}

	eval := NewObject()
	if err := eval.SetAt(ptr, src); err != nil {
		return nil, err
	}

	for _, kernelsPtr := range FindKey(eval, KernelsKey, true) {
		patterns, _ := eval.At(kernelsPtr)

		paths, err := expand(ctx, patterns)
		if err != nil {
			return nil, err
		}

		if err := eval.SetAt(kernelsPtr, NewStrings(paths)); err != nil {
			return nil, err
		}
	}

	if merge {
		store.mu.Lock()
		MergePatch(store.mega, eval)
		store.mu.Unlock()
	}

	return eval, nil
}

// ValidateAll checks every discovered document against the mission config schema.
func (store *Store) ValidateAll(ctx context.Context) error {
	if err := store.ensureLoaded(ctx); err != nil {
		return err
	}

	errs := &errors.MultiError{}

	for _, file := range store.Files() {
		data, err := vfs.ReadFile(store.opts.FS, file)
		if err != nil {
			errs = errs.Append(errors.New(err))
			continue
		}

		if err := Validate(data); err != nil {
			errs = errs.Append(errors.WithStackTraceAndPrefix(err, "%s", strings.TrimSuffix(filepath.Base(file), configExt)))
		}
	}

	return errs.ErrorOrNil()
}
