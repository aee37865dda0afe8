package query

import (
	"context"
	"regexp"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/cache"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/kernelql/kernelql/options"
)

const listingCacheName = "data_listing"

// Resolver expands kernel patterns into the files under a data root that match them.
type Resolver struct {
	fs       vfs.FS
	listings *cache.ExpiringCache[[]string]
	group    singleflight.Group
	ttl      time.Duration
}

// NewResolver returns a resolver walking fs. Directory listings are reused for ttl; a ttl of zero
// walks the tree on every call.
func NewResolver(fs vfs.FS, ttl time.Duration) *Resolver {
	return &Resolver{
		fs:       fs,
		ttl:      ttl,
		listings: cache.NewExpiringCache[[]string](listingCacheName),
	}
}

// Expand returns every file under root matched by at least one of patterns, in walk order.
// Patterns are regular expressions searched for anywhere in the full path.
func (resolver *Resolver) Expand(ctx context.Context, root string, patterns *config.Node) ([]string, error) {
	if patterns == nil || patterns.IsNull() {
		return []string{}, nil
	}

	exprs, err := patterns.Strings()
	if err != nil {
		return nil, err
	}

	return resolver.ExpandPatterns(ctx, root, exprs)
}

// ExpandPatterns is Expand for patterns that are already decoded.
func (resolver *Resolver) ExpandPatterns(ctx context.Context, root string, patterns []string) ([]string, error) {
	files, err := resolver.List(ctx, root)
	if err != nil {
		return nil, err
	}

	paths := []string{}

	if len(patterns) == 0 {
		return paths, nil
	}

	expr, err := regexp.Compile("(" + strings.Join(patterns, "|") + ")")
	if err != nil {
		return nil, errors.New(config.InvalidArgumentError("invalid kernel pattern: " + err.Error()))
	}

	for _, file := range files {
		if expr.MatchString(file) {
			paths = append(paths, file)
		}
	}

	return paths, nil
}

// List returns every file below root. Concurrent first requests for the same root share one walk.
func (resolver *Resolver) List(ctx context.Context, root string) ([]string, error) {
	if !vfs.IsDir(resolver.fs, root) {
		return nil, errors.New(options.ConfigurationError{Message: "data root " + root + " is not a directory"})
	}

	if files, ok := resolver.listings.Get(ctx, root); ok {
		return files, nil
	}

	val, err, _ := resolver.group.Do(root, func() (any, error) {
		files, err := vfs.List(resolver.fs, root, true)
		if err != nil {
			return nil, err
		}

		if resolver.ttl > 0 {
			resolver.listings.Put(ctx, root, files, time.Now().Add(resolver.ttl))
		}

		return files, nil
	})
	if err != nil {
		return nil, err
	}

	return val.([]string), nil
}

// Invalidate drops every cached listing.
func (resolver *Resolver) Invalidate() {
	resolver.listings.Purge()
}
