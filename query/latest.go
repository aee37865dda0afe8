package query

import (
	"path/filepath"
	"slices"

	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/internal/errors"
	"github.com/kernelql/kernelql/kernel"
)

// latestTypes are the bucket types reduced by LatestKernels before the sclk members.
var latestTypes = []kernel.Type{
	kernel.TypeCK, kernel.TypeSPK, kernel.TypeTSPK, kernel.TypeFK,
	kernel.TypeIK, kernel.TypeIAK, kernel.TypePCK, kernel.TypeLSK,
}

// LatestKernel returns the newest of several versions of one file, the path that sorts last.
// Every path must share one extension.
func LatestKernel(paths []string) (string, error) {
	if len(paths) == 0 {
		return "", errors.New(config.InvalidArgumentError("no kernels to choose the latest from"))
	}

	ext := filepath.Ext(paths[0])

	for _, path := range paths {
		if filepath.Ext(path) != ext {
			return "", errors.New(config.InvalidArgumentError("the input paths are not different versions of the same file"))
		}
	}

	return slices.Max(paths), nil
}

// LatestKernels returns a copy of catalog with every kernels list of a typed bucket, and every sclk
// member, reduced to its latest file. Empty lists stay empty.
func LatestKernels(catalog *config.Node) (*config.Node, error) {
	latest := catalog.Clone()

	for _, typ := range latestTypes {
		for _, ptr := range config.FindKey(latest, typ.String(), true) {
			node, _ := latest.At(ptr)

			bucket, ok, err := ReadBucket(ptr, node)
			if err != nil {
				return nil, err
			}

			if !ok {
				continue
			}

			err = bucket.Each(func(ptr config.Pointer, _ kernel.Quality, group *Group) error {
				if group.Kernels == nil {
					return nil
				}

				return reduceAt(latest, ptr.Child(config.KernelsKey), group.Kernels)
			})
			if err != nil {
				return nil, err
			}
		}
	}

	for _, ptr := range config.FindKey(latest, sclkKey, true) {
		node, _ := latest.At(ptr)

		if node.IsObject() {
			kernelsNode, ok := node.Get(config.KernelsKey)
			if !ok {
				continue
			}

			ptr, node = ptr.Child(config.KernelsKey), kernelsNode
		}

		if node.IsNull() {
			continue
		}

		paths, err := node.Strings()
		if err != nil {
			return nil, errors.WithStackTraceAndPrefix(err, "sclk at %s", ptr)
		}

		if err := reduceAt(latest, ptr, paths); err != nil {
			return nil, err
		}
	}

	return latest, nil
}

func reduceAt(doc *config.Node, ptr config.Pointer, paths []string) error {
	if len(paths) == 0 {
		return doc.SetAt(ptr, config.NewStrings(nil))
	}

	path, err := LatestKernel(paths)
	if err != nil {
		return errors.WithStackTraceAndPrefix(err, "kernels at %s", ptr)
	}

	return doc.SetAt(ptr, config.NewStrings([]string{path}))
}
