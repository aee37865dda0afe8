// Package query searches mission configurations for kernels: it expands patterns against a data root,
// narrows catalogs to the files covering a set of times and reduces them to the latest versions.
package query

import (
	"github.com/kernelql/kernelql/config"
	"github.com/kernelql/kernelql/kernel"
)

const (
	sclkKey = "sclk"
	pckKey  = "pck"
	objsKey = "objs"
)

// Deps are the extra files a group needs. A deps member holding references into another document
// instead of an object is kept in Refs.
type Deps struct {
	SCLK []string
	PCK  []string
	Objs *config.Node
	Refs []string
}

// Group is a kernels list with its deps. A nil slice means the member is absent.
type Group struct {
	Kernels []string
	Deps    *Deps
}

// QualityGroup is a group stored under a quality key.
type QualityGroup struct {
	Quality kernel.Quality
	Group
}

// Bucket is the typed view of a kernel-type node. Flat holds the kernels and deps stored directly on the
// node, Qualities the quality sub-nodes in quality order.
type Bucket struct {
	Pointer   config.Pointer
	Type      kernel.Type
	Flat      *Group
	Qualities []QualityGroup
}

// ReadBucket builds the view of the node at ptr. Nodes that are not objects are not buckets and
// return false.
func ReadBucket(ptr config.Pointer, node *config.Node) (*Bucket, bool, error) {
	if node == nil || !node.IsObject() {
		return nil, false, nil
	}

	typ, _ := kernel.ParseType(ptr.Last())

	bucket := &Bucket{Pointer: ptr, Type: typ}

	flat, err := readGroup(node)
	if err != nil {
		return nil, false, err
	}

	bucket.Flat = flat

	for _, quality := range kernel.Qualities {
		child, ok := node.Get(quality.String())
		if !ok || !child.IsObject() {
			continue
		}

		group, err := readGroup(child)
		if err != nil {
			return nil, false, err
		}

		if group == nil {
			group = &Group{}
		}

		bucket.Qualities = append(bucket.Qualities, QualityGroup{Quality: quality, Group: *group})
	}

	return bucket, true, nil
}

// Each calls fn for the flat group and then every quality group, with the location of the group.
func (bucket *Bucket) Each(fn func(ptr config.Pointer, quality kernel.Quality, group *Group) error) error {
	if bucket.Flat != nil {
		if err := fn(bucket.Pointer, kernel.QualityNA, bucket.Flat); err != nil {
			return err
		}
	}

	for i := range bucket.Qualities {
		quality := &bucket.Qualities[i]
		if err := fn(bucket.Pointer.Child(quality.Quality.String()), quality.Quality, &quality.Group); err != nil {
			return err
		}
	}

	return nil
}

func readGroup(node *config.Node) (*Group, error) {
	kernelsNode, hasKernels := node.Get(config.KernelsKey)
	depsNode, hasDeps := node.Get(config.DepsKey)

	if !hasKernels && !hasDeps {
		return nil, nil
	}

	group := &Group{}

	if hasKernels && !kernelsNode.IsNull() {
		kernels, err := kernelsNode.Strings()
		if err != nil {
			return nil, err
		}

		group.Kernels = kernels
	}

	if hasDeps {
		deps, err := readDeps(depsNode)
		if err != nil {
			return nil, err
		}

		group.Deps = deps
	}

	return group, nil
}

func readDeps(node *config.Node) (*Deps, error) {
	deps := &Deps{}

	if !node.IsObject() {
		if node.IsNull() {
			return deps, nil
		}

		refs, err := node.Strings()
		if err != nil {
			return nil, err
		}

		deps.Refs = refs

		return deps, nil
	}

	for key, dst := range map[string]*[]string{sclkKey: &deps.SCLK, pckKey: &deps.PCK} {
		child, ok := node.Get(key)
		if !ok || child.IsNull() {
			continue
		}

		vals, err := child.Strings()
		if err != nil {
			return nil, err
		}

		*dst = vals
	}

	if objs, ok := node.Get(objsKey); ok {
		deps.Objs = objs.Clone()
	}

	return deps, nil
}

// write stores the group at ptr in doc. Absent members are not written.
func (group *Group) write(doc *config.Node, ptr config.Pointer) error {
	if group.Kernels != nil {
		if err := doc.SetAt(ptr.Child(config.KernelsKey), config.NewStrings(group.Kernels)); err != nil {
			return err
		}
	}

	if group.Deps == nil {
		return nil
	}

	depsPtr := ptr.Child(config.DepsKey)

	if group.Deps.Refs != nil {
		return doc.SetAt(depsPtr, config.NewStrings(group.Deps.Refs))
	}

	if group.Deps.SCLK != nil {
		if err := doc.SetAt(depsPtr.Child(sclkKey), config.NewStrings(group.Deps.SCLK)); err != nil {
			return err
		}
	}

	if group.Deps.PCK != nil {
		if err := doc.SetAt(depsPtr.Child(pckKey), config.NewStrings(group.Deps.PCK)); err != nil {
			return err
		}
	}

	if group.Deps.Objs != nil {
		if err := doc.SetAt(depsPtr.Child(objsKey), group.Deps.Objs.Clone()); err != nil {
			return err
		}
	}

	return nil
}
