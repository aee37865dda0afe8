package config

import (
	"fmt"

	"github.com/kernelql/kernelql/internal/errors"
)

const (
	// DepsKey names the member holding dependency references or kernel dependencies.
	DepsKey = "deps"

	// MaxDependencyDepth bounds the rounds of ResolveDependencies so that cyclic references fail.
	MaxDependencyDepth = 10
)

// ResolveDependencies splices referenced sub-documents of deps into target.
//
// Every "deps" member of target that holds a reference string or an array of reference strings is
// removed, and each referenced node of deps is merged into the object that held it. Merged
// documents may carry their own references, so the search repeats until none remain. Object-valued
// "deps" members describe kernel dependencies and are left in place.
func ResolveDependencies(target, deps *Node) error {
	refLists := findReferenceLists(target)
	rounds := 0

	for len(refLists) > 0 {
		for _, ptr := range refLists {
			node, ok := target.At(ptr)
			if !ok {
				continue
			}

			refs, err := node.Strings()
			if err != nil {
				return err
			}

			EraseAt(target, ptr)

			into, ok := target.At(ptr.Parent())
			if !ok {
				return errors.New(NotFoundError{Pointer: ptr.Parent()})
			}

			for _, ref := range refs {
				refPtr, err := ParsePointer(ref)
				if err != nil {
					return errors.New(err)
				}

				from, ok := deps.At(refPtr)
				if !ok {
					return errors.New(NotFoundError{Pointer: refPtr})
				}

				if err := Merge(into, from); err != nil {
					return err
				}
			}
		}

		refLists = findReferenceLists(target)

		rounds++
		if rounds > MaxDependencyDepth {
			return errors.New(InvalidArgumentError(fmt.Sprintf("could not resolve config dependencies, max recursion depth of %d reached", MaxDependencyDepth)))
		}
	}

	return nil
}

func findReferenceLists(doc *Node) []Pointer {
	var refLists []Pointer

	for _, ptr := range FindKey(doc, DepsKey, true) {
		if node, ok := doc.At(ptr); ok && !node.IsObject() {
			refLists = append(refLists, ptr)
		}
	}

	return refLists
}
