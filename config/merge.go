package config

import (
	"github.com/kernelql/kernelql/internal/errors"
)

// Merge combines incoming into base in place. Both must be objects.
//
// Members present only in incoming are copied. When both sides hold objects the members are merged
// recursively. When neither side holds an object the base value is turned into an array, if it is
// not one already, and the incoming value or its elements are appended after it. Merging an object
// with any other kind fails with InvalidMergeError.
func Merge(base, incoming *Node) error {
	if !base.IsObject() || !incoming.IsObject() {
		return errors.New(InvalidMergeError{})
	}

	for pair := incoming.object.Oldest(); pair != nil; pair = pair.Next() {
		key, val := pair.Key, pair.Value

		existing, ok := base.Get(key)
		if !ok {
			base.Set(key, val.Clone())
			continue
		}

		if existing.IsObject() != val.IsObject() {
			return errors.New(InvalidMergeError{Key: key})
		}

		if existing.IsObject() {
			if err := Merge(existing, val); err != nil {
				return err
			}

			continue
		}

		if !existing.IsArray() {
			existing.replace(NewArray(existing.Clone()))
		}

		if val.IsArray() {
			for _, elem := range val.array {
				existing.Append(elem.Clone())
			}
		} else {
			existing.Append(val.Clone())
		}
	}

	return nil
}

// MergePatch applies patch to target following JSON merge patch (RFC 7386): objects merge
// recursively, null members delete, anything else replaces.
func MergePatch(target, patch *Node) {
	if !patch.IsObject() {
		target.replace(patch.Clone())
		return
	}

	if !target.IsObject() {
		target.replace(NewObject())
	}

	for pair := patch.object.Oldest(); pair != nil; pair = pair.Next() {
		key, val := pair.Key, pair.Value

		if val.IsNull() {
			target.Delete(key)
			continue
		}

		existing, ok := target.Get(key)
		if !ok {
			existing = NewNull()
			target.Set(key, existing)
		}

		MergePatch(existing, val)
	}
}
