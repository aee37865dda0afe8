package config

import (
	"sort"
	"strconv"
)

// FindKey returns the pointer of every member named key. When recursive is false only the direct
// members of doc are scanned. Members are visited in lexical order, depth first, and the matches
// inside a member are listed before the member itself so the most specific match comes first.
func FindKey(doc *Node, key string, recursive bool) []Pointer {
	return findKey(doc, Root, key, recursive, nil)
}

func findKey(node *Node, ptr Pointer, key string, recursive bool, found []Pointer) []Pointer {
	switch node.Kind() {
	case ObjectKind:
		keys := node.Keys()
		sort.Strings(keys)

		for _, name := range keys {
			child, _ := node.object.Get(name)
			childPtr := ptr.Child(name)

			if recursive && child.IsStructured() {
				found = findKey(child, childPtr, key, recursive, found)
			}

			if name == key {
				found = append(found, childPtr)
			}
		}
	case ArrayKind:
		for i, elem := range node.array {
			if recursive && elem.IsStructured() {
				found = findKey(elem, ptr.Child(strconv.Itoa(i)), key, recursive, found)
			}
		}
	}

	return found
}

// EraseAt removes the node at ptr and returns 1. It returns 0 and leaves doc untouched when the
// parent container or the member does not exist.
func EraseAt(doc *Node, ptr Pointer) int {
	if ptr.IsRoot() {
		return 0
	}

	parent, ok := doc.At(ptr.Parent())
	if !ok {
		return 0
	}

	switch parent.Kind() {
	case ObjectKind:
		if parent.Delete(ptr.Last()) {
			return 1
		}
	case ArrayKind:
		idx, err := strconv.Atoi(ptr.Last())
		if err != nil || idx < 0 || idx >= len(parent.array) {
			return 0
		}

		parent.array = append(parent.array[:idx], parent.array[idx+1:]...)

		return 1
	}

	return 0
}
