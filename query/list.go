package query

import (
	"sort"

	"github.com/kernelql/kernelql/config"
)

// KernelList flattens every kernels member of catalog into one list, in key search order.
// Members that are not strings are skipped.
func KernelList(catalog *config.Node) []string {
	var paths []string

	for _, ptr := range config.FindKey(catalog, config.KernelsKey, true) {
		node, _ := catalog.At(ptr)

		if str, ok := node.Text(); ok {
			paths = append(paths, str)
			continue
		}

		for _, elem := range node.Elems() {
			if str, ok := elem.Text(); ok {
				paths = append(paths, str)
			}
		}
	}

	return paths
}

// KernelSet returns the distinct paths of KernelList, sorted.
func KernelSet(catalog *config.Node) []string {
	seen := make(map[string]struct{})
	paths := []string{}

	for _, path := range KernelList(catalog) {
		if _, ok := seen[path]; ok {
			continue
		}

		seen[path] = struct{}{}
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}
