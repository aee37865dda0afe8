// Package vfs provides a virtual filesystem abstraction for testing and production use.
// It wraps afero to provide a consistent interface for filesystem operations.
package vfs

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/kernelql/kernelql/internal/errors"
	"github.com/spf13/afero"
)

// FS is the filesystem interface used throughout the codebase.
// It provides an abstraction over real and in-memory filesystems.
type FS = afero.Fs

// NewOSFS returns a filesystem backed by the real operating system filesystem.
func NewOSFS() FS {
	return afero.NewOsFs()
}

// NewMemMapFS returns an in-memory filesystem for testing purposes.
func NewMemMapFS() FS {
	return afero.NewMemMapFs()
}

// FileExists checks if a path exists using the given filesystem.
// Returns (true, nil) if the file exists, (false, nil) if it does not exist,
// and (false, error) for other errors (e.g., permission denied).
func FileExists(fs FS, path string) (bool, error) {
	_, err := fs.Stat(path)
	if err == nil {
		return true, nil
	}

	if os.IsNotExist(err) {
		return false, nil
	}

	return false, err
}

// IsDir reports whether path exists and is a directory.
func IsDir(fs FS, path string) bool {
	info, err := fs.Stat(path)

	return err == nil && info.IsDir()
}

// WriteFile writes data to a file on the given filesystem, creating parent directories.
func WriteFile(fs FS, filename string, data []byte, perm os.FileMode) error {
	if err := fs.MkdirAll(filepath.Dir(filename), os.ModePerm); err != nil {
		return errors.New(err)
	}

	return afero.WriteFile(fs, filename, data, perm)
}

// ReadFile reads the contents of a file from the given filesystem.
func ReadFile(fs FS, filename string) ([]byte, error) {
	return afero.ReadFile(fs, filename)
}

// List returns the regular files under root in lexical order. Directories are
// descended into only when recursive is set. A missing root yields an empty list.
func List(fsys FS, root string, recursive bool) ([]string, error) {
	if !IsDir(fsys, root) {
		return nil, nil
	}

	var files []string

	err := afero.Walk(fsys, root, func(path string, info fs.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if path != root && !recursive {
				return filepath.SkipDir
			}

			return nil
		}

		files = append(files, path)

		return nil
	})
	if err != nil {
		return nil, errors.New(err)
	}

	sort.Strings(files)

	return files, nil
}
