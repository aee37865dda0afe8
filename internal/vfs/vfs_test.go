package vfs_test

import (
	"testing"

	"github.com/kernelql/kernelql/internal/vfs"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOSFS(t *testing.T) {
	t.Parallel()

	fs := vfs.NewOSFS()

	assert.NotNil(t, fs)
	_, ok := fs.(*afero.OsFs)
	assert.True(t, ok, "expected *afero.OsFs type")
}

func TestNewMemMapFS(t *testing.T) {
	t.Parallel()

	fs := vfs.NewMemMapFS()

	assert.NotNil(t, fs)
	_, ok := fs.(*afero.MemMapFs)
	assert.True(t, ok, "expected *afero.MemMapFs type")
}

func TestFileExists(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		setup    func(fs vfs.FS)
		path     string
		expected bool
	}{
		{
			name: "file exists",
			setup: func(fs vfs.FS) {
				require.NoError(t, afero.WriteFile(fs, "/naif0012.tls", []byte("KPL/LSK"), 0644))
			},
			path:     "/naif0012.tls",
			expected: true,
		},
		{
			name:     "file does not exist",
			setup:    func(fs vfs.FS) {},
			path:     "/nonexistent.bsp",
			expected: false,
		},
		{
			name: "directory exists",
			setup: func(fs vfs.FS) {
				require.NoError(t, fs.MkdirAll("/mro/kernels", 0755))
			},
			path:     "/mro/kernels",
			expected: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fs := vfs.NewMemMapFS()
			tc.setup(fs)

			exists, err := vfs.FileExists(fs, tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, exists)
		})
	}
}

func TestWriteFileCreatesParents(t *testing.T) {
	t.Parallel()

	fs := vfs.NewMemMapFS()

	require.NoError(t, vfs.WriteFile(fs, "/mro/kernels/ck/a.bc", []byte("DAF/CK  "), 0644))

	data, err := vfs.ReadFile(fs, "/mro/kernels/ck/a.bc")
	require.NoError(t, err)
	assert.Equal(t, "DAF/CK  ", string(data))
	assert.True(t, vfs.IsDir(fs, "/mro/kernels/ck"))
}

func TestList(t *testing.T) {
	t.Parallel()

	fs := vfs.NewMemMapFS()
	for _, path := range []string{
		"/mro/kernels/spk/b.bsp",
		"/mro/kernels/spk/a.bsp",
		"/mro/kernels/spk/old/c.bsp",
		"/mro/kernels/lsk/naif0012.tls",
	} {
		require.NoError(t, vfs.WriteFile(fs, path, []byte{}, 0644))
	}

	testCases := []struct {
		name      string
		root      string
		recursive bool
		expected  []string
	}{
		{
			name:      "recursive",
			root:      "/mro/kernels/spk",
			recursive: true,
			expected:  []string{"/mro/kernels/spk/a.bsp", "/mro/kernels/spk/b.bsp", "/mro/kernels/spk/old/c.bsp"},
		},
		{
			name:     "top level only",
			root:     "/mro/kernels/spk",
			expected: []string{"/mro/kernels/spk/a.bsp", "/mro/kernels/spk/b.bsp"},
		},
		{
			name:      "missing root",
			root:      "/lro/kernels",
			recursive: true,
			expected:  nil,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			files, err := vfs.List(fs, tc.root, tc.recursive)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, files)
		})
	}
}
