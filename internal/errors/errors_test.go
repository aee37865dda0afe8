package errors_test

import (
	"fmt"
	"testing"

	"github.com/kernelql/kernelql/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleError struct {
	Path string
}

func (err sampleError) Error() string {
	return "sample " + err.Path
}

func TestNewKeepsTypedError(t *testing.T) {
	t.Parallel()

	err := errors.New(sampleError{Path: "/a"})
	require.Error(t, err)

	var target sampleError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "/a", target.Path)
	assert.True(t, errors.ContainsStackTrace(err))
	assert.NotEmpty(t, errors.ErrorStack(err))
}

func TestNewNil(t *testing.T) {
	t.Parallel()

	require.NoError(t, errors.New(nil))
	require.NoError(t, errors.WithStackTrace(nil))
}

func TestNewDoesNotNestStackTraces(t *testing.T) {
	t.Parallel()

	first := errors.New("boom")
	second := errors.New(first)

	assert.Same(t, first, second)
}

func TestMultiError(t *testing.T) {
	t.Parallel()

	var errs *errors.MultiError

	require.NoError(t, errs.ErrorOrNil())

	errs = errs.Append(nil, fmt.Errorf("first"), nil)
	errs = errs.Append(fmt.Errorf("second"))

	require.Error(t, errs.ErrorOrNil())
	assert.Equal(t, 2, errs.Len())
	assert.Contains(t, errs.Error(), "2 errors occurred")
	assert.Contains(t, errs.Error(), "* first")
	assert.Len(t, errors.UnwrapMultiErrors(errs), 2)
}

func TestRecover(t *testing.T) {
	t.Parallel()

	var recovered error

	func() {
		defer errors.Recover(func(cause error) {
			recovered = cause
		})

		panic("kernel pool corrupted")
	}()

	require.Error(t, recovered)
	assert.Contains(t, recovered.Error(), "kernel pool corrupted")
}
