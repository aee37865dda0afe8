package errors

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorStack joins the stack traces of every error held by err, descending into multi-errors.
func ErrorStack(err error) string {
	var stacks []string

	for _, err := range UnwrapMultiErrors(err) {
		for ; err != nil; err = errors.Unwrap(err) {
			if traced, ok := err.(interface{ ErrorStack() string }); ok {
				stacks = append(stacks, traced.ErrorStack())
			}
		}
	}

	return strings.Join(stacks, "\n")
}

// ContainsStackTrace reports whether err, or anything it wraps, already carries a stack trace.
func ContainsStackTrace(err error) bool {
	for _, err := range UnwrapMultiErrors(err) {
		for ; err != nil; err = errors.Unwrap(err) {
			if _, ok := err.(interface{ ErrorStack() string }); ok {
				return true
			}
		}
	}

	return false
}

// IsContextCanceled reports whether err was caused by a cancelled context.
func IsContextCanceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Recover turns a panic into an error passed to onPanic. It must be deferred.
func Recover(onPanic func(cause error)) {
	rec := recover()
	if rec == nil {
		return
	}

	err, ok := rec.(error)
	if !ok {
		err = fmt.Errorf("panic: %v", rec) //nolint:err113
	}

	onPanic(New(err))
}

// UnwrapMultiErrors flattens nested multi-errors into the errors they hold.
func UnwrapMultiErrors(err error) []error {
	pending := []error{err}

	var flat []error

	for len(pending) > 0 {
		next := pending[0]
		pending = pending[1:]

		if multi, ok := findMulti(next); ok {
			pending = append(pending, multi.Unwrap()...)
			continue
		}

		flat = append(flat, next)
	}

	return flat
}

func findMulti(err error) (interface{ Unwrap() []error }, bool) {
	for ; err != nil; err = errors.Unwrap(err) {
		if multi, ok := err.(interface{ Unwrap() []error }); ok {
			return multi, true
		}
	}

	return nil, false
}
