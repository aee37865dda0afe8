package config

import (
	"fmt"
	"strings"
)

// NotFoundError is returned when a pointer does not resolve inside a document.
type NotFoundError struct {
	Pointer Pointer
}

func (err NotFoundError) Error() string {
	return fmt.Sprintf("no config found at %q", err.Pointer.String())
}

// InvalidMergeError is returned when an object would be merged with a scalar or an array.
type InvalidMergeError struct {
	Key string
}

func (err InvalidMergeError) Error() string {
	if err.Key == "" {
		return "invalid merge: cannot merge an object with a non-object"
	}

	return fmt.Sprintf("invalid merge at key %q: cannot merge an object with a non-object", err.Key)
}

// InvalidArgumentError represents an error that occurs when a function is called with an invalid argument.
// The string value of this error is the error message to display to the user.
type InvalidArgumentError string

func (err InvalidArgumentError) Error() string {
	return string(err)
}

// SchemaValidationError lists every violation found while validating a mission config document.
type SchemaValidationError struct {
	Violations []string
}

func (err SchemaValidationError) Error() string {
	return fmt.Sprintf("mission config does not match schema:\n  %s", strings.Join(err.Violations, "\n  "))
}
