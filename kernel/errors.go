package kernel

import "fmt"

// OutOfRangeError is returned when a kernel is unloaded more often than it was loaded.
type OutOfRangeError struct {
	Path string
}

func (err OutOfRangeError) Error() string {
	return fmt.Sprintf("%s is not a kernel that has been loaded", err.Path)
}
