//go:generate mockgen -source=$GOFILE -destination=mocks/mock_$GOFILE -package=mocks

// Package spice describes the kernel store that kernels are furnished into, and provides an
// in-memory implementation that identifies kernel files by their ID word.
package spice

// Store is the numerical library kernels are furnished into. Implementations are not required
// to be safe for concurrent use; callers serialize every call.
type Store interface {
	// Furnish loads the kernel at path into the working set. Furnishing a loaded kernel reloads it.
	Furnish(path string) error
	// Unload removes the kernel at path from the working set.
	Unload(path string) error
	// Intervals returns the coverage windows of a binary kernel, in ephemeris seconds.
	Intervals(path string) ([]Interval, error)
	// FileType identifies the architecture and kind of the kernel at path.
	FileType(path string) (FileType, error)
}

// Interval is a closed coverage window.
type Interval struct {
	Start float64
	End   float64
}

// Contains reports whether t lies inside the interval, bounds included.
func (interval Interval) Contains(t float64) bool {
	return t >= interval.Start && t <= interval.End
}

// ContainsAll reports whether every value of times lies inside the interval.
func (interval Interval) ContainsAll(times []float64) bool {
	for _, t := range times {
		if !interval.Contains(t) {
			return false
		}
	}

	return true
}
