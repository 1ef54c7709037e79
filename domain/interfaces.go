// Package domain contains the query model shared by every criterium package:
// the query document nodes, paths, operators, errors and the interfaces
// implemented by adapters.
package domain

import "time"

// Decoder converts between different data representations.
type Decoder interface {
	// Decode converts from one data format to another.
	Decode(any, any) error
}

// Comparer provides ordering and comparison operations for different data types.
type Comparer interface {
	// Compare returns -1, 0, or 1 based on the comparison of two values.
	Compare(any, any) (int, error)
	// Comparable returns true if two values can be compared.
	Comparable(any, any) bool
}

// Getter represents a value that may be undefined, which is different from a
// nil value.
type Getter interface {
	// Get returns the value and whether it is defined.
	Get() (any, bool)
}

// FieldNavigator reads values from arbitrary go values using data paths.
type FieldNavigator interface {
	// GetField returns every value found at path. More than one value is
	// returned when the path goes through a list without an index, and
	// the second return reports that expansion happened.
	GetField(obj any, path Path) ([]Getter, bool, error)
}

// Observer is notified after every compilation.
type Observer interface {
	// Observe receives the dialect name, the time spent compiling and the
	// error found, if any. Validation errors are reported as found, before
	// the dialect gets to replace them.
	Observe(dialect string, elapsed time.Duration, err error)
}
