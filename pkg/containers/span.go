package containers

import "fmt"

// TypedIndexSpan is a read-only view of a slice indexed by a distinct index type
type TypedIndexSpan[T any, I ~int | ~int32 | ~uint32] struct {
	values []T
}

// NewTypedIndexSpan wraps values
func NewTypedIndexSpan[T any, I ~int | ~int32 | ~uint32](values []T) TypedIndexSpan[T, I] {
	return TypedIndexSpan[T, I]{values: values}
}

// Len returns the number of elements
func (s TypedIndexSpan[T, I]) Len() int { return len(s.values) }

// At returns the element at index i
func (s TypedIndexSpan[T, I]) At(i I) T {
	if int(i) < 0 || int(i) >= len(s.values) {
		panic(fmt.Sprintf("TypedIndexSpan: index %d out of range [0, %d)", int(i), len(s.values)))
	}
	return s.values[int(i)]
}
