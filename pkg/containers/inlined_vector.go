// Package containers provides allocation-conscious generic containers used
// by the sampling and geometry code.
package containers

import (
	"fmt"
	"unsafe"
)

// InlineArray constrains the inline storage of an InlinedVector to a fixed-size array of T
type InlineArray[T any] interface {
	~[1]T | ~[2]T | ~[4]T | ~[8]T | ~[16]T | ~[32]T
}

// InlinedVector stores its first len(A) elements in place and spills to the
// heap once it grows beyond them
type InlinedVector[T any, A InlineArray[T]] struct {
	fixed A
	heap  []T
	n     int
}

func (v *InlinedVector[T, A]) inlineCap() int {
	return len(v.fixed)
}

func (v *InlinedVector[T, A]) inline() []T {
	return unsafe.Slice((*T)(unsafe.Pointer(&v.fixed)), len(v.fixed))
}

func (v *InlinedVector[T, A]) storage() []T {
	if v.heap != nil {
		return v.heap
	}
	return v.inline()
}

func (v *InlinedVector[T, A]) checkIndex(i int) {
	if i < 0 || i >= v.n {
		panic(fmt.Sprintf("InlinedVector: index %d out of range [0, %d)", i, v.n))
	}
}

// Len returns the number of stored elements
func (v *InlinedVector[T, A]) Len() int { return v.n }

// Cap returns the number of elements that fit without reallocating
func (v *InlinedVector[T, A]) Cap() int {
	if v.heap != nil {
		return cap(v.heap)
	}
	return v.inlineCap()
}

// Inline reports whether the elements still live in the inline array
func (v *InlinedVector[T, A]) Inline() bool { return v.heap == nil }

// At returns element i
func (v *InlinedVector[T, A]) At(i int) T {
	v.checkIndex(i)
	return v.storage()[i]
}

// Set replaces element i
func (v *InlinedVector[T, A]) Set(i int, value T) {
	v.checkIndex(i)
	v.storage()[i] = value
}

// Reserve grows the capacity to at least n
func (v *InlinedVector[T, A]) Reserve(n int) {
	if n <= v.Cap() {
		return
	}
	grown := make([]T, n)
	copy(grown, v.storage()[:v.n])
	if v.heap == nil {
		var zero A
		v.fixed = zero
	}
	v.heap = grown[:cap(grown)]
}

// Push appends value, doubling the capacity when full
func (v *InlinedVector[T, A]) Push(value T) {
	if v.n == v.Cap() {
		v.Reserve(max(2*v.Cap(), 1))
	}
	v.storage()[v.n] = value
	v.n++
}

// Pop removes and returns the last element
func (v *InlinedVector[T, A]) Pop() T {
	if v.n == 0 {
		panic("InlinedVector: pop from empty vector")
	}
	s := v.storage()
	v.n--
	value := s[v.n]
	var zero T
	s[v.n] = zero
	return value
}

// Resize sets the length to n, zeroing any new elements
func (v *InlinedVector[T, A]) Resize(n int) {
	if n < 0 {
		panic(fmt.Sprintf("InlinedVector: negative size %d", n))
	}
	v.Reserve(n)
	s := v.storage()
	var zero T
	for i := n; i < v.n; i++ {
		s[i] = zero
	}
	for i := v.n; i < n; i++ {
		s[i] = zero
	}
	v.n = n
}

// Insert places value at position i, shifting later elements up
func (v *InlinedVector[T, A]) Insert(i int, value T) {
	if i < 0 || i > v.n {
		panic(fmt.Sprintf("InlinedVector: insert position %d out of range [0, %d]", i, v.n))
	}
	v.Push(value)
	s := v.storage()
	copy(s[i+1:v.n], s[i:v.n-1])
	s[i] = value
}

// Erase removes element i, shifting later elements down
func (v *InlinedVector[T, A]) Erase(i int) {
	v.checkIndex(i)
	s := v.storage()
	copy(s[i:], s[i+1:v.n])
	v.n--
	var zero T
	s[v.n] = zero
}

// Clear removes all elements and returns to inline storage
func (v *InlinedVector[T, A]) Clear() {
	var zero A
	v.fixed = zero
	v.heap = nil
	v.n = 0
}

// Slice returns a view of the stored elements. The view is invalidated by
// any call that changes the capacity.
func (v *InlinedVector[T, A]) Slice() []T {
	return v.storage()[:v.n]
}
