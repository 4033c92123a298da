// Package memory provides a typed bump allocator for short-lived values
// such as per-intersection scattering functions.
package memory

// defaultChunkSize is the number of values per arena chunk
const defaultChunkSize = 64

// Arena hands out pointers to T from fixed-size chunks. Pointers stay valid
// until Reset; chunks are retained and reused after Reset.
type Arena[T any] struct {
	chunks    [][]T
	chunk     int
	next      int
	chunkSize int
	n         int
}

// NewArena creates an arena whose chunks hold chunkSize values
func NewArena[T any](chunkSize int) *Arena[T] {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Arena[T]{chunkSize: chunkSize}
}

// Alloc returns a pointer to a zeroed T
func (a *Arena[T]) Alloc() *T {
	if a.chunkSize == 0 {
		a.chunkSize = defaultChunkSize
	}
	if len(a.chunks) == 0 {
		a.chunks = append(a.chunks, make([]T, a.chunkSize))
	}
	if a.next == a.chunkSize {
		a.chunk++
		a.next = 0
		if a.chunk == len(a.chunks) {
			a.chunks = append(a.chunks, make([]T, a.chunkSize))
		}
	}
	p := &a.chunks[a.chunk][a.next]
	var zero T
	*p = zero
	a.next++
	a.n++
	return p
}

// New allocates a copy of v
func (a *Arena[T]) New(v T) *T {
	p := a.Alloc()
	*p = v
	return p
}

// Len returns the number of values allocated since the last Reset
func (a *Arena[T]) Len() int { return a.n }

// Reset releases every allocation at once
func (a *Arena[T]) Reset() {
	a.chunk, a.next, a.n = 0, 0, 0
}
