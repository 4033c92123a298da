package containers

import "fmt"

// AoSoAChunkSize is the number of elements stored per chunk
const AoSoAChunkSize = 32

type aosoa2Chunk[A, B any] struct {
	a [AoSoAChunkSize]A
	b [AoSoAChunkSize]B
}

// AoSoA2 stores pairs as an array of chunks, each chunk holding one array
// per field
type AoSoA2[A, B any] struct {
	chunks []aosoa2Chunk[A, B]
	n      int
}

// NewAoSoA2 allocates storage for n zeroed elements
func NewAoSoA2[A, B any](n int) *AoSoA2[A, B] {
	return &AoSoA2[A, B]{chunks: make([]aosoa2Chunk[A, B], chunkCount(n)), n: n}
}

func chunkCount(n int) int {
	if n < 0 {
		panic(fmt.Sprintf("AoSoA: negative size %d", n))
	}
	return (n + AoSoAChunkSize - 1) / AoSoAChunkSize
}

func checkAoSoAIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("AoSoA: index %d out of range [0, %d)", i, n))
	}
}

// Len returns the number of elements
func (s *AoSoA2[A, B]) Len() int { return s.n }

func (s *AoSoA2[A, B]) chunk(i int) (*aosoa2Chunk[A, B], int) {
	checkAoSoAIndex(i, s.n)
	return &s.chunks[i/AoSoAChunkSize], i % AoSoAChunkSize
}

// Get0 returns the first field of element i
func (s *AoSoA2[A, B]) Get0(i int) A {
	c, j := s.chunk(i)
	return c.a[j]
}

// Get1 returns the second field of element i
func (s *AoSoA2[A, B]) Get1(i int) B {
	c, j := s.chunk(i)
	return c.b[j]
}

// Set0 sets the first field of element i
func (s *AoSoA2[A, B]) Set0(i int, v A) {
	c, j := s.chunk(i)
	c.a[j] = v
}

// Set1 sets the second field of element i
func (s *AoSoA2[A, B]) Set1(i int, v B) {
	c, j := s.chunk(i)
	c.b[j] = v
}

// Set stores both fields of element i
func (s *AoSoA2[A, B]) Set(i int, a A, b B) {
	c, j := s.chunk(i)
	c.a[j], c.b[j] = a, b
}

// Append adds an element at the end
func (s *AoSoA2[A, B]) Append(a A, b B) {
	if s.n == len(s.chunks)*AoSoAChunkSize {
		s.chunks = append(s.chunks, aosoa2Chunk[A, B]{})
	}
	s.n++
	s.Set(s.n-1, a, b)
}

type aosoa3Chunk[A, B, C any] struct {
	a [AoSoAChunkSize]A
	b [AoSoAChunkSize]B
	c [AoSoAChunkSize]C
}

// AoSoA3 is AoSoA2 with a third field
type AoSoA3[A, B, C any] struct {
	chunks []aosoa3Chunk[A, B, C]
	n      int
}

// NewAoSoA3 allocates storage for n zeroed elements
func NewAoSoA3[A, B, C any](n int) *AoSoA3[A, B, C] {
	return &AoSoA3[A, B, C]{chunks: make([]aosoa3Chunk[A, B, C], chunkCount(n)), n: n}
}

// Len returns the number of elements
func (s *AoSoA3[A, B, C]) Len() int { return s.n }

func (s *AoSoA3[A, B, C]) chunk(i int) (*aosoa3Chunk[A, B, C], int) {
	checkAoSoAIndex(i, s.n)
	return &s.chunks[i/AoSoAChunkSize], i % AoSoAChunkSize
}

func (s *AoSoA3[A, B, C]) Get0(i int) A {
	c, j := s.chunk(i)
	return c.a[j]
}

func (s *AoSoA3[A, B, C]) Get1(i int) B {
	c, j := s.chunk(i)
	return c.b[j]
}

func (s *AoSoA3[A, B, C]) Get2(i int) C {
	c, j := s.chunk(i)
	return c.c[j]
}

func (s *AoSoA3[A, B, C]) Set0(i int, v A) {
	c, j := s.chunk(i)
	c.a[j] = v
}

func (s *AoSoA3[A, B, C]) Set1(i int, v B) {
	c, j := s.chunk(i)
	c.b[j] = v
}

func (s *AoSoA3[A, B, C]) Set2(i int, v C) {
	c, j := s.chunk(i)
	c.c[j] = v
}

// Set stores all fields of element i
func (s *AoSoA3[A, B, C]) Set(i int, a A, b B, cv C) {
	c, j := s.chunk(i)
	c.a[j], c.b[j], c.c[j] = a, b, cv
}

// Append adds an element at the end
func (s *AoSoA3[A, B, C]) Append(a A, b B, c C) {
	if s.n == len(s.chunks)*AoSoAChunkSize {
		s.chunks = append(s.chunks, aosoa3Chunk[A, B, C]{})
	}
	s.n++
	s.Set(s.n-1, a, b, c)
}
