// Package buffercache deduplicates immutable geometry buffers by content.
//
// Meshes loaded from many instances of the same file often carry identical
// index and vertex arrays. A BufferCache keeps one canonical copy of each
// distinct buffer and hands out shared read-only views of it.
package buffercache

import (
	"bytes"
	"fmt"
	"sync"
	"unsafe"

	"github.com/df07/go-scatter/pkg/containers"
	"github.com/df07/go-scatter/pkg/hashing"
	"go.uber.org/zap"
)

// BufferID identifies a buffer by content hash and length in elements
type BufferID struct {
	Hash uint64
	Size int
}

// Stats summarizes cache activity
type Stats struct {
	Lookups        int64
	Hits           int64
	RedundantBytes int64
	BytesUsed      int64
	Entries        int
}

// HitRate returns the fraction of lookups served from the cache
func (s Stats) HitRate() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Hits) / float64(s.Lookups)
}

type options struct {
	logger *zap.Logger
	verify bool
	name   string
}

// Option configures a BufferCache
type Option func(*options)

// WithLogger sets the logger used for cache lifecycle messages
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithVerify enables a full content comparison on every hash hit. A
// mismatch means two different buffers share a hash, and panics.
func WithVerify(verify bool) Option {
	return func(o *options) { o.verify = verify }
}

// WithName labels the cache in logs and String output
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// BufferCache stores one canonical copy of each distinct []T. T must be
// plain data without pointers; buffers are compared by their raw bytes.
// Returned slices are shared and must not be modified.
type BufferCache[T any] struct {
	mu      sync.Mutex
	entries *containers.HashMap[BufferID, []T]
	stats   Stats
	verify  bool
	name    string
	logger  *zap.Logger
	hash    func([]byte) uint64
}

// New creates an empty cache
func New[T any](opts ...Option) *BufferCache[T] {
	o := options{logger: zap.NewNop(), name: "buffers"}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	return &BufferCache[T]{
		entries: newEntries[T](),
		verify:  o.verify,
		name:    o.name,
		logger:  o.logger.With(zap.String("cache", o.name)),
		hash:    func(b []byte) uint64 { return hashing.HashBuffer(b, 0) },
	}
}

func newEntries[T any]() *containers.HashMap[BufferID, []T] {
	return containers.NewHashMap[BufferID, []T](func(id BufferID) uint64 {
		return hashing.MixBits(id.Hash ^ uint64(id.Size))
	})
}

// rawBytes views buf as its underlying bytes
func rawBytes[T any](buf []T) []byte {
	if len(buf) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(unsafe.SliceData(buf))), len(buf)*int(unsafe.Sizeof(zero)))
}

// LookupOrAdd returns the canonical copy of buf, storing a private copy the
// first time its contents are seen. The caller keeps ownership of buf.
func (c *BufferCache[T]) LookupOrAdd(buf []T) []T {
	if len(buf) == 0 {
		return nil
	}
	raw := rawBytes(buf)
	id := BufferID{Hash: c.hash(raw), Size: len(buf)}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Lookups++
	if existing, ok := c.entries.Get(id); ok {
		if c.verify && !bytes.Equal(rawBytes(existing), raw) {
			panic(fmt.Sprintf("buffercache %s: hash collision for %d-element buffers (hash %#x)", c.name, id.Size, id.Hash))
		}
		c.stats.Hits++
		c.stats.RedundantBytes += int64(len(raw))
		return existing
	}

	stored := make([]T, len(buf))
	copy(stored, buf)
	c.entries.Insert(id, stored)
	c.stats.BytesUsed += int64(len(raw))
	c.stats.Entries++
	return stored
}

// BytesUsed returns the number of bytes held by canonical buffers
func (c *BufferCache[T]) BytesUsed() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats.BytesUsed
}

// Stats returns a snapshot of the cache counters
func (c *BufferCache[T]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

// Name returns the cache label
func (c *BufferCache[T]) Name() string {
	return c.name
}

// Clear drops every canonical buffer. Views handed out earlier stay valid
// but are no longer shared with later lookups.
func (c *BufferCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("clearing buffer cache",
		zap.Int("entries", c.stats.Entries),
		zap.Int64("bytes", c.stats.BytesUsed))
	c.entries = newEntries[T]()
	c.stats.BytesUsed = 0
	c.stats.Entries = 0
}

func (c *BufferCache[T]) String() string {
	s := c.Stats()
	return fmt.Sprintf("[ BufferCache %s entries: %d bytesUsed: %d lookups: %d hits: %d redundantBytes: %d ]",
		c.name, s.Entries, s.BytesUsed, s.Lookups, s.Hits, s.RedundantBytes)
}
