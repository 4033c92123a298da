// Package hashing provides the 64-bit hash functions used for buffer
// deduplication and for decorrelating random number streams.
package hashing

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cespare/xxhash/v2"
)

// MixBits scrambles the bits of v so that nearby inputs produce unrelated outputs
func MixBits(v uint64) uint64 {
	v ^= v >> 31
	v *= 0x7fb5d329728ea185
	v ^= v >> 27
	v *= 0x81dadef4bc2dd44d
	v ^= v >> 33
	return v
}

// HashBuffer returns a 64-bit content hash of b
func HashBuffer(b []byte, seed uint64) uint64 {
	if seed == 0 {
		return xxhash.Sum64(b)
	}
	d := xxhash.NewWithSeed(seed)
	_, _ = d.Write(b)
	return d.Sum64()
}

// Hash hashes the little-endian encoding of a list of fixed-size values.
// Hash(v) equals HashBuffer of v's encoded bytes with a zero seed.
func Hash(values ...any) uint64 {
	var storage [64]byte
	buf := bytes.NewBuffer(storage[:0])
	for _, v := range values {
		if err := binary.Write(buf, binary.LittleEndian, v); err != nil {
			panic(fmt.Sprintf("hashing: value of type %T is not fixed-size: %v", v, err))
		}
	}
	return HashBuffer(buf.Bytes(), 0)
}

// HashFloats hashes float64 values without boxing them. It agrees with Hash
// called on the same float64 values.
func HashFloats(fs ...float64) uint64 {
	d := xxhash.New()
	var b [8]byte
	for _, f := range fs {
		binary.LittleEndian.PutUint64(b[:], math.Float64bits(f))
		_, _ = d.Write(b[:])
	}
	return d.Sum64()
}
