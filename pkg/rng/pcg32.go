// Package rng implements the PCG32 pseudo-random number generator with
// O(log n) jump-ahead.
package rng

import (
	"fmt"
	"math/bits"

	"github.com/df07/go-scatter/pkg/hashing"
)

const (
	pcg32DefaultState  = 0x853c49e6748fea9b
	pcg32DefaultStream = 0xda3e39cb94b95bdb
	pcg32Mult          = 0x5851f42d4c957f2d
)

// OneMinusEpsilon is the largest float64 below one
const OneMinusEpsilon = 0x1.fffffffffffffp-1

// FloatOneMinusEpsilon is the largest float32 below one
const FloatOneMinusEpsilon = float32(0x1.fffffep-1)

// RNG is a PCG32 generator. The zero value is not seeded; use New or one of
// the sequence constructors.
type RNG struct {
	state uint64
	inc   uint64
}

// New returns a generator on the default stream
func New() RNG {
	return RNG{state: pcg32DefaultState, inc: pcg32DefaultStream}
}

// NewWithSequence returns a generator on stream seqIndex starting at offset
func NewWithSequence(seqIndex, offset uint64) RNG {
	var r RNG
	r.SetSequence(seqIndex, offset)
	return r
}

// NewWithSequenceIndex returns a generator on stream seqIndex with an offset
// derived from the stream index
func NewWithSequenceIndex(seqIndex uint64) RNG {
	return NewWithSequence(seqIndex, hashing.MixBits(seqIndex))
}

// SetSequence selects stream seqIndex and seeds the state with offset
func (r *RNG) SetSequence(seqIndex, offset uint64) {
	r.state = 0
	r.inc = seqIndex<<1 | 1
	r.Uint32()
	r.state += offset
	r.Uint32()
}

// SetSequenceIndex is SetSequence with an offset derived from seqIndex
func (r *RNG) SetSequenceIndex(seqIndex uint64) {
	r.SetSequence(seqIndex, hashing.MixBits(seqIndex))
}

// Uint32 returns the next uniformly distributed 32-bit value
func (r *RNG) Uint32() uint32 {
	old := r.state
	r.state = old*pcg32Mult + r.inc
	xorshifted := uint32(((old >> 18) ^ old) >> 27)
	rot := int(old >> 59)
	return bits.RotateLeft32(xorshifted, -rot)
}

// Uint64 returns a 64-bit value built from two consecutive outputs
func (r *RNG) Uint64() uint64 {
	v0, v1 := uint64(r.Uint32()), uint64(r.Uint32())
	return v0<<32 | v1
}

// Uint32n returns an unbiased value in [0, b)
func (r *RNG) Uint32n(b uint32) uint32 {
	if b == 0 {
		panic("rng: Uint32n called with zero bound")
	}
	threshold := -b % b
	for {
		v := r.Uint32()
		if v >= threshold {
			return v % b
		}
	}
}

// Float64 returns a value in [0, 1)
func (r *RNG) Float64() float64 {
	return min(OneMinusEpsilon, float64(r.Uint64())*0x1p-64)
}

// Float32 returns a value in [0, 1)
func (r *RNG) Float32() float32 {
	return min(FloatOneMinusEpsilon, float32(r.Uint32())*0x1p-32)
}

// Advance moves the generator delta steps forward (or backward for negative
// delta) in O(log delta) time
func (r *RNG) Advance(delta int64) {
	curMult, curPlus := uint64(pcg32Mult), r.inc
	accMult, accPlus := uint64(1), uint64(0)
	d := uint64(delta)
	for d > 0 {
		if d&1 != 0 {
			accMult *= curMult
			accPlus = accPlus*curMult + curPlus
		}
		curPlus = (curMult + 1) * curPlus
		curMult *= curMult
		d /= 2
	}
	r.state = accMult*r.state + accPlus
}

// Distance returns the number of steps other must take to reach r. Both
// generators must be on the same stream.
func (r *RNG) Distance(other RNG) int64 {
	if r.inc != other.inc {
		panic(fmt.Sprintf("rng: distance between different streams (%x vs %x)", r.inc, other.inc))
	}
	curMult, curPlus, curState := uint64(pcg32Mult), r.inc, other.state
	theBit, distance := uint64(1), uint64(0)
	for r.state != curState {
		if r.state&theBit != curState&theBit {
			curState = curState*curMult + curPlus
			distance |= theBit
		}
		theBit <<= 1
		curPlus = (curMult + 1) * curPlus
		curMult *= curMult
	}
	return int64(distance)
}

func (r RNG) String() string {
	return fmt.Sprintf("[ RNG state: %d inc: %d ]", r.state, r.inc)
}
