package lowdiscrepancy

import (
	"fmt"
	"math/bits"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/rng"
	"github.com/df07/go-scatter/pkg/sampling"
)

// ReverseBits32 reverses the bit order of v
func ReverseBits32(v uint32) uint32 {
	return bits.Reverse32(v)
}

// ReverseBits64 reverses the bit order of v
func ReverseBits64(v uint64) uint64 {
	return bits.Reverse64(v)
}

func checkBase(baseIndex int) {
	if baseIndex < 0 || baseIndex >= PrimeTableSize {
		panic(fmt.Sprintf("lowdiscrepancy: base index %d outside [0, %d)", baseIndex, PrimeTableSize))
	}
}

// RadicalInverse mirrors the digits of a in base Primes[baseIndex] about
// the radix point
func RadicalInverse(baseIndex int, a uint64) float64 {
	checkBase(baseIndex)
	if baseIndex == 0 {
		return min(float64(ReverseBits64(a))*0x1p-64, core.OneMinusEpsilon)
	}

	base := uint64(Primes[baseIndex])
	invBase := 1 / float64(base)
	invBaseN := 1.0
	var reversed uint64
	for a != 0 {
		next := a / base
		digit := a - next*base
		reversed = reversed*base + digit
		invBaseN *= invBase
		a = next
	}
	return min(float64(reversed)*invBaseN, core.OneMinusEpsilon)
}

// InverseRadicalInverse recovers the index whose nDigits base-base digits
// were reversed into inverse
func InverseRadicalInverse(inverse uint64, base, nDigits int) uint64 {
	b := uint64(base)
	var index uint64
	for i := 0; i < nDigits; i++ {
		digit := inverse % b
		inverse /= b
		index = index*b + digit
	}
	return index
}

// ComputeRadicalInversePermutations builds one random digit permutation per
// prime base. The permutation for base index i starts at PrimeSums[i].
func ComputeRadicalInversePermutations(r *rng.RNG) []uint16 {
	size := PrimeSums[PrimeTableSize-1] + Primes[PrimeTableSize-1]
	perms := make([]uint16, size)
	p := perms
	for _, base := range Primes {
		for j := 0; j < base; j++ {
			p[j] = uint16(j)
		}
		sampling.Shuffle(p[:base], base, 1, r)
		p = p[base:]
	}
	return perms
}

// PermutationForDimension returns the permutation for base index dim
func PermutationForDimension(perms []uint16, dim int) []uint16 {
	checkBase(dim)
	return perms[PrimeSums[dim] : PrimeSums[dim]+Primes[dim]]
}

// ScrambledRadicalInverse is RadicalInverse with every digit, including the
// infinite tail of zero digits, mapped through perm
func ScrambledRadicalInverse(baseIndex int, a uint64, perm []uint16) float64 {
	checkBase(baseIndex)
	base := uint64(Primes[baseIndex])
	if len(perm) < int(base) {
		panic(fmt.Sprintf("lowdiscrepancy: permutation of length %d for base %d", len(perm), base))
	}

	invBase := 1 / float64(base)
	invBaseN := 1.0
	var reversed uint64
	for a > 0 {
		next := a / base
		digit := a - next*base
		reversed = reversed*base + uint64(perm[digit])
		invBaseN *= invBase
		a = next
	}
	v := invBaseN * (float64(reversed) + invBase*float64(perm[0])/(1-invBase))
	return min(v, core.OneMinusEpsilon)
}
