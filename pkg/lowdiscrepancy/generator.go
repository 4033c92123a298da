package lowdiscrepancy

import (
	"math/bits"

	"github.com/df07/go-scatter/pkg/core"
)

// GeneratorMatrix stores a 32x32 binary matrix by columns; bit j of column i
// is entry (31-j, i)
type GeneratorMatrix [32]uint32

// VanDerCorputMatrix generates the base-2 radical inverse
var VanDerCorputMatrix = func() GeneratorMatrix {
	var c GeneratorMatrix
	for i := range c {
		c[i] = 1 << (31 - i)
	}
	return c
}()

// SobolSecondMatrix generates the second dimension of the Sobol' sequence
var SobolSecondMatrix = func() GeneratorMatrix {
	var c GeneratorMatrix
	c[0] = 1 << 31
	for i := 1; i < len(c); i++ {
		c[i] = c[i-1] ^ c[i-1]>>1
	}
	return c
}()

// MultiplyGenerator returns C·a over GF(2)
func MultiplyGenerator(c *GeneratorMatrix, a uint32) uint32 {
	var v uint32
	for i := 0; a != 0; i, a = i+1, a>>1 {
		if a&1 != 0 {
			v ^= c[i]
		}
	}
	return v
}

// SampleGeneratorMatrix returns the a-th point of the sequence defined by c,
// XOR-scrambled and mapped to [0, 1)
func SampleGeneratorMatrix(c *GeneratorMatrix, a, scramble uint32) float64 {
	return min(float64(MultiplyGenerator(c, a)^scramble)*0x1p-32, core.OneMinusEpsilon)
}

// GrayCodeSample fills p with the first n points of the sequence defined by c
// in Gray-code order, one XOR per point
func GrayCodeSample(c *GeneratorMatrix, n, scramble uint32, p []float64) {
	v := scramble
	for i := uint32(0); i < n; i++ {
		p[i] = min(float64(v)*0x1p-32, core.OneMinusEpsilon)
		v ^= c[bits.TrailingZeros32(i+1)]
	}
}

// GrayCodeSample2D is GrayCodeSample for a pair of matrices
func GrayCodeSample2D(c0, c1 *GeneratorMatrix, n uint32, scramble [2]uint32, p []core.Vec2) {
	v := scramble
	for i := uint32(0); i < n; i++ {
		p[i] = core.NewVec2(
			min(float64(v[0])*0x1p-32, core.OneMinusEpsilon),
			min(float64(v[1])*0x1p-32, core.OneMinusEpsilon),
		)
		tz := bits.TrailingZeros32(i + 1)
		v[0] ^= c0[tz]
		v[1] ^= c1[tz]
	}
}

// VanDerCorput returns the scrambled base-2 radical inverse of index
func VanDerCorput(index, scramble uint32) float64 {
	return min(float64(ReverseBits32(index)^scramble)*0x1p-32, core.OneMinusEpsilon)
}

// Sobol2 returns the scrambled second Sobol' dimension of index
func Sobol2(index, scramble uint32) float64 {
	for v := uint32(1 << 31); index != 0; index, v = index>>1, v^v>>1 {
		if index&1 != 0 {
			scramble ^= v
		}
	}
	return min(float64(scramble)*0x1p-32, core.OneMinusEpsilon)
}

// Sample02 returns the index-th point of the scrambled (0,2)-sequence
func Sample02(index uint32, scramble [2]uint32) core.Vec2 {
	return core.NewVec2(VanDerCorput(index, scramble[0]), Sobol2(index, scramble[1]))
}
