package sampling

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/rng"
)

// Shuffle randomly permutes count blocks of nDimensions consecutive values
func Shuffle[T any](samp []T, count, nDimensions int, r *rng.RNG) {
	for i := 0; i < count; i++ {
		other := i + int(r.Uint32n(uint32(count-i)))
		for j := 0; j < nDimensions; j++ {
			samp[nDimensions*i+j], samp[nDimensions*other+j] = samp[nDimensions*other+j], samp[nDimensions*i+j]
		}
	}
}

// StratifiedSample1D fills samp with one sample per stratum of [0,1)
func StratifiedSample1D(samp []float64, r *rng.RNG, jitter bool) {
	invN := 1 / float64(len(samp))
	for i := range samp {
		delta := 0.5
		if jitter {
			delta = r.Float64()
		}
		samp[i] = min((float64(i)+delta)*invN, core.OneMinusEpsilon)
	}
}

// StratifiedSample2D fills samp with one sample per cell of an nx by ny grid
func StratifiedSample2D(samp []core.Vec2, nx, ny int, r *rng.RNG, jitter bool) {
	dx, dy := 1/float64(nx), 1/float64(ny)
	i := 0
	for y := 0; y < ny; y++ {
		for x := 0; x < nx; x++ {
			jx, jy := 0.5, 0.5
			if jitter {
				jx, jy = r.Float64(), r.Float64()
			}
			samp[i] = core.NewVec2(
				min((float64(x)+jx)*dx, core.OneMinusEpsilon),
				min((float64(y)+jy)*dy, core.OneMinusEpsilon),
			)
			i++
		}
	}
}

// LatinHypercube generates nSamples points in nDim dimensions, stored
// point-major, with one sample per stratum along every axis
func LatinHypercube(samples []float64, nSamples, nDim int, r *rng.RNG) {
	// Generate LHS samples along diagonal
	invNSamples := 1 / float64(nSamples)
	for i := 0; i < nSamples; i++ {
		for j := 0; j < nDim; j++ {
			sj := (float64(i) + r.Float64()) * invNSamples
			samples[nDim*i+j] = min(sj, core.OneMinusEpsilon)
		}
	}

	// Permute LHS samples in each dimension
	for i := 0; i < nDim; i++ {
		for j := 0; j < nSamples; j++ {
			other := j + int(r.Uint32n(uint32(nSamples-j)))
			samples[nDim*j+i], samples[nDim*other+i] = samples[nDim*other+i], samples[nDim*j+i]
		}
	}
}
