// Package sampler provides pixel samplers: deterministic per-pixel sample
// streams that can be replayed for any (pixel, sample index) pair.
package sampler

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/hashing"
	"github.com/df07/go-scatter/pkg/rng"
	"github.com/pkg/errors"
)

// PixelSampler produces the sample vectors for one pixel sample at a time.
// Samplers are not safe for concurrent use; give each worker a Clone.
type PixelSampler interface {
	core.Sampler
	// StartPixelSample positions the sampler at the first dimension of
	// sample sampleIndex of pixel p
	StartPixelSample(p core.Point2i, sampleIndex int)
	SamplesPerPixel() int
	Clone() PixelSampler
}

// New creates a sampler by name: "zerotwo", "stratified" or "random"
func New(name string, samplesPerPixel, nDimensions, seed int) (PixelSampler, error) {
	switch name {
	case "zerotwo":
		return NewZeroTwoSequenceSampler(samplesPerPixel, nDimensions, seed), nil
	case "stratified":
		x, y := squareFactors(samplesPerPixel)
		return NewStratifiedSampler(x, y, true, nDimensions, seed), nil
	case "random":
		return NewRandomSampler(samplesPerPixel, seed), nil
	default:
		return nil, errors.Errorf("unknown sampler %q", name)
	}
}

// squareFactors splits n into x*y with x and y as close as possible
func squareFactors(n int) (int, int) {
	x := 1
	for i := 1; i*i <= n; i++ {
		if n%i == 0 {
			x = i
		}
	}
	return n / x, x
}

// pixelSeed returns the stream index for a pixel
func pixelSeed(p core.Point2i, seed int) uint64 {
	return hashing.Hash(int64(p.X), int64(p.Y), int64(seed))
}

// RandomSampler returns independent uniform values. Each pixel sample uses
// its own disjoint stretch of a per-pixel PCG stream.
type RandomSampler struct {
	samplesPerPixel int
	seed            int
	rng             rng.RNG
}

// NewRandomSampler creates a random sampler
func NewRandomSampler(samplesPerPixel, seed int) *RandomSampler {
	return &RandomSampler{samplesPerPixel: samplesPerPixel, seed: seed, rng: rng.New()}
}

func (s *RandomSampler) SamplesPerPixel() int { return s.samplesPerPixel }

func (s *RandomSampler) StartPixelSample(p core.Point2i, sampleIndex int) {
	s.rng.SetSequenceIndex(pixelSeed(p, s.seed))
	s.rng.Advance(int64(sampleIndex) * 65536)
}

func (s *RandomSampler) Get1D() float64 { return s.rng.Float64() }

func (s *RandomSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.rng.Float64(), s.rng.Float64())
}

func (s *RandomSampler) Get3D() core.Vec3 {
	return core.NewVec3(s.rng.Float64(), s.rng.Float64(), s.rng.Float64())
}

func (s *RandomSampler) Clone() PixelSampler {
	return NewRandomSampler(s.samplesPerPixel, s.seed)
}
