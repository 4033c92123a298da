package sampler

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/lowdiscrepancy"
	"github.com/df07/go-scatter/pkg/rng"
	"github.com/df07/go-scatter/pkg/sampling"
)

// ZeroTwoSequenceSampler draws each dimension from a randomly scrambled
// (0,2)-sequence. Within a pixel every power-of-two prefix of the 2D
// samples is stratified over all elementary intervals of matching area.
type ZeroTwoSequenceSampler struct {
	pixelSamples
	nDimensions int
	rng         rng.RNG
}

// NewZeroTwoSequenceSampler creates a sampler. samplesPerPixel is rounded up
// to a power of two.
func NewZeroTwoSequenceSampler(samplesPerPixel, nDimensions, seed int) *ZeroTwoSequenceSampler {
	spp := core.RoundUpPow2(samplesPerPixel)
	s := &ZeroTwoSequenceSampler{
		pixelSamples: newPixelSamples(spp, nDimensions, seed),
		nDimensions:  nDimensions,
		rng:          rng.New(),
	}
	s.generate = s.generatePixel
	return s
}

func (s *ZeroTwoSequenceSampler) generatePixel(p core.Point2i) {
	s.rng.SetSequenceIndex(pixelSeed(p, s.seed))
	n := uint32(s.samplesPerPixel)

	for _, samples := range s.samples1D {
		lowdiscrepancy.GrayCodeSample(&lowdiscrepancy.VanDerCorputMatrix, n, s.rng.Uint32(), samples)
		sampling.Shuffle(samples, s.samplesPerPixel, 1, &s.rng)
	}
	for _, samples := range s.samples2D {
		scramble := [2]uint32{s.rng.Uint32(), s.rng.Uint32()}
		lowdiscrepancy.GrayCodeSample2D(&lowdiscrepancy.VanDerCorputMatrix, &lowdiscrepancy.SobolSecondMatrix, n, scramble, samples)
		sampling.Shuffle(samples, s.samplesPerPixel, 1, &s.rng)
	}
}

func (s *ZeroTwoSequenceSampler) Clone() PixelSampler {
	return NewZeroTwoSequenceSampler(s.samplesPerPixel, s.nDimensions, s.seed)
}
