package sampler

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/rng"
	"github.com/df07/go-scatter/pkg/sampling"
)

// StratifiedSampler places one sample in each cell of an xSamples by
// ySamples grid, decorrelating dimensions by shuffling
type StratifiedSampler struct {
	pixelSamples
	xSamples, ySamples int
	jitter             bool
	nDimensions        int
	rng                rng.RNG
}

// NewStratifiedSampler creates a sampler with xSamples*ySamples samples per pixel
func NewStratifiedSampler(xSamples, ySamples int, jitter bool, nDimensions, seed int) *StratifiedSampler {
	s := &StratifiedSampler{
		pixelSamples: newPixelSamples(xSamples*ySamples, nDimensions, seed),
		xSamples:     xSamples,
		ySamples:     ySamples,
		jitter:       jitter,
		nDimensions:  nDimensions,
		rng:          rng.New(),
	}
	s.generate = s.generatePixel
	return s
}

func (s *StratifiedSampler) generatePixel(p core.Point2i) {
	s.rng.SetSequenceIndex(pixelSeed(p, s.seed))
	for _, samples := range s.samples1D {
		sampling.StratifiedSample1D(samples, &s.rng, s.jitter)
		sampling.Shuffle(samples, s.samplesPerPixel, 1, &s.rng)
	}
	for _, samples := range s.samples2D {
		sampling.StratifiedSample2D(samples, s.xSamples, s.ySamples, &s.rng, s.jitter)
		sampling.Shuffle(samples, s.samplesPerPixel, 1, &s.rng)
	}
}

func (s *StratifiedSampler) Clone() PixelSampler {
	return NewStratifiedSampler(s.xSamples, s.ySamples, s.jitter, s.nDimensions, s.seed)
}
