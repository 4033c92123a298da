package sampler

import (
	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/rng"
)

// pixelSamples holds the precomputed sample values of one pixel for the
// first nDimensions 1D and 2D dimensions. Later dimensions fall back to a
// PCG stream positioned per pixel sample.
type pixelSamples struct {
	samplesPerPixel int
	seed            int
	samples1D       [][]float64
	samples2D       [][]core.Vec2

	pixel       core.Point2i
	havePixel   bool
	sampleIndex int
	current1D   int
	current2D   int

	// generations counts per-pixel regenerations
	generations int
	generate    func(p core.Point2i)
	fallback    rng.RNG
}

func newPixelSamples(samplesPerPixel, nDimensions, seed int) pixelSamples {
	ps := pixelSamples{
		samplesPerPixel: samplesPerPixel,
		seed:            seed,
		samples1D:       make([][]float64, nDimensions),
		samples2D:       make([][]core.Vec2, nDimensions),
		fallback:        rng.New(),
	}
	for i := 0; i < nDimensions; i++ {
		ps.samples1D[i] = make([]float64, samplesPerPixel)
		ps.samples2D[i] = make([]core.Vec2, samplesPerPixel)
	}
	return ps
}

func (ps *pixelSamples) SamplesPerPixel() int { return ps.samplesPerPixel }

func (ps *pixelSamples) StartPixelSample(p core.Point2i, sampleIndex int) {
	if !ps.havePixel || p != ps.pixel {
		ps.pixel = p
		ps.havePixel = true
		ps.generations++
		ps.generate(p)
	}
	ps.sampleIndex = sampleIndex % ps.samplesPerPixel
	ps.current1D, ps.current2D = 0, 0
	ps.fallback.SetSequenceIndex(pixelSeed(p, ps.seed))
	ps.fallback.Advance(int64(sampleIndex) * 65536)
}

func (ps *pixelSamples) Get1D() float64 {
	if ps.current1D < len(ps.samples1D) {
		v := ps.samples1D[ps.current1D][ps.sampleIndex]
		ps.current1D++
		return v
	}
	return ps.fallback.Float64()
}

func (ps *pixelSamples) Get2D() core.Vec2 {
	if ps.current2D < len(ps.samples2D) {
		v := ps.samples2D[ps.current2D][ps.sampleIndex]
		ps.current2D++
		return v
	}
	return core.NewVec2(ps.fallback.Float64(), ps.fallback.Float64())
}

func (ps *pixelSamples) Get3D() core.Vec3 {
	return core.NewVec3(ps.Get1D(), ps.Get1D(), ps.Get1D())
}
