package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/containers"
	"github.com/df07/go-scatter/pkg/core"
)

// MeasuredBRDF is an isotropic reflectance table over the Rusinkiewicz
// angles: half-vector elevation thetaH, difference elevation thetaD and
// difference azimuth phiD. thetaH is stored with a square-root warp so the
// specular peak gets more resolution.
type MeasuredBRDF struct {
	Name     string
	channels [core.NSpectrumSamples]*containers.SampledGrid[float64]
}

// NewMeasuredBRDF wraps one table per spectral channel, each holding
// nThetaH*nThetaD*nPhiD values with thetaH varying fastest
func NewMeasuredBRDF(name string, nThetaH, nThetaD, nPhiD int, values [core.NSpectrumSamples][]float64) *MeasuredBRDF {
	m := &MeasuredBRDF{Name: name}
	for c := range values {
		m.channels[c] = containers.NewSampledGrid(values[c], nThetaH, nThetaD, nPhiD)
	}
	return m
}

// TabulateMeasuredBRDF fills a table by evaluating fn at every cell center
func TabulateMeasuredBRDF(name string, nThetaH, nThetaD, nPhiD int, fn func(thetaH, thetaD, phiD float64) core.Spectrum) *MeasuredBRDF {
	var values [core.NSpectrumSamples][]float64
	for c := range values {
		values[c] = make([]float64, nThetaH*nThetaD*nPhiD)
	}
	for k := 0; k < nPhiD; k++ {
		phiD := (float64(k) + 0.5) / float64(nPhiD) * math.Pi
		for j := 0; j < nThetaD; j++ {
			thetaD := (float64(j) + 0.5) / float64(nThetaD) * core.PiOver2
			for i := 0; i < nThetaH; i++ {
				thetaH := core.Sqr((float64(i)+0.5)/float64(nThetaH)) * core.PiOver2
				f := fn(thetaH, thetaD, phiD)
				for c := range values {
					values[c][(k*nThetaD+j)*nThetaH+i] = f[c]
				}
			}
		}
	}
	return NewMeasuredBRDF(name, nThetaH, nThetaD, nPhiD, values)
}

// RusinkiewiczAngles converts a pair of upper-hemisphere directions to
// (thetaH, thetaD, phiD) with phiD folded into [0, π)
func RusinkiewiczAngles(wo, wi core.Vec3) (thetaH, thetaD, phiD float64) {
	wh := wo.Add(wi).Normalize()
	thetaH = core.SafeACos(wh.Z)
	phiH := math.Atan2(wh.Y, wh.X)

	// Rotate wi into the frame where the half vector is +Z
	sinPhi, cosPhi := math.Sincos(-phiH)
	d := core.NewVec3(wi.X*cosPhi-wi.Y*sinPhi, wi.X*sinPhi+wi.Y*cosPhi, wi.Z)
	sinTheta, cosTheta := math.Sincos(-thetaH)
	d = core.NewVec3(d.X*cosTheta+d.Z*sinTheta, d.Y, -d.X*sinTheta+d.Z*cosTheta)

	thetaD = core.SafeACos(d.Z)
	phiD = math.Atan2(d.Y, d.X)
	if phiD < 0 {
		phiD += math.Pi
	}
	return thetaH, thetaD, phiD
}

// Evaluate looks up the reflectance for two upper-hemisphere directions
func (m *MeasuredBRDF) Evaluate(wo, wi core.Vec3) core.Spectrum {
	thetaH, thetaD, phiD := RusinkiewiczAngles(wo, wi)
	p := core.NewVec3(math.Sqrt(thetaH/core.PiOver2), thetaD/core.PiOver2, phiD/math.Pi)

	var f core.Spectrum
	for c, grid := range m.channels {
		nx, ny, nz := grid.Resolution()
		// Keep lookups between the outermost cell centers so edges do not
		// fade towards zero
		q := core.NewVec3(clampToCenters(p.X, nx), clampToCenters(p.Y, ny), clampToCenters(p.Z, nz))
		f[c] = max(0, grid.Lookup(q))
	}
	return f
}

func clampToCenters(x float64, n int) float64 {
	half := 0.5 / float64(n)
	return core.Clamp(x, half, 1-half)
}

// MeasuredBxDF reflects according to a tabulated MeasuredBRDF
type MeasuredBxDF struct {
	BRDF *MeasuredBRDF
}

func NewMeasuredBxDF(brdf *MeasuredBRDF) MeasuredBxDF {
	return MeasuredBxDF{BRDF: brdf}
}

func (b *MeasuredBxDF) Flags() Flags { return GlossyReflection }

func (b *MeasuredBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	if wo.Z < 0 {
		wo, wi = wo.Negate(), wi.Negate()
	}
	return b.BRDF.Evaluate(wo, wi)
}

func (b *MeasuredBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if sampleFlags&Reflection == 0 {
		return BSDFSample{}, false
	}
	wi := core.SampleCosineHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi))
	return newSample(b.F(wo, wi, mode), wi, pdf, GlossyReflection), true
}

func (b *MeasuredBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&Reflection == 0 || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (b *MeasuredBxDF) Regularize(*ScratchBuffer) *MeasuredBxDF { return b }

func (b *MeasuredBxDF) Handle() Handle { return newHandle(TagMeasured, b) }

func (b *MeasuredBxDF) String() string {
	return fmt.Sprintf("[ MeasuredBxDF brdf: %s ]", b.BRDF.Name)
}
