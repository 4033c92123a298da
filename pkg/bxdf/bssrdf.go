package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/scattering"
)

// BSSRDFAdapter is the normalized Fresnel lobe through which light exits a
// subsurface-scattering medium with relative index of refraction Eta
type BSSRDFAdapter struct {
	Eta float64
}

func NewBSSRDFAdapter(eta float64) BSSRDFAdapter {
	return BSSRDFAdapter{Eta: eta}
}

func (b *BSSRDFAdapter) Flags() Flags { return DiffuseReflection }

func (b *BSSRDFAdapter) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return core.Spectrum{}
	}
	// Normalize so the cosine-weighted integral over the hemisphere is one
	c := 1 - 2*scattering.FresnelMoment1(1/b.Eta)
	f := (1 - scattering.FrDielectric(core.CosTheta(wi), b.Eta)) / (c * math.Pi)
	if mode == Radiance {
		f *= b.Eta * b.Eta
	}
	return core.NewSpectrum(f)
}

func (b *BSSRDFAdapter) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if sampleFlags&Reflection == 0 {
		return BSDFSample{}, false
	}
	wi := core.SampleCosineHemisphere(u)
	if wo.Z < 0 {
		wi.Z = -wi.Z
	}
	pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi))
	return newSample(b.F(wo, wi, mode), wi, pdf, DiffuseReflection), true
}

func (b *BSSRDFAdapter) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&Reflection == 0 || !core.SameHemisphere(wo, wi) {
		return 0
	}
	return core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (b *BSSRDFAdapter) Regularize(*ScratchBuffer) *BSSRDFAdapter { return b }

func (b *BSSRDFAdapter) Handle() Handle { return newHandle(TagBSSRDFAdapter, b) }

func (b *BSSRDFAdapter) String() string {
	return fmt.Sprintf("[ BSSRDFAdapter eta: %g ]", b.Eta)
}
