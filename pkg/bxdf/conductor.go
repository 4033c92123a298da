package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/scattering"
)

// SpecularReflectionBxDF is a perfect mirror weighted by a Fresnel term
type SpecularReflectionBxDF struct {
	Fresnel scattering.Fresnel
}

func NewSpecularReflectionBxDF(fresnel scattering.Fresnel) SpecularReflectionBxDF {
	return SpecularReflectionBxDF{Fresnel: fresnel}
}

func (b *SpecularReflectionBxDF) Flags() Flags { return SpecularReflection }

func (b *SpecularReflectionBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	return core.Spectrum{}
}

func (b *SpecularReflectionBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	return 0
}

func (b *SpecularReflectionBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if sampleFlags&Reflection == 0 {
		return BSDFSample{}, false
	}
	wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
	f := b.Fresnel.Evaluate(core.CosTheta(wi)).Scale(1 / core.AbsCosTheta(wi))
	return newSample(f, wi, 1, SpecularReflection), true
}

// Regularize replaces the mirror with a glossy microfacet lobe of the
// smallest regularized roughness
func (b *SpecularReflectionBxDF) Regularize(s *ScratchBuffer) *MicrofacetReflectionBxDF {
	return s.microfacetReflection.New(MicrofacetReflectionBxDF{
		MfDistrib: scattering.NewTrowbridgeReitz(0, 0).Regularize(),
		Fresnel:   b.Fresnel,
	})
}

func (b *SpecularReflectionBxDF) Handle() Handle { return newHandle(TagSpecularReflection, b) }

func (b *SpecularReflectionBxDF) String() string {
	return fmt.Sprintf("[ SpecularReflectionBxDF fresnel: %v ]", b.Fresnel)
}

// MicrofacetReflectionBxDF is a rough reflector over a Trowbridge-Reitz
// distribution, typically with a conductor Fresnel term
type MicrofacetReflectionBxDF struct {
	MfDistrib scattering.TrowbridgeReitz
	Fresnel   scattering.Fresnel
}

func NewMicrofacetReflectionBxDF(mfDistrib scattering.TrowbridgeReitz, fresnel scattering.Fresnel) MicrofacetReflectionBxDF {
	return MicrofacetReflectionBxDF{MfDistrib: mfDistrib, Fresnel: fresnel}
}

// NewConductorBxDF creates a microfacet reflector for a conductor with
// complex index of refraction eta + ik
func NewConductorBxDF(mfDistrib scattering.TrowbridgeReitz, eta, k core.Spectrum) MicrofacetReflectionBxDF {
	return NewMicrofacetReflectionBxDF(mfDistrib, scattering.NewFresnelConductor(eta, k))
}

func (b *MicrofacetReflectionBxDF) Flags() Flags {
	if b.MfDistrib.EffectivelySpecular() {
		return SpecularReflection
	}
	return GlossyReflection
}

func (b *MicrofacetReflectionBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if sampleFlags&Reflection == 0 {
		return BSDFSample{}, false
	}
	if b.MfDistrib.EffectivelySpecular() {
		wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
		f := b.Fresnel.Evaluate(core.AbsCosTheta(wi)).Scale(1 / core.AbsCosTheta(wi))
		return newSample(f, wi, 1, SpecularReflection), true
	}

	if wo.Z == 0 {
		return BSDFSample{}, false
	}
	wm := b.MfDistrib.SampleWm(wo, u)
	wi := scattering.Reflect(wo, wm)
	if !core.SameHemisphere(wo, wi) {
		return BSDFSample{}, false
	}
	pdf := b.MfDistrib.PDF(wo, wm) / (4 * wo.AbsDot(wm))

	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	if cosThetaI == 0 || cosThetaO == 0 {
		return BSDFSample{}, false
	}
	fr := b.Fresnel.Evaluate(wo.AbsDot(wm))
	f := fr.Scale(b.MfDistrib.D(wm) * b.MfDistrib.G(wo, wi) / (4 * cosThetaI * cosThetaO))
	return newSample(f, wi, pdf, GlossyReflection), true
}

func (b *MicrofacetReflectionBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) || b.MfDistrib.EffectivelySpecular() {
		return core.Spectrum{}
	}
	cosThetaO, cosThetaI := core.AbsCosTheta(wo), core.AbsCosTheta(wi)
	if cosThetaI == 0 || cosThetaO == 0 {
		return core.Spectrum{}
	}
	wm := wi.Add(wo)
	if wm.LengthSquared() == 0 {
		return core.Spectrum{}
	}
	wm = wm.Normalize()

	fr := b.Fresnel.Evaluate(wo.AbsDot(wm))
	return fr.Scale(b.MfDistrib.D(wm) * b.MfDistrib.G(wo, wi) / (4 * cosThetaI * cosThetaO))
}

func (b *MicrofacetReflectionBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&Reflection == 0 || !core.SameHemisphere(wo, wi) || b.MfDistrib.EffectivelySpecular() {
		return 0
	}
	wm := wo.Add(wi)
	if wm.LengthSquared() == 0 {
		return 0
	}
	wm = wm.Normalize().FaceForward(normalZ)
	return b.MfDistrib.PDF(wo, wm) / (4 * wo.AbsDot(wm))
}

func (b *MicrofacetReflectionBxDF) Regularize(s *ScratchBuffer) *MicrofacetReflectionBxDF {
	return s.microfacetReflection.New(MicrofacetReflectionBxDF{
		MfDistrib: b.MfDistrib.Regularize(),
		Fresnel:   b.Fresnel,
	})
}

func (b *MicrofacetReflectionBxDF) Handle() Handle { return newHandle(TagMicrofacetReflection, b) }

func (b *MicrofacetReflectionBxDF) String() string {
	return fmt.Sprintf("[ MicrofacetReflectionBxDF mfDistrib: %v fresnel: %v ]", b.MfDistrib, b.Fresnel)
}

// MicrofacetTransmissionBxDF is the transmission-only lobe of a rough
// dielectric interface with relative index of refraction Eta
type MicrofacetTransmissionBxDF struct {
	MfDistrib scattering.TrowbridgeReitz
	Eta       float64
}

func NewMicrofacetTransmissionBxDF(mfDistrib scattering.TrowbridgeReitz, eta float64) MicrofacetTransmissionBxDF {
	return MicrofacetTransmissionBxDF{MfDistrib: mfDistrib, Eta: eta}
}

func (b *MicrofacetTransmissionBxDF) Flags() Flags {
	if b.MfDistrib.EffectivelySpecular() {
		return SpecularTransmission
	}
	return GlossyTransmission
}

func (b *MicrofacetTransmissionBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if sampleFlags&Transmission == 0 || wo.Z == 0 {
		return BSDFSample{}, false
	}
	if b.MfDistrib.EffectivelySpecular() {
		wi, etap, ok := scattering.Refract(wo, normalZ, b.Eta)
		if !ok {
			return BSDFSample{}, false
		}
		ft := (1 - scattering.FrDielectric(core.CosTheta(wo), b.Eta)) / core.AbsCosTheta(wi)
		if mode == Radiance {
			ft /= etap * etap
		}
		s := newSample(core.NewSpectrum(ft), wi, 1, SpecularTransmission)
		s.Eta = etap
		return s, true
	}

	wm := b.MfDistrib.SampleWm(wo, u).FaceForward(normalZ)
	wi, etap, ok := scattering.Refract(wo, wm, b.Eta)
	if !ok || core.SameHemisphere(wo, wi) || wi.Z == 0 {
		return BSDFSample{}, false
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etap)
	pdf := b.MfDistrib.PDF(wo, wm) * wi.AbsDot(wm) / denom
	s := newSample(b.F(wo, wi, mode), wi, pdf, GlossyTransmission)
	s.Eta = etap
	return s, true
}

func (b *MicrofacetTransmissionBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if core.SameHemisphere(wo, wi) || b.MfDistrib.EffectivelySpecular() {
		return core.Spectrum{}
	}
	wm, etap, ok := halfVector(wo, wi, b.Eta)
	if !ok {
		return core.Spectrum{}
	}
	fr := scattering.FrDielectric(wo.Dot(wm), b.Eta)
	denom := core.Sqr(wi.Dot(wm)+wo.Dot(wm)/etap) * core.CosTheta(wi) * core.CosTheta(wo)
	ft := b.MfDistrib.D(wm) * (1 - fr) * b.MfDistrib.G(wo, wi) * math.Abs(wi.Dot(wm)*wo.Dot(wm)/denom)
	if mode == Radiance {
		ft /= etap * etap
	}
	return core.NewSpectrum(ft)
}

func (b *MicrofacetTransmissionBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if sampleFlags&Transmission == 0 || core.SameHemisphere(wo, wi) || b.MfDistrib.EffectivelySpecular() {
		return 0
	}
	wm, etap, ok := halfVector(wo, wi, b.Eta)
	if !ok {
		return 0
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etap)
	return b.MfDistrib.PDF(wo, wm) * wi.AbsDot(wm) / denom
}

func (b *MicrofacetTransmissionBxDF) Regularize(s *ScratchBuffer) *MicrofacetTransmissionBxDF {
	return s.microfacetTransmission.New(MicrofacetTransmissionBxDF{
		MfDistrib: b.MfDistrib.Regularize(),
		Eta:       b.Eta,
	})
}

func (b *MicrofacetTransmissionBxDF) Handle() Handle {
	return newHandle(TagMicrofacetTransmission, b)
}

func (b *MicrofacetTransmissionBxDF) String() string {
	return fmt.Sprintf("[ MicrofacetTransmissionBxDF mfDistrib: %v eta: %g ]", b.MfDistrib, b.Eta)
}
