package bxdf

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
	"github.com/df07/go-scatter/pkg/scattering"
)

var normalZ = core.NewVec3(0, 0, 1)

// DielectricBxDF is an interface between two dielectrics with relative index
// of refraction Eta, either perfectly smooth or rough
type DielectricBxDF struct {
	Eta       float64
	MfDistrib scattering.TrowbridgeReitz
}

func NewDielectricBxDF(eta float64, mfDistrib scattering.TrowbridgeReitz) DielectricBxDF {
	return DielectricBxDF{Eta: eta, MfDistrib: mfDistrib}
}

func (d *DielectricBxDF) Flags() Flags {
	flags := FlagReflection | FlagTransmission
	if d.Eta == 1 {
		flags = FlagTransmission
	}
	if d.MfDistrib.EffectivelySpecular() {
		return flags | FlagSpecular
	}
	return flags | FlagGlossy
}

func (d *DielectricBxDF) smooth() bool {
	return d.Eta == 1 || d.MfDistrib.EffectivelySpecular()
}

func (d *DielectricBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	if d.smooth() {
		r := scattering.FrDielectric(core.CosTheta(wo), d.Eta)
		pr, pt := maskWeights(r, 1-r, sampleFlags)
		if pr == 0 && pt == 0 {
			return BSDFSample{}, false
		}

		if uc < pr/(pr+pt) {
			wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
			fr := core.NewSpectrum(r / core.AbsCosTheta(wi))
			return newSample(fr, wi, pr/(pr+pt), SpecularReflection), true
		}

		wi, etap, ok := scattering.Refract(wo, normalZ, d.Eta)
		if !ok {
			return BSDFSample{}, false
		}
		ft := (1 - r) / core.AbsCosTheta(wi)
		if mode == Radiance {
			ft /= etap * etap
		}
		s := newSample(core.NewSpectrum(ft), wi, pt/(pr+pt), SpecularTransmission)
		s.Eta = etap
		return s, true
	}

	// Sample the rough interface through a visible microfacet normal
	wm := d.MfDistrib.SampleWm(wo, u).FaceForward(normalZ)
	r := scattering.FrDielectric(wo.Dot(wm), d.Eta)
	pr, pt := maskWeights(r, 1-r, sampleFlags)
	if pr == 0 && pt == 0 {
		return BSDFSample{}, false
	}

	if uc < pr/(pr+pt) {
		wi := scattering.Reflect(wo, wm)
		if !core.SameHemisphere(wo, wi) {
			return BSDFSample{}, false
		}
		pdf := d.MfDistrib.PDF(wo, wm) / (4 * wo.AbsDot(wm)) * pr / (pr + pt)
		f := d.MfDistrib.D(wm) * d.MfDistrib.G(wo, wi) * r / (4 * core.CosTheta(wi) * core.CosTheta(wo))
		return newSample(core.NewSpectrum(f), wi, pdf, GlossyReflection), true
	}

	wi, etap, ok := scattering.Refract(wo, wm, d.Eta)
	if !ok || core.SameHemisphere(wo, wi) || wi.Z == 0 {
		return BSDFSample{}, false
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etap)
	dwmdwi := wi.AbsDot(wm) / denom
	pdf := d.MfDistrib.PDF(wo, wm) * dwmdwi * pt / (pr + pt)
	ft := (1 - r) * d.MfDistrib.D(wm) * d.MfDistrib.G(wo, wi) *
		math.Abs(wi.Dot(wm)*wo.Dot(wm)/(core.CosTheta(wi)*core.CosTheta(wo)*denom))
	if mode == Radiance {
		ft /= etap * etap
	}
	s := newSample(core.NewSpectrum(ft), wi, pdf, GlossyTransmission)
	s.Eta = etap
	return s, true
}

// halfVector returns the generalized half vector of wo and wi, oriented
// towards +Z, with the relative index of refraction along the path. ok is
// false for degenerate or back-facing configurations.
func halfVector(wo, wi core.Vec3, eta float64) (wm core.Vec3, etap float64, ok bool) {
	cosThetaO, cosThetaI := core.CosTheta(wo), core.CosTheta(wi)
	etap = 1
	if cosThetaI*cosThetaO <= 0 {
		if cosThetaO > 0 {
			etap = eta
		} else {
			etap = 1 / eta
		}
	}
	wm = wi.Multiply(etap).Add(wo)
	if cosThetaI == 0 || cosThetaO == 0 || wm.LengthSquared() == 0 {
		return core.Vec3{}, 0, false
	}
	wm = wm.Normalize().FaceForward(normalZ)

	// Discard microfacets that face away from either direction
	if wm.Dot(wi)*cosThetaI < 0 || wm.Dot(wo)*cosThetaO < 0 {
		return core.Vec3{}, 0, false
	}
	return wm, etap, true
}

func (d *DielectricBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if d.smooth() {
		return core.Spectrum{}
	}
	wm, etap, ok := halfVector(wo, wi, d.Eta)
	if !ok {
		return core.Spectrum{}
	}

	cosThetaO, cosThetaI := core.CosTheta(wo), core.CosTheta(wi)
	fr := scattering.FrDielectric(wo.Dot(wm), d.Eta)
	if cosThetaI*cosThetaO > 0 {
		return core.NewSpectrum(d.MfDistrib.D(wm) * d.MfDistrib.G(wo, wi) * fr / math.Abs(4*cosThetaI*cosThetaO))
	}

	denom := core.Sqr(wi.Dot(wm)+wo.Dot(wm)/etap) * cosThetaI * cosThetaO
	ft := d.MfDistrib.D(wm) * (1 - fr) * d.MfDistrib.G(wo, wi) * math.Abs(wi.Dot(wm)*wo.Dot(wm)/denom)
	if mode == Radiance {
		ft /= etap * etap
	}
	return core.NewSpectrum(ft)
}

func (d *DielectricBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	if d.smooth() {
		return 0
	}
	wm, etap, ok := halfVector(wo, wi, d.Eta)
	if !ok {
		return 0
	}

	r := scattering.FrDielectric(wo.Dot(wm), d.Eta)
	pr, pt := maskWeights(r, 1-r, sampleFlags)
	if pr == 0 && pt == 0 {
		return 0
	}
	if core.SameHemisphere(wo, wi) {
		return d.MfDistrib.PDF(wo, wm) / (4 * wo.AbsDot(wm)) * pr / (pr + pt)
	}
	denom := core.Sqr(wi.Dot(wm) + wo.Dot(wm)/etap)
	dwmdwi := wi.AbsDot(wm) / denom
	return d.MfDistrib.PDF(wo, wm) * dwmdwi * pt / (pr + pt)
}

// Regularize returns a copy with the roughness raised enough to avoid
// near-singular densities
func (d *DielectricBxDF) Regularize(s *ScratchBuffer) *DielectricBxDF {
	return s.dielectric.New(DielectricBxDF{Eta: d.Eta, MfDistrib: d.MfDistrib.Regularize()})
}

func (d *DielectricBxDF) Handle() Handle { return newHandle(TagDielectricInterface, d) }

func (d *DielectricBxDF) String() string {
	return fmt.Sprintf("[ DielectricBxDF eta: %g mfDistrib: %v ]", d.Eta, d.MfDistrib)
}

// maskWeights zeroes the reflection and transmission weights excluded by sampleFlags
func maskWeights(pr, pt float64, sampleFlags ReflTransFlags) (float64, float64) {
	if sampleFlags&Reflection == 0 {
		pr = 0
	}
	if sampleFlags&Transmission == 0 {
		pt = 0
	}
	return pr, pt
}

// ThinDielectricBxDF models a thin slab with parallel smooth faces, such as
// a window pane, accounting for inter-reflection inside the slab
type ThinDielectricBxDF struct {
	Eta float64
}

func NewThinDielectricBxDF(eta float64) ThinDielectricBxDF {
	return ThinDielectricBxDF{Eta: eta}
}

func (d *ThinDielectricBxDF) Flags() Flags {
	return FlagReflection | FlagTransmission | FlagSpecular
}

func (d *ThinDielectricBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	return core.Spectrum{}
}

func (d *ThinDielectricBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	return 0
}

func (d *ThinDielectricBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	r := scattering.FrDielectric(core.AbsCosTheta(wo), d.Eta)
	t := 1 - r
	// Sum the geometric series of internal bounces
	if r < 1 {
		r += t * t * r / (1 - r*r)
		t = 1 - r
	}

	pr, pt := maskWeights(r, t, sampleFlags)
	if pr == 0 && pt == 0 {
		return BSDFSample{}, false
	}
	if uc < pr/(pr+pt) {
		wi := core.NewVec3(-wo.X, -wo.Y, wo.Z)
		fr := core.NewSpectrum(r / core.AbsCosTheta(wi))
		return newSample(fr, wi, pr/(pr+pt), SpecularReflection), true
	}
	wi := wo.Negate()
	ft := core.NewSpectrum(t / core.AbsCosTheta(wi))
	return newSample(ft, wi, pt/(pr+pt), SpecularTransmission), true
}

func (d *ThinDielectricBxDF) Regularize(*ScratchBuffer) *ThinDielectricBxDF { return d }

func (d *ThinDielectricBxDF) Handle() Handle { return newHandle(TagThinDielectric, d) }

func (d *ThinDielectricBxDF) String() string {
	return fmt.Sprintf("[ ThinDielectricBxDF eta: %g ]", d.Eta)
}
