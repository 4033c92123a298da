package bxdf

import (
	"fmt"

	"github.com/df07/go-scatter/pkg/core"
)

// DiffuseBxDF scatters with reflectance R and transmittance T. A non-zero
// sigma (in degrees) switches reflection to the Oren-Nayar model.
type DiffuseBxDF struct {
	R, T core.Spectrum
	A, B float64
}

// NewDiffuseBxDF creates a diffuse scatterer with Oren-Nayar roughness sigma
func NewDiffuseBxDF(r, t core.Spectrum, sigma float64) DiffuseBxDF {
	sigma = core.Radians(sigma)
	sigma2 := sigma * sigma
	return DiffuseBxDF{
		R: r,
		T: t,
		A: 1 - sigma2/(2*(sigma2+0.33)),
		B: 0.45 * sigma2 / (sigma2 + 0.09),
	}
}

func (d *DiffuseBxDF) F(wo, wi core.Vec3, mode TransportMode) core.Spectrum {
	if !core.SameHemisphere(wo, wi) {
		return d.T.Scale(core.InvPi)
	}
	if d.B == 0 {
		return d.R.Scale(core.InvPi)
	}

	// Oren-Nayar
	sinThetaI, sinThetaO := core.SinTheta(wi), core.SinTheta(wo)
	maxCos := 0.0
	if sinThetaI > 1e-4 && sinThetaO > 1e-4 {
		dCos := core.CosPhi(wi)*core.CosPhi(wo) + core.SinPhi(wi)*core.SinPhi(wo)
		maxCos = max(0, dCos)
	}
	var sinAlpha, tanBeta float64
	if core.AbsCosTheta(wi) > core.AbsCosTheta(wo) {
		sinAlpha = sinThetaO
		tanBeta = sinThetaI / core.AbsCosTheta(wi)
	} else {
		sinAlpha = sinThetaI
		tanBeta = sinThetaO / core.AbsCosTheta(wo)
	}
	return d.R.Scale(core.InvPi * (d.A + d.B*maxCos*sinAlpha*tanBeta))
}

func (d *DiffuseBxDF) SampleF(wo core.Vec3, uc float64, u core.Vec2, mode TransportMode, sampleFlags ReflTransFlags) (BSDFSample, bool) {
	pr, pt := d.lobeWeights(sampleFlags)
	if pr == 0 && pt == 0 {
		return BSDFSample{}, false
	}

	wi := core.SampleCosineHemisphere(u)
	if uc < pr/(pr+pt) {
		if wo.Z < 0 {
			wi.Z = -wi.Z
		}
		pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi)) * pr / (pr + pt)
		return newSample(d.F(wo, wi, mode), wi, pdf, DiffuseReflection), true
	}
	if wo.Z > 0 {
		wi.Z = -wi.Z
	}
	pdf := core.CosineHemispherePDF(core.AbsCosTheta(wi)) * pt / (pr + pt)
	return newSample(d.F(wo, wi, mode), wi, pdf, DiffuseTransmission), true
}

func (d *DiffuseBxDF) PDF(wo, wi core.Vec3, mode TransportMode, sampleFlags ReflTransFlags) float64 {
	pr, pt := d.lobeWeights(sampleFlags)
	if pr == 0 && pt == 0 {
		return 0
	}
	if core.SameHemisphere(wo, wi) {
		return pr / (pr + pt) * core.CosineHemispherePDF(core.AbsCosTheta(wi))
	}
	return pt / (pr + pt) * core.CosineHemispherePDF(core.AbsCosTheta(wi))
}

func (d *DiffuseBxDF) lobeWeights(sampleFlags ReflTransFlags) (float64, float64) {
	return maskWeights(d.R.MaxComponent(), d.T.MaxComponent(), sampleFlags)
}

func (d *DiffuseBxDF) Flags() Flags {
	flags := FlagUnset
	if d.R.NonZero() {
		flags |= DiffuseReflection
	}
	if d.T.NonZero() {
		flags |= DiffuseTransmission
	}
	return flags
}

// Regularize returns d unchanged; diffuse scattering has no roughness to raise
func (d *DiffuseBxDF) Regularize(*ScratchBuffer) *DiffuseBxDF { return d }

func (d *DiffuseBxDF) Handle() Handle { return newHandle(TagDiffuse, d) }

func (d *DiffuseBxDF) String() string {
	return fmt.Sprintf("[ DiffuseBxDF R: %v T: %v A: %g B: %g ]", d.R, d.T, d.A, d.B)
}
