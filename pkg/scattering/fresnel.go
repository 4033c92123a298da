// Package scattering implements the closed-form reflectance physics shared
// by the BxDFs: reflection and refraction, Fresnel equations, the
// Trowbridge-Reitz microfacet distribution and the Henyey-Greenstein phase
// function.
package scattering

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// Reflect mirrors wo about n
func Reflect(wo, n core.Vec3) core.Vec3 {
	return wo.Negate().Add(n.Multiply(2 * wo.Dot(n)))
}

// Refract computes the direction transmitted through an interface with
// normal n and relative index of refraction eta. When wi is on the opposite
// side of n the interface is flipped and etap is 1/eta. It returns false on
// total internal reflection.
func Refract(wi, n core.Vec3, eta float64) (wt core.Vec3, etap float64, ok bool) {
	cosThetaI := n.Dot(wi)
	if cosThetaI < 0 {
		eta = 1 / eta
		cosThetaI = -cosThetaI
		n = n.Negate()
	}

	// Compute cosθt using Snell's law
	sin2ThetaI := max(0, 1-core.Sqr(cosThetaI))
	sin2ThetaT := sin2ThetaI / core.Sqr(eta)
	if sin2ThetaT >= 1 {
		return core.Vec3{}, 0, false
	}
	cosThetaT := core.SafeSqrt(1 - sin2ThetaT)

	wt = wi.Negate().Divide(eta).Add(n.Multiply(cosThetaI/eta - cosThetaT))
	return wt, eta, true
}

// FrDielectric returns the unpolarized Fresnel reflectance of a dielectric
// interface. Negative cosθi means the ray arrives from inside, which swaps eta.
func FrDielectric(cosThetaI, eta float64) float64 {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	if cosThetaI <= 0 {
		eta = 1 / eta
		cosThetaI = -cosThetaI
	}

	sinThetaI := core.SafeSqrt(1 - cosThetaI*cosThetaI)
	sinThetaT := sinThetaI / eta
	// Total internal reflection
	if sinThetaT >= 1 {
		return 1
	}
	cosThetaT := core.SafeSqrt(1 - sinThetaT*sinThetaT)
	rParl := (eta*cosThetaI - cosThetaT) / (eta*cosThetaI + cosThetaT)
	rPerp := (cosThetaI - eta*cosThetaT) / (cosThetaI + eta*cosThetaT)
	return (rParl*rParl + rPerp*rPerp) / 2
}

// FrConductor returns the Fresnel reflectance of a conductor with complex
// index of refraction eta + ik
func FrConductor(cosThetaI float64, eta, k core.Spectrum) core.Spectrum {
	cosThetaI = core.Clamp(cosThetaI, -1, 1)
	cos2ThetaI := cosThetaI * cosThetaI
	sin2ThetaI := 1 - cos2ThetaI
	eta2 := eta.Mul(eta)
	etak2 := k.Mul(k)

	t0 := eta2.Subtract(etak2).Subtract(core.NewSpectrum(sin2ThetaI))
	a2plusb2 := t0.Mul(t0).Add(eta2.Mul(etak2).Scale(4)).Sqrt()
	t1 := a2plusb2.Add(core.NewSpectrum(cos2ThetaI))
	a := a2plusb2.Add(t0).Scale(0.5).Sqrt()
	t2 := a.Scale(2 * cosThetaI)
	rs := t1.Subtract(t2).Div(t1.Add(t2))

	t3 := a2plusb2.Scale(cos2ThetaI).Add(core.NewSpectrum(sin2ThetaI * sin2ThetaI))
	t4 := t2.Scale(sin2ThetaI)
	rp := rs.Mul(t3.Subtract(t4)).Div(t3.Add(t4))

	return rp.Add(rs).Scale(0.5)
}

// FresnelMoment1 approximates the first moment of FrDielectric over the hemisphere
func FresnelMoment1(eta float64) float64 {
	eta2 := eta * eta
	eta3, eta4, eta5 := eta2*eta, eta2*eta2, eta2*eta2*eta
	if eta < 1 {
		return 0.45966 - 1.73965*eta + 3.37668*eta2 - 3.904945*eta3 +
			2.49277*eta4 - 0.68441*eta5
	}
	return -4.61686 + 11.1136*eta - 10.4646*eta2 + 5.11455*eta3 -
		1.27198*eta4 + 0.12746*eta5
}

// FresnelMoment2 approximates the second moment of FrDielectric over the hemisphere
func FresnelMoment2(eta float64) float64 {
	eta2 := eta * eta
	eta3, eta4, eta5 := eta2*eta, eta2*eta2, eta2*eta2*eta
	if eta < 1 {
		return 0.27614 - 0.87350*eta + 1.12077*eta2 - 0.65095*eta3 +
			0.07883*eta4 + 0.04860*eta5
	}
	rEta := 1 / eta
	rEta2 := rEta * rEta
	rEta3 := rEta2 * rEta
	return -547.033 + 45.3087*rEta3 - 218.725*rEta2 + 458.843*rEta +
		404.557*eta - 189.519*eta2 + 54.9327*eta3 - 9.00603*eta4 +
		0.63942*eta5
}

// FresnelKind selects the Fresnel model held by a Fresnel value
type FresnelKind uint8

const (
	FresnelConductorKind FresnelKind = iota + 1
	FresnelDielectricKind
)

// Fresnel is a closed sum of the conductor and dielectric Fresnel models
type Fresnel struct {
	kind   FresnelKind
	eta, k core.Spectrum
	etaD   float64
	opaque bool
}

// NewFresnelConductor creates a conductor Fresnel term
func NewFresnelConductor(eta, k core.Spectrum) Fresnel {
	return Fresnel{kind: FresnelConductorKind, eta: eta, k: k}
}

// NewFresnelDielectric creates a dielectric Fresnel term. An opaque
// dielectric is only ever seen from outside, so the sign of cosθ is ignored.
func NewFresnelDielectric(eta float64, opaque bool) Fresnel {
	return Fresnel{kind: FresnelDielectricKind, etaD: eta, opaque: opaque}
}

// Kind returns the model held by f
func (f Fresnel) Kind() FresnelKind { return f.kind }

// Evaluate returns the reflectance at incident cosine cosThetaI
func (f Fresnel) Evaluate(cosThetaI float64) core.Spectrum {
	switch f.kind {
	case FresnelConductorKind:
		return FrConductor(math.Abs(cosThetaI), f.eta, f.k)
	case FresnelDielectricKind:
		if f.opaque {
			cosThetaI = math.Abs(cosThetaI)
		}
		return core.NewSpectrum(FrDielectric(cosThetaI, f.etaD))
	default:
		panic(fmt.Sprintf("scattering: unknown Fresnel kind %d", f.kind))
	}
}

func (f Fresnel) String() string {
	switch f.kind {
	case FresnelConductorKind:
		return fmt.Sprintf("[ FresnelConductor eta: %v k: %v ]", f.eta, f.k)
	case FresnelDielectricKind:
		return fmt.Sprintf("[ FresnelDielectric eta: %g opaque: %t ]", f.etaD, f.opaque)
	default:
		return "[ Fresnel (nil) ]"
	}
}
