package scattering

import (
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// HenyeyGreenstein evaluates the Henyey-Greenstein phase function for the
// cosine between wo and wi
func HenyeyGreenstein(cosTheta, g float64) float64 {
	denom := 1 + g*g + 2*g*cosTheta
	return core.Inv4Pi * (1 - g*g) / (denom * core.SafeSqrt(denom))
}

// SampleHenyeyGreenstein samples wi around wo and returns it with its density
func SampleHenyeyGreenstein(wo core.Vec3, g float64, u core.Vec2) (core.Vec3, float64) {
	var cosTheta float64
	if math.Abs(g) < 1e-3 {
		cosTheta = 1 - 2*u.X
	} else {
		cosTheta = -1 / (2 * g) * (1 + g*g - core.Sqr((1-g*g)/(1+g-2*g*u.X)))
	}
	cosTheta = core.Clamp(cosTheta, -1, 1)

	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)
	phi := 2 * math.Pi * u.Y
	wi := core.FrameFromZ(wo).FromLocal(core.SphericalDirection(sinTheta, cosTheta, phi))
	return wi, HenyeyGreenstein(cosTheta, g)
}

// HGPhaseFunction is a Henyey-Greenstein phase function with fixed asymmetry g
type HGPhaseFunction struct {
	G float64
}

// P evaluates the phase function
func (h HGPhaseFunction) P(wo, wi core.Vec3) float64 {
	return HenyeyGreenstein(wo.Dot(wi), h.G)
}

// SampleP samples wi and returns it with its density, which equals the phase value
func (h HGPhaseFunction) SampleP(wo core.Vec3, u core.Vec2) (core.Vec3, float64, bool) {
	wi, pdf := SampleHenyeyGreenstein(wo, h.G, u)
	return wi, pdf, pdf > 0
}

// PDF returns the sampling density of wi
func (h HGPhaseFunction) PDF(wo, wi core.Vec3) float64 {
	return h.P(wo, wi)
}
