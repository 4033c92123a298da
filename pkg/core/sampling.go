package core

import (
	"math"
)

// Sampler provides sample values in [0, 1) for Monte Carlo estimators.
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
	Get3D() Vec3
}

// SampleUniformDiskConcentric maps the unit square to the unit disk with
// Shirley's concentric mapping, avoiding rejection sampling
func SampleUniformDiskConcentric(u Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	uOffset := NewVec2(2*u.X-1, 2*u.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return Vec2{}
	}

	// Apply concentric mapping to point
	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = PiOver4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = PiOver2 - PiOver4*(uOffset.X/uOffset.Y)
	}
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SampleUniformDiskPolar maps the unit square to the unit disk using polar coordinates
func SampleUniformDiskPolar(u Vec2) Vec2 {
	r := math.Sqrt(u.X)
	theta := 2 * math.Pi * u.Y
	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// SampleCosineHemisphere generates a cosine-weighted direction in the +Z hemisphere
func SampleCosineHemisphere(u Vec2) Vec3 {
	d := SampleUniformDiskConcentric(u)
	z := SafeSqrt(1 - d.X*d.X - d.Y*d.Y)
	return NewVec3(d.X, d.Y, z)
}

// CosineHemispherePDF is the solid-angle density of SampleCosineHemisphere
func CosineHemispherePDF(cosTheta float64) float64 {
	return cosTheta * InvPi
}

// SampleUniformHemisphere generates a uniformly distributed direction in the +Z hemisphere
func SampleUniformHemisphere(u Vec2) Vec3 {
	z := u.X
	r := SafeSqrt(1 - z*z)
	phi := 2 * math.Pi * u.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformHemispherePDF is the solid-angle density of SampleUniformHemisphere
func UniformHemispherePDF() float64 {
	return Inv2Pi
}

// SampleUniformSphere generates a uniform direction on the unit sphere
func SampleUniformSphere(u Vec2) Vec3 {
	z := 1 - 2*u.X // z ∈ [-1, 1]
	r := SafeSqrt(1 - z*z)
	phi := 2 * math.Pi * u.Y
	return NewVec3(r*math.Cos(phi), r*math.Sin(phi), z)
}

// UniformSpherePDF is the solid-angle density of SampleUniformSphere
func UniformSpherePDF() float64 {
	return Inv4Pi
}

// SampleUniformCone samples a direction uniformly within a cone around +Z
func SampleUniformCone(u Vec2, cosThetaMax float64) Vec3 {
	cosTheta := (1 - u.X) + u.X*cosThetaMax
	sinTheta := SafeSqrt(1 - cosTheta*cosTheta)
	phi := 2 * math.Pi * u.Y
	return SphericalDirection(sinTheta, cosTheta, phi)
}

// UniformConePDF is the solid-angle density of SampleUniformCone
func UniformConePDF(cosThetaMax float64) float64 {
	return 1 / (2 * math.Pi * (1 - cosThetaMax))
}

// SampleExponential samples the density a*exp(-a*x) on [0, inf)
func SampleExponential(u, a float64) float64 {
	return -math.Log(1-u) / a
}

// TrimmedLogistic evaluates the logistic density with scale s restricted to [a, b]
func TrimmedLogistic(x, s, a, b float64) float64 {
	return logistic(x, s) / (logisticCDF(b, s) - logisticCDF(a, s))
}

// SampleTrimmedLogistic samples the logistic density with scale s restricted to [a, b]
func SampleTrimmedLogistic(u, s, a, b float64) float64 {
	k := logisticCDF(b, s) - logisticCDF(a, s)
	x := -s * math.Log(1/(u*k+logisticCDF(a, s))-1)
	return Clamp(x, a, b)
}

func logistic(x, s float64) float64 {
	x = math.Abs(x)
	return math.Exp(-x/s) / (s * Sqr(1+math.Exp(-x/s)))
}

func logisticCDF(x, s float64) float64 {
	return 1 / (1 + math.Exp(-x/s))
}
