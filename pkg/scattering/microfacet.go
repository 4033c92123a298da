package scattering

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// TrowbridgeReitz is the anisotropic Trowbridge-Reitz (GGX) microfacet distribution
type TrowbridgeReitz struct {
	alphaX, alphaY float64
}

// NewTrowbridgeReitz creates a distribution, flooring both alphas at 1e-4
func NewTrowbridgeReitz(alphaX, alphaY float64) TrowbridgeReitz {
	return TrowbridgeReitz{alphaX: max(1e-4, alphaX), alphaY: max(1e-4, alphaY)}
}

// RoughnessToAlpha maps perceptual roughness to alpha
func RoughnessToAlpha(roughness float64) float64 {
	return math.Sqrt(roughness)
}

// Alpha returns the roughness along x and y
func (d TrowbridgeReitz) Alpha() (float64, float64) {
	return d.alphaX, d.alphaY
}

// D is the microfacet normal distribution
func (d TrowbridgeReitz) D(wm core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(wm)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	cos4Theta := core.Sqr(core.Cos2Theta(wm))
	e := (core.Cos2Phi(wm)/core.Sqr(d.alphaX) + core.Sin2Phi(wm)/core.Sqr(d.alphaY)) * tan2Theta
	return 1 / (math.Pi * d.alphaX * d.alphaY * cos4Theta * core.Sqr(1+e))
}

// DVisible is the distribution of normals visible from w
func (d TrowbridgeReitz) DVisible(w, wm core.Vec3) float64 {
	return d.D(wm) * d.G1(w) * max(0, w.Dot(wm)) / core.AbsCosTheta(w)
}

// Lambda is the auxiliary masking function
func (d TrowbridgeReitz) Lambda(w core.Vec3) float64 {
	tan2Theta := core.Tan2Theta(w)
	if math.IsInf(tan2Theta, 0) || math.IsNaN(tan2Theta) {
		return 0
	}
	alpha2 := core.Cos2Phi(w)*core.Sqr(d.alphaX) + core.Sin2Phi(w)*core.Sqr(d.alphaY)
	return (math.Sqrt(1+alpha2*tan2Theta) - 1) / 2
}

// G1 is the fraction of microfacets visible from w
func (d TrowbridgeReitz) G1(w core.Vec3) float64 {
	return 1 / (1 + d.Lambda(w))
}

// G is the joint masking-shadowing term for wo and wi
func (d TrowbridgeReitz) G(wo, wi core.Vec3) float64 {
	return 1 / (1 + d.Lambda(wo) + d.Lambda(wi))
}

// PDF is the density of SampleWm producing wm for outgoing direction w
func (d TrowbridgeReitz) PDF(w, wm core.Vec3) float64 {
	return d.D(wm) * d.G1(w) * w.AbsDot(wm) / core.AbsCosTheta(w)
}

// SampleWm samples a microfacet normal visible from wo. Directions below the
// surface are handled by sampling from -wo and flipping the result.
func (d TrowbridgeReitz) SampleWm(wo core.Vec3, u core.Vec2) core.Vec3 {
	flip := wo.Z < 0
	if flip {
		wo = wo.Negate()
	}
	wm := d.sampleVisibleArea(wo, u)
	if flip {
		wm = wm.Negate()
	}
	return wm
}

func (d TrowbridgeReitz) sampleVisibleArea(w core.Vec3, u core.Vec2) core.Vec3 {
	// Transform w to hemispherical configuration
	wh := core.NewVec3(d.alphaX*w.X, d.alphaY*w.Y, w.Z).Normalize()

	// Find orthonormal basis for visible normal sampling
	t1 := core.NewVec3(1, 0, 0)
	if wh.Z < 0.99999 {
		t1 = core.NewVec3(0, 0, 1).Cross(wh).Normalize()
	}
	t2 := wh.Cross(t1)

	// Generate uniformly distributed points on the unit disk, warped to the
	// visible projected area
	p := core.SampleUniformDiskPolar(u)
	h := math.Sqrt(1 - p.X*p.X)
	p.Y = core.Lerp((1+wh.Z)/2, h, p.Y)

	// Reproject to hemisphere and transform normal to ellipsoid configuration
	pz := core.SafeSqrt(1 - p.LengthSquared())
	nh := t1.Multiply(p.X).Add(t2.Multiply(p.Y)).Add(wh.Multiply(pz))
	return core.NewVec3(d.alphaX*nh.X, d.alphaY*nh.Y, max(1e-6, nh.Z)).Normalize()
}

// SampleWmFull samples a microfacet normal from D(wm)|cosθm| without
// accounting for visibility
func (d TrowbridgeReitz) SampleWmFull(u core.Vec2) core.Vec3 {
	var tan2Theta, phi float64
	if d.alphaX == d.alphaY {
		tan2Theta = d.alphaX * d.alphaX * u.X / (1 - u.X)
		phi = 2 * math.Pi * u.Y
	} else {
		phi = math.Atan(d.alphaY / d.alphaX * math.Tan(2*math.Pi*u.Y+0.5*math.Pi))
		if u.Y > 0.5 {
			phi += math.Pi
		}
		sinPhi, cosPhi := math.Sincos(phi)
		alpha2 := 1 / (core.Sqr(cosPhi/d.alphaX) + core.Sqr(sinPhi/d.alphaY))
		tan2Theta = alpha2 * u.X / (1 - u.X)
	}
	cosTheta := 1 / math.Sqrt(1+tan2Theta)
	sinTheta := core.SafeSqrt(1 - cosTheta*cosTheta)
	return core.SphericalDirection(sinTheta, cosTheta, phi)
}

// PDFFull is the density of SampleWmFull producing wm
func (d TrowbridgeReitz) PDFFull(wm core.Vec3) float64 {
	return d.D(wm) * core.AbsCosTheta(wm)
}

// EffectivelySpecular reports whether the surface is smooth enough to be
// treated as a perfect mirror
func (d TrowbridgeReitz) EffectivelySpecular() bool {
	return min(d.alphaX, d.alphaY) < 1e-3
}

// Regularize returns the distribution with both alphas raised to at least 0.3
func (d TrowbridgeReitz) Regularize() TrowbridgeReitz {
	if d.alphaX >= 0.3 && d.alphaY >= 0.3 {
		return d
	}
	return NewTrowbridgeReitz(max(d.alphaX, 0.3), max(d.alphaY, 0.3))
}

func (d TrowbridgeReitz) String() string {
	return fmt.Sprintf("[ TrowbridgeReitz alphaX: %g alphaY: %g ]", d.alphaX, d.alphaY)
}
