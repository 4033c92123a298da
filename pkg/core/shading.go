package core

import "math"

// Shading-frame trigonometry. Directions are expressed in a local frame where
// the surface normal is +Z.

func CosTheta(w Vec3) float64    { return w.Z }
func Cos2Theta(w Vec3) float64   { return w.Z * w.Z }
func AbsCosTheta(w Vec3) float64 { return math.Abs(w.Z) }
func Sin2Theta(w Vec3) float64   { return max(0, 1-Cos2Theta(w)) }
func SinTheta(w Vec3) float64    { return math.Sqrt(Sin2Theta(w)) }
func TanTheta(w Vec3) float64    { return SinTheta(w) / CosTheta(w) }
func Tan2Theta(w Vec3) float64   { return Sin2Theta(w) / Cos2Theta(w) }

// CosPhi returns the cosine of the azimuth of w, or 1 at the pole
func CosPhi(w Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 1
	}
	return Clamp(w.X/sinTheta, -1, 1)
}

// SinPhi returns the sine of the azimuth of w, or 0 at the pole
func SinPhi(w Vec3) float64 {
	sinTheta := SinTheta(w)
	if sinTheta == 0 {
		return 0
	}
	return Clamp(w.Y/sinTheta, -1, 1)
}

// SameHemisphere reports whether two local directions lie on the same side of the surface
func SameHemisphere(w, wp Vec3) bool {
	return w.Z*wp.Z > 0
}

// SphericalDirection builds a unit vector from spherical coordinates
func SphericalDirection(sinTheta, cosTheta, phi float64) Vec3 {
	return Vec3{
		X: Clamp(sinTheta, -1, 1) * math.Cos(phi),
		Y: Clamp(sinTheta, -1, 1) * math.Sin(phi),
		Z: Clamp(cosTheta, -1, 1),
	}
}

// Cos2Phi returns the squared cosine of the azimuth of w
func Cos2Phi(w Vec3) float64 { return Sqr(CosPhi(w)) }

// Sin2Phi returns the squared sine of the azimuth of w
func Sin2Phi(w Vec3) float64 { return Sqr(SinPhi(w)) }

// Frame is an orthonormal basis used to move directions into and out of a
// local shading space
type Frame struct {
	X, Y, Z Vec3
}

// FrameFromZ builds a frame whose Z axis is z
func FrameFromZ(z Vec3) Frame {
	x, y := z.CoordinateSystem()
	return Frame{X: x, Y: y, Z: z}
}

// ToLocal expresses v in frame coordinates
func (f Frame) ToLocal(v Vec3) Vec3 {
	return Vec3{v.Dot(f.X), v.Dot(f.Y), v.Dot(f.Z)}
}

// FromLocal converts frame coordinates back to the enclosing space
func (f Frame) FromLocal(v Vec3) Vec3 {
	return f.X.Multiply(v.X).Add(f.Y.Multiply(v.Y)).Add(f.Z.Multiply(v.Z))
}
