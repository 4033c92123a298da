package core

import (
	"fmt"
	"math"
)

// Mat4 is a row-major 4x4 matrix
type Mat4 [4][4]float64

// Identity returns the identity matrix
func Identity() Mat4 {
	return Mat4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Mul returns m * o
func (m Mat4) Mul(o Mat4) Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[i][0]*o[0][j] + m[i][1]*o[1][j] + m[i][2]*o[2][j] + m[i][3]*o[3][j]
		}
	}
	return r
}

// Transpose returns the transposed matrix
func (m Mat4) Transpose() Mat4 {
	var r Mat4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			r[i][j] = m[j][i]
		}
	}
	return r
}

// Inverse returns the inverse of m using Gauss-Jordan elimination with full
// pivoting. The boolean is false when m is singular.
func (m Mat4) Inverse() (Mat4, bool) {
	var indxc, indxr [4]int
	ipiv := [4]int{}
	minv := m
	for i := 0; i < 4; i++ {
		irow, icol := 0, 0
		big := 0.0
		for j := 0; j < 4; j++ {
			if ipiv[j] == 1 {
				continue
			}
			for k := 0; k < 4; k++ {
				if ipiv[k] == 0 {
					if a := math.Abs(minv[j][k]); a >= big {
						big = a
						irow, icol = j, k
					}
				} else if ipiv[k] > 1 {
					return Mat4{}, false
				}
			}
		}
		ipiv[icol]++
		if irow != icol {
			minv[irow], minv[icol] = minv[icol], minv[irow]
		}
		indxr[i], indxc[i] = irow, icol
		if minv[icol][icol] == 0 {
			return Mat4{}, false
		}

		pivinv := 1 / minv[icol][icol]
		minv[icol][icol] = 1
		for j := 0; j < 4; j++ {
			minv[icol][j] *= pivinv
		}
		for j := 0; j < 4; j++ {
			if j == icol {
				continue
			}
			save := minv[j][icol]
			minv[j][icol] = 0
			for k := 0; k < 4; k++ {
				minv[j][k] -= minv[icol][k] * save
			}
		}
	}
	for j := 3; j >= 0; j-- {
		if indxr[j] != indxc[j] {
			for k := 0; k < 4; k++ {
				minv[k][indxr[j]], minv[k][indxc[j]] = minv[k][indxc[j]], minv[k][indxr[j]]
			}
		}
	}
	return minv, true
}

// Transform is an affine or projective transformation with its cached inverse
type Transform struct {
	m, mInv Mat4
}

// NewTransform creates a transform from a matrix. It panics if m is singular.
func NewTransform(m Mat4) Transform {
	inv, ok := m.Inverse()
	if !ok {
		panic(fmt.Sprintf("singular transform matrix: %v", m))
	}
	return Transform{m: m, mInv: inv}
}

// IdentityTransform returns the identity transform
func IdentityTransform() Transform {
	return Transform{m: Identity(), mInv: Identity()}
}

// Translate returns a translation by delta
func Translate(delta Vec3) Transform {
	m := Mat4{
		{1, 0, 0, delta.X},
		{0, 1, 0, delta.Y},
		{0, 0, 1, delta.Z},
		{0, 0, 0, 1},
	}
	mInv := Mat4{
		{1, 0, 0, -delta.X},
		{0, 1, 0, -delta.Y},
		{0, 0, 1, -delta.Z},
		{0, 0, 0, 1},
	}
	return Transform{m: m, mInv: mInv}
}

// Scale returns a non-uniform scale
func Scale(x, y, z float64) Transform {
	m := Mat4{
		{x, 0, 0, 0},
		{0, y, 0, 0},
		{0, 0, z, 0},
		{0, 0, 0, 1},
	}
	mInv := Mat4{
		{1 / x, 0, 0, 0},
		{0, 1 / y, 0, 0},
		{0, 0, 1 / z, 0},
		{0, 0, 0, 1},
	}
	return Transform{m: m, mInv: mInv}
}

// RotateX returns a rotation of theta radians about the x axis
func RotateX(theta float64) Transform {
	s, c := math.Sincos(theta)
	m := Mat4{
		{1, 0, 0, 0},
		{0, c, -s, 0},
		{0, s, c, 0},
		{0, 0, 0, 1},
	}
	return Transform{m: m, mInv: m.Transpose()}
}

// RotateY returns a rotation of theta radians about the y axis
func RotateY(theta float64) Transform {
	s, c := math.Sincos(theta)
	m := Mat4{
		{c, 0, s, 0},
		{0, 1, 0, 0},
		{-s, 0, c, 0},
		{0, 0, 0, 1},
	}
	return Transform{m: m, mInv: m.Transpose()}
}

// RotateZ returns a rotation of theta radians about the z axis
func RotateZ(theta float64) Transform {
	s, c := math.Sincos(theta)
	m := Mat4{
		{c, -s, 0, 0},
		{s, c, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
	return Transform{m: m, mInv: m.Transpose()}
}

// Rotate returns a rotation of theta radians about an arbitrary axis
func Rotate(theta float64, axis Vec3) Transform {
	a := axis.Normalize()
	s, c := math.Sincos(theta)
	var m Mat4
	m[0][0] = a.X*a.X + (1-a.X*a.X)*c
	m[0][1] = a.X*a.Y*(1-c) - a.Z*s
	m[0][2] = a.X*a.Z*(1-c) + a.Y*s
	m[1][0] = a.X*a.Y*(1-c) + a.Z*s
	m[1][1] = a.Y*a.Y + (1-a.Y*a.Y)*c
	m[1][2] = a.Y*a.Z*(1-c) - a.X*s
	m[2][0] = a.X*a.Z*(1-c) - a.Y*s
	m[2][1] = a.Y*a.Z*(1-c) + a.X*s
	m[2][2] = a.Z*a.Z + (1-a.Z*a.Z)*c
	m[3][3] = 1
	return Transform{m: m, mInv: m.Transpose()}
}

// LookAt returns the camera-from-world transform of a camera at pos looking
// towards look. It fails when up is parallel to the viewing direction.
func LookAt(pos, look, up Vec3) (Transform, error) {
	dir := look.Subtract(pos)
	if dir.Length() == 0 {
		return Transform{}, fmt.Errorf("LookAt: position and target coincide at %v", pos)
	}
	dir = dir.Normalize()
	right := up.Normalize().Cross(dir)
	if right.Length() == 0 {
		return Transform{}, fmt.Errorf("LookAt: up vector %v and viewing direction %v are parallel", up, dir)
	}
	right = right.Normalize()
	newUp := dir.Cross(right)

	worldFromCamera := Mat4{
		{right.X, newUp.X, dir.X, pos.X},
		{right.Y, newUp.Y, dir.Y, pos.Y},
		{right.Z, newUp.Z, dir.Z, pos.Z},
		{0, 0, 0, 1},
	}
	cameraFromWorld, ok := worldFromCamera.Inverse()
	if !ok {
		return Transform{}, fmt.Errorf("LookAt: singular camera frame")
	}
	return Transform{m: cameraFromWorld, mInv: worldFromCamera}, nil
}

// Compose returns t applied after o
func (t Transform) Compose(o Transform) Transform {
	return Transform{m: t.m.Mul(o.m), mInv: o.mInv.Mul(t.mInv)}
}

// Inverse returns the inverse transform
func (t Transform) Inverse() Transform {
	return Transform{m: t.mInv, mInv: t.m}
}

// Matrix returns the forward matrix
func (t Transform) Matrix() Mat4 {
	return t.m
}

// IsIdentity reports whether the transform is the identity
func (t Transform) IsIdentity() bool {
	return t.m == Identity()
}

// SwapsHandedness reports whether the transform flips coordinate system handedness
func (t Transform) SwapsHandedness() bool {
	m := t.m
	det := m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
	return det < 0
}

// ApplyPoint transforms a point, including the homogeneous divide
func (t Transform) ApplyPoint(p Vec3) Vec3 {
	m := t.m
	x := m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3]
	y := m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3]
	z := m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3]
	w := m[3][0]*p.X + m[3][1]*p.Y + m[3][2]*p.Z + m[3][3]
	if w == 1 {
		return Vec3{x, y, z}
	}
	return Vec3{x / w, y / w, z / w}
}

// ApplyVector transforms a direction, ignoring translation
func (t Transform) ApplyVector(v Vec3) Vec3 {
	m := t.m
	return Vec3{
		m[0][0]*v.X + m[0][1]*v.Y + m[0][2]*v.Z,
		m[1][0]*v.X + m[1][1]*v.Y + m[1][2]*v.Z,
		m[2][0]*v.X + m[2][1]*v.Y + m[2][2]*v.Z,
	}
}

// ApplyNormal transforms a surface normal by the inverse transpose
func (t Transform) ApplyNormal(n Vec3) Vec3 {
	mi := t.mInv
	return Vec3{
		mi[0][0]*n.X + mi[1][0]*n.Y + mi[2][0]*n.Z,
		mi[0][1]*n.X + mi[1][1]*n.Y + mi[2][1]*n.Z,
		mi[0][2]*n.X + mi[1][2]*n.Y + mi[2][2]*n.Z,
	}
}
