package core

import (
	"fmt"
	"math"
)

// Bounds3 is an axis-aligned box. The zero value is not empty; use
// EmptyBounds3 as the identity for Union.
type Bounds3 struct {
	Min Vec3 // Minimum corner
	Max Vec3 // Maximum corner
}

// EmptyBounds3 returns an inverted box that any point or box will replace
func EmptyBounds3() Bounds3 {
	inf := math.Inf(1)
	return Bounds3{Min: NewVec3(inf, inf, inf), Max: NewVec3(-inf, -inf, -inf)}
}

// NewBounds3FromPoints creates bounds enclosing all given points
func NewBounds3FromPoints(points ...Vec3) Bounds3 {
	b := EmptyBounds3()
	for _, p := range points {
		b = b.UnionPoint(p)
	}
	return b
}

// UnionPoint returns bounds that also enclose p
func (b Bounds3) UnionPoint(p Vec3) Bounds3 {
	return Bounds3{
		Min: NewVec3(math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)),
		Max: NewVec3(math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)),
	}
}

// Union returns bounds enclosing both b and other
func (b Bounds3) Union(other Bounds3) Bounds3 {
	return b.UnionPoint(other.Min).UnionPoint(other.Max)
}

// Diagonal returns the extent along each axis
func (b Bounds3) Diagonal() Vec3 {
	return b.Max.Subtract(b.Min)
}

// Center returns the midpoint of the box
func (b Bounds3) Center() Vec3 {
	return b.Min.Add(b.Max).Multiply(0.5)
}

// SurfaceArea returns the surface area of the box
func (b Bounds3) SurfaceArea() float64 {
	if b.IsEmpty() {
		return 0
	}
	d := b.Diagonal()
	return 2 * (d.X*d.Y + d.Y*d.Z + d.Z*d.X)
}

// MaxDimension returns the axis (0=X, 1=Y, 2=Z) with the longest extent
func (b Bounds3) MaxDimension() int {
	d := b.Diagonal()
	if d.X > d.Y && d.X > d.Z {
		return 0
	}
	if d.Y > d.Z {
		return 1
	}
	return 2
}

// IsEmpty reports whether min exceeds max on any axis
func (b Bounds3) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

func (b Bounds3) String() string {
	if b.IsEmpty() {
		return "[ empty ]"
	}
	return fmt.Sprintf("[ %v - %v ]", b.Min, b.Max)
}
