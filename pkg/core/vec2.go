package core

import (
	"fmt"
	"math"
)

// Vec2 represents a 2D vector or sample point
type Vec2 struct {
	X, Y float64
}

// NewVec2 creates a new Vec2
func NewVec2(x, y float64) Vec2 {
	return Vec2{X: x, Y: y}
}

// Add returns the sum of two vectors
func (v Vec2) Add(other Vec2) Vec2 {
	return Vec2{v.X + other.X, v.Y + other.Y}
}

// Subtract returns the difference of two vectors
func (v Vec2) Subtract(other Vec2) Vec2 {
	return Vec2{v.X - other.X, v.Y - other.Y}
}

// Multiply returns the vector scaled by a scalar
func (v Vec2) Multiply(scalar float64) Vec2 {
	return Vec2{v.X * scalar, v.Y * scalar}
}

// LengthSquared returns the squared magnitude of the vector
func (v Vec2) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Length returns the magnitude of the vector
func (v Vec2) Length() float64 {
	return math.Sqrt(v.LengthSquared())
}

func (v Vec2) String() string {
	return fmt.Sprintf("[ %g, %g ]", v.X, v.Y)
}

// Point2i is an integer 2D point, used for pixel coordinates and grid indices
type Point2i struct {
	X, Y int
}

// NewPoint2i creates a new Point2i
func NewPoint2i(x, y int) Point2i {
	return Point2i{X: x, Y: y}
}

// Bounds2i is a half-open integer rectangle [Min, Max)
type Bounds2i struct {
	Min, Max Point2i
}

// NewBounds2i creates bounds spanning the two corner points
func NewBounds2i(a, b Point2i) Bounds2i {
	return Bounds2i{
		Min: Point2i{min(a.X, b.X), min(a.Y, b.Y)},
		Max: Point2i{max(a.X, b.X), max(a.Y, b.Y)},
	}
}

// Diagonal returns the extent of the bounds along each axis
func (b Bounds2i) Diagonal() Point2i {
	return Point2i{b.Max.X - b.Min.X, b.Max.Y - b.Min.Y}
}

// Area returns the number of integer points inside the bounds
func (b Bounds2i) Area() int {
	d := b.Diagonal()
	return d.X * d.Y
}

// IsEmpty reports whether the bounds contain no points
func (b Bounds2i) IsEmpty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y
}

// InsideExclusive reports whether p lies in the half-open bounds
func (b Bounds2i) InsideExclusive(p Point2i) bool {
	return p.X >= b.Min.X && p.X < b.Max.X && p.Y >= b.Min.Y && p.Y < b.Max.Y
}

func (b Bounds2i) String() string {
	return fmt.Sprintf("[ (%d, %d) - (%d, %d) ]", b.Min.X, b.Min.Y, b.Max.X, b.Max.Y)
}
