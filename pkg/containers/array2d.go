package containers

import (
	"fmt"

	"github.com/df07/go-scatter/pkg/core"
)

// Array2D is a dense row-major 2D array addressed by points in its extent
type Array2D[T any] struct {
	values []T
	extent core.Bounds2i
}

// NewArray2D allocates a zeroed array covering extent
func NewArray2D[T any](extent core.Bounds2i) *Array2D[T] {
	if extent.IsEmpty() {
		panic(fmt.Sprintf("Array2D: empty extent %v", extent))
	}
	return &Array2D[T]{values: make([]T, extent.Area()), extent: extent}
}

// NewArray2DSize allocates a zeroed nx by ny array with origin (0, 0)
func NewArray2DSize[T any](nx, ny int) *Array2D[T] {
	return NewArray2D[T](core.NewBounds2i(core.Point2i{}, core.NewPoint2i(nx, ny)))
}

// Extent returns the bounds covered by the array
func (a *Array2D[T]) Extent() core.Bounds2i { return a.extent }

// XSize returns the width of the array
func (a *Array2D[T]) XSize() int { return a.extent.Max.X - a.extent.Min.X }

// YSize returns the height of the array
func (a *Array2D[T]) YSize() int { return a.extent.Max.Y - a.extent.Min.Y }

// Size returns the number of elements
func (a *Array2D[T]) Size() int { return len(a.values) }

// Slice returns the underlying row-major storage
func (a *Array2D[T]) Slice() []T { return a.values }

func (a *Array2D[T]) offset(p core.Point2i) int {
	if !a.extent.InsideExclusive(p) {
		panic(fmt.Sprintf("Array2D: point (%d, %d) outside %v", p.X, p.Y, a.extent))
	}
	return (p.Y-a.extent.Min.Y)*a.XSize() + (p.X - a.extent.Min.X)
}

// At returns the element at p
func (a *Array2D[T]) At(p core.Point2i) T {
	return a.values[a.offset(p)]
}

// AtXY returns the element at (x, y)
func (a *Array2D[T]) AtXY(x, y int) T {
	return a.At(core.Point2i{X: x, Y: y})
}

// Set stores v at p
func (a *Array2D[T]) Set(p core.Point2i, v T) {
	a.values[a.offset(p)] = v
}

// SetXY stores v at (x, y)
func (a *Array2D[T]) SetXY(x, y int, v T) {
	a.Set(core.Point2i{X: x, Y: y}, v)
}
