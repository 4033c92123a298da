package containers

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// Float constrains SampledGrid values
type Float interface {
	~float32 | ~float64
}

// SampledGrid holds point samples of a function over [0,1]³ and
// reconstructs it by trilinear interpolation
type SampledGrid[T Float] struct {
	values     []T
	nx, ny, nz int
}

// NewSampledGrid wraps nx*ny*nz values stored x-fastest
func NewSampledGrid[T Float](values []T, nx, ny, nz int) *SampledGrid[T] {
	if len(values) != nx*ny*nz {
		panic(fmt.Sprintf("SampledGrid: %d values for a %dx%dx%d grid", len(values), nx, ny, nz))
	}
	return &SampledGrid[T]{values: values, nx: nx, ny: ny, nz: nz}
}

// Resolution returns the number of samples along each axis
func (g *SampledGrid[T]) Resolution() (int, int, int) { return g.nx, g.ny, g.nz }

// At returns the sample at integer coordinates, or zero outside the grid
func (g *SampledGrid[T]) At(x, y, z int) T {
	if x < 0 || x >= g.nx || y < 0 || y >= g.ny || z < 0 || z >= g.nz {
		return 0
	}
	return g.values[(z*g.ny+y)*g.nx+x]
}

// Lookup trilinearly interpolates the samples at p in [0,1]³
func (g *SampledGrid[T]) Lookup(p core.Vec3) T {
	// Sample i sits at (i + 0.5) / n
	sx := p.X*float64(g.nx) - 0.5
	sy := p.Y*float64(g.ny) - 0.5
	sz := p.Z*float64(g.nz) - 0.5
	ix, iy, iz := int(math.Floor(sx)), int(math.Floor(sy)), int(math.Floor(sz))
	dx, dy, dz := T(sx-float64(ix)), T(sy-float64(iy)), T(sz-float64(iz))

	lerp := func(t, a, b T) T { return (1-t)*a + t*b }
	d00 := lerp(dx, g.At(ix, iy, iz), g.At(ix+1, iy, iz))
	d10 := lerp(dx, g.At(ix, iy+1, iz), g.At(ix+1, iy+1, iz))
	d01 := lerp(dx, g.At(ix, iy, iz+1), g.At(ix+1, iy, iz+1))
	d11 := lerp(dx, g.At(ix, iy+1, iz+1), g.At(ix+1, iy+1, iz+1))
	return lerp(dz, lerp(dy, d00, d10), lerp(dy, d01, d11))
}

// MaxValue returns the largest sample that can influence lookups inside the
// box [lo, hi] of [0,1]³
func (g *SampledGrid[T]) MaxValue(lo, hi core.Vec3) T {
	toIndex := func(v float64, n int, round func(float64) float64) int {
		return core.ClampInt(int(round(v*float64(n)-0.5)), 0, n-1)
	}
	x0, x1 := toIndex(lo.X, g.nx, math.Floor), toIndex(hi.X, g.nx, math.Ceil)
	y0, y1 := toIndex(lo.Y, g.ny, math.Floor), toIndex(hi.Y, g.ny, math.Ceil)
	z0, z1 := toIndex(lo.Z, g.nz, math.Floor), toIndex(hi.Z, g.nz, math.Ceil)

	m := g.At(x0, y0, z0)
	for z := z0; z <= z1; z++ {
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				m = max(m, g.At(x, y, z))
			}
		}
	}
	return m
}
