package sampling

import (
	"github.com/df07/go-scatter/pkg/containers"
	"github.com/df07/go-scatter/pkg/core"
)

// PiecewiseConstant2D is a piecewise-constant density over [0,1]²,
// sampled by a marginal distribution over rows and conditionals per row
type PiecewiseConstant2D struct {
	conditional []*PiecewiseConstant1D
	marginal    *PiecewiseConstant1D
	nu, nv      int
}

// Distribution2D is the historical name for PiecewiseConstant2D
type Distribution2D = PiecewiseConstant2D

// NewPiecewiseConstant2D builds a distribution from nv rows of nu values each
func NewPiecewiseConstant2D(f []float64, nu, nv int) *PiecewiseConstant2D {
	if len(f) != nu*nv {
		panic("sampling: 2D distribution size mismatch")
	}
	d := &PiecewiseConstant2D{
		conditional: make([]*PiecewiseConstant1D, nv),
		nu:          nu,
		nv:          nv,
	}
	marginal := make([]float64, nv)
	for v := 0; v < nv; v++ {
		d.conditional[v] = NewPiecewiseConstant1D(f[v*nu : (v+1)*nu])
		marginal[v] = d.conditional[v].Integral()
	}
	d.marginal = NewPiecewiseConstant1D(marginal)
	return d
}

// NewPiecewiseConstant2DFromArray builds a distribution from a dense 2D array
// whose x axis maps to u and y axis to v
func NewPiecewiseConstant2DFromArray(a *containers.Array2D[float64]) *PiecewiseConstant2D {
	return NewPiecewiseConstant2D(a.Slice(), a.XSize(), a.YSize())
}

// Sample returns a point in [0,1]² and its density
func (d *PiecewiseConstant2D) Sample(u core.Vec2) (core.Vec2, float64) {
	d1, pdf1, v := d.marginal.SampleContinuous(u.Y)
	d0, pdf0, _ := d.conditional[v].SampleContinuous(u.X)
	return core.NewVec2(d0, d1), pdf0 * pdf1
}

// PDF returns the density of sampling p
func (d *PiecewiseConstant2D) PDF(p core.Vec2) float64 {
	iu := core.ClampInt(int(p.X*float64(d.nu)), 0, d.nu-1)
	iv := core.ClampInt(int(p.Y*float64(d.nv)), 0, d.nv-1)
	if d.marginal.Integral() == 0 {
		return 0
	}
	return d.conditional[iv].function[iu] / d.marginal.Integral()
}

// Integral returns the integral of the tabulated function over [0,1]²
func (d *PiecewiseConstant2D) Integral() float64 {
	return d.marginal.Integral()
}
