// Package sampling provides tabulated distributions and sample-set
// generators used for importance sampling.
package sampling

import (
	"fmt"
	"math"

	"github.com/df07/go-scatter/pkg/core"
)

// PiecewiseConstant1D is a piecewise-constant density over [min, max]
// built from tabulated function values
type PiecewiseConstant1D struct {
	function []float64
	cdf      []float64
	funcInt  float64
	min, max float64
}

// Distribution1D is the historical name for PiecewiseConstant1D
type Distribution1D = PiecewiseConstant1D

// NewPiecewiseConstant1D builds a distribution over [0, 1]
func NewPiecewiseConstant1D(f []float64) *PiecewiseConstant1D {
	return NewPiecewiseConstant1DRange(f, 0, 1)
}

// NewPiecewiseConstant1DRange builds a distribution over [min, max].
// Absolute values of f are used; an all-zero f yields a uniform distribution.
func NewPiecewiseConstant1DRange(f []float64, minV, maxV float64) *PiecewiseConstant1D {
	if len(f) == 0 {
		panic("sampling: piecewise-constant distribution needs at least one value")
	}
	if maxV <= minV {
		panic(fmt.Sprintf("sampling: invalid domain [%g, %g]", minV, maxV))
	}

	n := len(f)
	d := &PiecewiseConstant1D{
		function: make([]float64, n),
		cdf:      make([]float64, n+1),
		min:      minV,
		max:      maxV,
	}
	for i, v := range f {
		d.function[i] = math.Abs(v)
	}

	// Compute integral of step function at x_i
	for i := 1; i <= n; i++ {
		d.cdf[i] = d.cdf[i-1] + d.function[i-1]*(maxV-minV)/float64(n)
	}

	// Transform step function integral into CDF
	d.funcInt = d.cdf[n]
	if d.funcInt == 0 {
		for i := 1; i <= n; i++ {
			d.cdf[i] = float64(i) / float64(n)
		}
	} else {
		for i := 1; i <= n; i++ {
			d.cdf[i] /= d.funcInt
		}
	}
	return d
}

// Count returns the number of tabulated values
func (d *PiecewiseConstant1D) Count() int {
	return len(d.function)
}

// Integral returns the integral of the tabulated function over the domain
func (d *PiecewiseConstant1D) Integral() float64 {
	return d.funcInt
}

// Function returns the tabulated (absolute) values
func (d *PiecewiseConstant1D) Function() []float64 {
	return d.function
}

// offset returns the index of the interval containing u
func (d *PiecewiseConstant1D) offset(u float64) int {
	return core.FindInterval(len(d.cdf), func(i int) bool { return d.cdf[i] <= u })
}

// SampleContinuous maps u to a point in the domain. It returns the point,
// its density and the index of the chosen segment.
func (d *PiecewiseConstant1D) SampleContinuous(u float64) (float64, float64, int) {
	o := d.offset(u)

	// Compute offset along CDF segment
	du := u - d.cdf[o]
	if width := d.cdf[o+1] - d.cdf[o]; width > 0 {
		du /= width
	}

	pdf := 0.0
	if d.funcInt > 0 {
		pdf = d.function[o] / d.funcInt
	}
	t := (float64(o) + du) / float64(d.Count())
	return core.Lerp(t, d.min, d.max), pdf, o
}

// SampleDiscrete picks a segment with probability proportional to its value.
// It returns the index, its probability and u remapped to [0, 1) within the segment.
func (d *PiecewiseConstant1D) SampleDiscrete(u float64) (int, float64, float64) {
	o := d.offset(u)
	uRemapped := 0.0
	if width := d.cdf[o+1] - d.cdf[o]; width > 0 {
		uRemapped = min((u-d.cdf[o])/width, core.OneMinusEpsilon)
	}
	return o, d.DiscretePDF(o), uRemapped
}

// DiscretePDF returns the probability of SampleDiscrete choosing index
func (d *PiecewiseConstant1D) DiscretePDF(index int) float64 {
	if d.funcInt == 0 {
		return 1 / float64(d.Count())
	}
	return d.function[index] * (d.max - d.min) / (d.funcInt * float64(d.Count()))
}

// SampleDiscrete samples an index from an ad-hoc list of non-negative weights.
// It returns -1 for an empty list.
func SampleDiscrete(weights []float64, u float64) (int, float64, float64) {
	if len(weights) == 0 {
		return -1, 0, 0
	}

	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if sum == 0 {
		return -1, 0, 0
	}

	up := u * sum
	if up == sum {
		up = core.NextFloatDown(up)
	}

	// Find offset in weights corresponding to u'
	offset, acc := 0, 0.0
	for acc+weights[offset] <= up {
		acc += weights[offset]
		offset++
	}

	pmf := weights[offset] / sum
	uRemapped := min((up-acc)/weights[offset], core.OneMinusEpsilon)
	return offset, pmf, uRemapped
}
