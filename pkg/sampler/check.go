package sampler

import (
	"math/bits"

	"github.com/df07/go-scatter/pkg/core"
)

// CheckResult summarizes the first 2D dimension of every pixel in a block
type CheckResult struct {
	Pixels  int
	Samples int
	Mean    core.Vec2
	Min     core.Vec2
	Max     core.Vec2

	// Violations counts the pixels whose sample set is not stratified over
	// all elementary intervals. Only reported for power-of-two sample counts.
	Violations int
	Checked    bool
}

// Check draws every sample of every pixel in bounds from s
func Check(s PixelSampler, bounds core.Bounds2i) CheckResult {
	spp := s.SamplesPerPixel()
	result := CheckResult{
		Min:     core.NewVec2(1, 1),
		Checked: core.IsPowerOf2(spp),
	}
	points := make([]core.Vec2, spp)

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := core.NewPoint2i(x, y)
			for i := range points {
				s.StartPixelSample(p, i)
				u := s.Get2D()
				points[i] = u
				result.Mean = result.Mean.Add(u)
				result.Min = core.NewVec2(min(result.Min.X, u.X), min(result.Min.Y, u.Y))
				result.Max = core.NewVec2(max(result.Max.X, u.X), max(result.Max.Y, u.Y))
			}
			if result.Checked && ElementaryIntervalViolations(points) > 0 {
				result.Violations++
			}
			result.Pixels++
			result.Samples += spp
		}
	}
	if result.Samples > 0 {
		result.Mean = result.Mean.Multiply(1 / float64(result.Samples))
	}
	return result
}

// ElementaryIntervalViolations counts the elementary intervals of area
// 1/len(points) that hold more than one point. len(points) must be a power
// of two.
func ElementaryIntervalViolations(points []core.Vec2) int {
	n := len(points)
	if n == 0 {
		return 0
	}
	logN := bits.TrailingZeros(uint(n))
	violations := 0
	count := make([]int, n)
	for i := 0; i <= logN; i++ {
		nx, ny := 1<<i, 1<<(logN-i)
		clear(count)
		for _, p := range points {
			cx := min(int(p.X*float64(nx)), nx-1)
			cy := min(int(p.Y*float64(ny)), ny-1)
			index := cy*nx + cx
			count[index]++
			if count[index] == 2 {
				violations++
			}
		}
	}
	return violations
}
