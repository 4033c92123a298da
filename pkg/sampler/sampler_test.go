package sampler

import (
	"math"
	"testing"

	"github.com/df07/go-scatter/pkg/core"
)

func allSamplers(spp, nDims int) map[string]PixelSampler {
	return map[string]PixelSampler{
		"random":     NewRandomSampler(spp, 0),
		"stratified": NewStratifiedSampler(4, spp/4, true, nDims, 0),
		"zerotwo":    NewZeroTwoSequenceSampler(spp, nDims, 0),
	}
}

func TestConsistentValues(t *testing.T) {
	const spp, nDims = 16, 4
	pixels := []core.Point2i{{X: 0, Y: 0}, {X: 3, Y: 7}, {X: -2, Y: 5}}

	for name, s := range allSamplers(spp, nDims) {
		t.Run(name, func(t *testing.T) {
			// Draw past the precomputed dimensions to cover the fallback stream
			const n1D, n2D = nDims + 3, nDims + 2
			type record struct {
				d1 []float64
				d2 []core.Vec2
			}
			draw := func() record {
				var r record
				for i := 0; i < n1D; i++ {
					r.d1 = append(r.d1, s.Get1D())
				}
				for i := 0; i < n2D; i++ {
					r.d2 = append(r.d2, s.Get2D())
				}
				return r
			}

			forward := make(map[[3]int]record)
			for _, p := range pixels {
				for i := 0; i < spp; i++ {
					s.StartPixelSample(p, i)
					forward[[3]int{p.X, p.Y, i}] = draw()
				}
			}

			// Revisit in reverse order
			for pi := len(pixels) - 1; pi >= 0; pi-- {
				p := pixels[pi]
				for i := spp - 1; i >= 0; i-- {
					s.StartPixelSample(p, i)
					got, expected := draw(), forward[[3]int{p.X, p.Y, i}]
					for j := range expected.d1 {
						if got.d1[j] != expected.d1[j] {
							t.Fatalf("pixel %v sample %d 1D dim %d: got %v, expected %v", p, i, j, got.d1[j], expected.d1[j])
						}
					}
					for j := range expected.d2 {
						if got.d2[j] != expected.d2[j] {
							t.Fatalf("pixel %v sample %d 2D dim %d: got %v, expected %v", p, i, j, got.d2[j], expected.d2[j])
						}
					}
				}
			}
		})
	}
}

func TestSampleRange(t *testing.T) {
	for name, s := range allSamplers(16, 2) {
		t.Run(name, func(t *testing.T) {
			for i := 0; i < s.SamplesPerPixel(); i++ {
				s.StartPixelSample(core.NewPoint2i(1, 1), i)
				for d := 0; d < 4; d++ {
					v := s.Get1D()
					p := s.Get2D()
					q := s.Get3D()
					for _, x := range []float64{v, p.X, p.Y, q.X, q.Y, q.Z} {
						if x < 0 || x >= 1 {
							t.Fatalf("sample value %v outside [0, 1)", x)
						}
					}
				}
			}
		})
	}
}

func TestGenerationOnlyOnPixelChange(t *testing.T) {
	s := NewZeroTwoSequenceSampler(16, 2, 0)
	sequence := []struct {
		p     core.Point2i
		index int
	}{
		{core.NewPoint2i(0, 0), 0},
		{core.NewPoint2i(0, 0), 1},
		{core.NewPoint2i(0, 0), 10},
		{core.NewPoint2i(1, 0), 4},
		{core.NewPoint2i(0, 0), 11},
	}
	for _, step := range sequence {
		s.StartPixelSample(step.p, step.index)
	}
	if s.generations != 3 {
		t.Errorf("generations: got %d, expected 3", s.generations)
	}
}

func TestZeroTwoElementaryIntervals(t *testing.T) {
	for logSamples := 2; logSamples <= 10; logSamples++ {
		spp := 1 << logSamples
		s := NewZeroTwoSequenceSampler(spp, 1, 0)

		points := make([]core.Vec2, 0, spp)
		for i := 0; i < spp; i++ {
			s.StartPixelSample(core.NewPoint2i(0, 0), i)
			points = append(points, s.Get2D())
		}

		for i := 0; i <= logSamples; i++ {
			nx, ny := 1<<i, 1<<(logSamples-i)
			count := make([]int, spp)
			for _, p := range points {
				index := int(p.Y*float64(ny))*nx + int(p.X*float64(nx))
				count[index]++
				if count[index] > 1 {
					t.Fatalf("%d samples: interval %dx%d cell %d holds more than one point", spp, nx, ny, index)
				}
			}
		}
	}
}

func TestZeroTwoRoundsUp(t *testing.T) {
	s := NewZeroTwoSequenceSampler(100, 1, 0)
	if s.SamplesPerPixel() != 128 {
		t.Errorf("SamplesPerPixel: got %d, expected 128", s.SamplesPerPixel())
	}
}

func TestStratified1D(t *testing.T) {
	const spp = 8
	s := NewStratifiedSampler(spp, 1, true, 1, 3)
	seen := make([]bool, spp)
	for i := 0; i < spp; i++ {
		s.StartPixelSample(core.NewPoint2i(2, 2), i)
		stratum := int(s.Get1D() * spp)
		if seen[stratum] {
			t.Fatalf("stratum %d sampled twice", stratum)
		}
		seen[stratum] = true
	}
}

func TestPixelsDiffer(t *testing.T) {
	for name, s := range allSamplers(16, 2) {
		t.Run(name, func(t *testing.T) {
			s.StartPixelSample(core.NewPoint2i(0, 0), 0)
			a := s.Get2D()
			s.StartPixelSample(core.NewPoint2i(1, 0), 0)
			b := s.Get2D()
			if a == b {
				t.Errorf("neighbouring pixels share sample %v", a)
			}
		})
	}
}

func TestNewByName(t *testing.T) {
	tests := []struct {
		name    string
		spp     int
		wantSPP int
	}{
		{"zerotwo", 64, 64},
		{"stratified", 12, 12},
		{"random", 5, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := New(tt.name, tt.spp, 2, 0)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if s.SamplesPerPixel() != tt.wantSPP {
				t.Errorf("SamplesPerPixel: got %d, expected %d", s.SamplesPerPixel(), tt.wantSPP)
			}
			if s.Clone().SamplesPerPixel() != tt.wantSPP {
				t.Errorf("Clone lost sample count")
			}
		})
	}
	if _, err := New("halton", 16, 2, 0); err == nil {
		t.Error("expected error for unknown sampler")
	}
}

func TestCheck(t *testing.T) {
	bounds := core.NewBounds2i(core.NewPoint2i(0, 0), core.NewPoint2i(3, 2))

	result := Check(NewZeroTwoSequenceSampler(64, 1, 3), bounds)
	if result.Pixels != 6 || result.Samples != 6*64 {
		t.Errorf("counts: got %d pixels %d samples, expected 6 and 384", result.Pixels, result.Samples)
	}
	if !result.Checked || result.Violations != 0 {
		t.Errorf("zerotwo: got checked=%v violations=%d, expected stratified pixels", result.Checked, result.Violations)
	}
	if result.Min.X < 0 || result.Max.X >= 1 || result.Min.Y < 0 || result.Max.Y >= 1 {
		t.Errorf("sample range: got [%v, %v], expected inside [0,1)", result.Min, result.Max)
	}
	if math.Abs(result.Mean.X-0.5) > 0.05 || math.Abs(result.Mean.Y-0.5) > 0.05 {
		t.Errorf("mean: got %v, expected close to (0.5, 0.5)", result.Mean)
	}

	if r := Check(NewRandomSampler(12, 0), bounds); r.Checked {
		t.Errorf("random sampler with 12 samples should not be interval checked")
	}
}

func TestElementaryIntervalViolations(t *testing.T) {
	stratified := []core.Vec2{{X: 0.1, Y: 0.1}, {X: 0.6, Y: 0.3}, {X: 0.3, Y: 0.6}, {X: 0.8, Y: 0.8}}
	if v := ElementaryIntervalViolations(stratified); v != 0 {
		t.Errorf("stratified points: got %d violations, expected 0", v)
	}

	// Both points in the lower-left cell of every split
	clumped := []core.Vec2{{X: 0.1, Y: 0.1}, {X: 0.2, Y: 0.2}}
	if v := ElementaryIntervalViolations(clumped); v != 2 {
		t.Errorf("clumped points: got %d violations, expected 2", v)
	}

	if v := ElementaryIntervalViolations(nil); v != 0 {
		t.Errorf("empty set: got %d violations, expected 0", v)
	}
}
