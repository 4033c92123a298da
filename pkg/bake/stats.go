package bake

import (
	"math"
	"time"
)

// Stats contains statistics about a bake
type Stats struct {
	Rows     int           // Number of roughness rows computed
	Cells    int           // Number of table cells computed
	Samples  int           // Total number of BxDF samples drawn
	Workers  int           // Number of workers used
	Elapsed  time.Duration // Wall time of the bake
	Albedo   AlbedoStats   // Distribution of the tabulated values
	RowTimes []time.Duration
}

// AlbedoStats accumulates tabulated albedo values
type AlbedoStats struct {
	Sum   float64 // Accumulator for the mean
	SumSq float64 // Squared accumulator for the variance
	Count int     // Number of values added
	Min   float64
	Max   float64
}

// AddSample adds one table value
func (s *AlbedoStats) AddSample(v float64) {
	if s.Count == 0 || v < s.Min {
		s.Min = v
	}
	if s.Count == 0 || v > s.Max {
		s.Max = v
	}
	s.Sum += v
	s.SumSq += v * v
	s.Count++
}

// Merge folds the values counted by o into s
func (s *AlbedoStats) Merge(o AlbedoStats) {
	if o.Count == 0 {
		return
	}
	if s.Count == 0 {
		*s = o
		return
	}
	s.Min = math.Min(s.Min, o.Min)
	s.Max = math.Max(s.Max, o.Max)
	s.Sum += o.Sum
	s.SumSq += o.SumSq
	s.Count += o.Count
}

// Mean returns the average value, or 0 if nothing was added
func (s *AlbedoStats) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return s.Sum / float64(s.Count)
}

// StdDev returns the population standard deviation of the values
func (s *AlbedoStats) StdDev() float64 {
	if s.Count == 0 {
		return 0
	}
	mean := s.Mean()
	return math.Sqrt(math.Max(0, s.SumSq/float64(s.Count)-mean*mean))
}
