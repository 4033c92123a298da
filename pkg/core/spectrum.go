package core

import (
	"fmt"
	"math"
)

// NSpectrumSamples is the number of wavelength samples carried by a Spectrum
const NSpectrumSamples = 3

// Spectrum holds a spectral quantity sampled at NSpectrumSamples points.
// The samples are RGB-like; full spectral rendering is not modeled.
type Spectrum [NSpectrumSamples]float64

// NewSpectrum returns a spectrum with every sample set to v
func NewSpectrum(v float64) Spectrum {
	var s Spectrum
	for i := range s {
		s[i] = v
	}
	return s
}

// NewSpectrumRGB creates a spectrum from three channel values
func NewSpectrumRGB(r, g, b float64) Spectrum {
	return Spectrum{r, g, b}
}

// Add returns the sample-wise sum
func (s Spectrum) Add(o Spectrum) Spectrum {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Subtract returns the sample-wise difference
func (s Spectrum) Subtract(o Spectrum) Spectrum {
	for i := range s {
		s[i] -= o[i]
	}
	return s
}

// Mul returns the sample-wise product
func (s Spectrum) Mul(o Spectrum) Spectrum {
	for i := range s {
		s[i] *= o[i]
	}
	return s
}

// Scale multiplies every sample by a scalar
func (s Spectrum) Scale(f float64) Spectrum {
	for i := range s {
		s[i] *= f
	}
	return s
}

// Div returns the sample-wise quotient. Samples with a zero divisor become zero.
func (s Spectrum) Div(o Spectrum) Spectrum {
	for i := range s {
		if o[i] != 0 {
			s[i] /= o[i]
		} else {
			s[i] = 0
		}
	}
	return s
}

// DivScalar divides every sample by a scalar
func (s Spectrum) DivScalar(f float64) Spectrum {
	inv := 1 / f
	for i := range s {
		s[i] *= inv
	}
	return s
}

// Exp returns e raised to each sample
func (s Spectrum) Exp() Spectrum {
	for i := range s {
		s[i] = math.Exp(s[i])
	}
	return s
}

// Sqrt returns the sample-wise safe square root
func (s Spectrum) Sqrt() Spectrum {
	for i := range s {
		s[i] = SafeSqrt(s[i])
	}
	return s
}

// IsBlack reports whether every sample is zero
func (s Spectrum) IsBlack() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// NonZero reports whether any sample is non-zero
func (s Spectrum) NonZero() bool {
	return !s.IsBlack()
}

// MaxComponent returns the largest sample
func (s Spectrum) MaxComponent() float64 {
	m := s[0]
	for _, v := range s[1:] {
		m = max(m, v)
	}
	return m
}

// MinComponent returns the smallest sample
func (s Spectrum) MinComponent() float64 {
	m := s[0]
	for _, v := range s[1:] {
		m = min(m, v)
	}
	return m
}

// Average returns the mean of the samples
func (s Spectrum) Average() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v
	}
	return sum / NSpectrumSamples
}

// HasNaN reports whether any sample is NaN
func (s Spectrum) HasNaN() bool {
	for _, v := range s {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}

func (s Spectrum) String() string {
	return fmt.Sprintf("[ %g, %g, %g ]", s[0], s[1], s[2])
}
