package core

import "math"

const (
	InvPi       = 1 / math.Pi
	Inv2Pi      = 1 / (2 * math.Pi)
	Inv4Pi      = 1 / (4 * math.Pi)
	PiOver2     = math.Pi / 2
	PiOver4     = math.Pi / 4
	SqrtPiOver8 = 0.626657068657750125603941
)

// OneMinusEpsilon is the largest float64 strictly less than one
const OneMinusEpsilon = 0x1.fffffffffffffp-1

// Clamp restricts v to [lo, hi]
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ClampInt restricts v to [lo, hi]
func ClampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp linearly interpolates between a and b
func Lerp(t, a, b float64) float64 {
	return (1-t)*a + t*b
}

// Sqr returns v*v
func Sqr(v float64) float64 {
	return v * v
}

// SafeSqrt returns the square root of v, treating negative round-off as zero
func SafeSqrt(v float64) float64 {
	return math.Sqrt(max(0, v))
}

// SafeASin is asin with its argument clamped to [-1, 1]
func SafeASin(v float64) float64 {
	return math.Asin(Clamp(v, -1, 1))
}

// SafeACos is acos with its argument clamped to [-1, 1]
func SafeACos(v float64) float64 {
	return math.Acos(Clamp(v, -1, 1))
}

// Radians converts degrees to radians
func Radians(deg float64) float64 {
	return (math.Pi / 180) * deg
}

// NextFloatDown returns the next representable value below v
func NextFloatDown(v float64) float64 {
	return math.Nextafter(v, math.Inf(-1))
}

// IsPowerOf2 reports whether v is a positive power of two
func IsPowerOf2(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// RoundUpPow2 returns the smallest power of two >= v
func RoundUpPow2(v int) int {
	if v <= 1 {
		return 1
	}
	p := 1
	for p < v {
		p <<= 1
	}
	return p
}

// Log2Int returns floor(log2(v)) for v > 0
func Log2Int(v uint64) int {
	n := -1
	for v != 0 {
		v >>= 1
		n++
	}
	return n
}

// FindInterval returns the largest index i in [0, size-2] for which pred(i)
// is true, assuming pred is true for a prefix of the indices
func FindInterval(size int, pred func(int) bool) int {
	n, first := size-2, 1
	for n > 0 {
		half := n >> 1
		middle := first + half
		if pred(middle) {
			first = middle + 1
			n -= half + 1
		} else {
			n = half
		}
	}
	return ClampInt(first-1, 0, size-2)
}

// EvaluatePolynomial evaluates c[0] + c[1]*t + c[2]*t^2 + ... by Horner's rule
func EvaluatePolynomial(t float64, c ...float64) float64 {
	if len(c) == 0 {
		return 0
	}
	r := c[len(c)-1]
	for i := len(c) - 2; i >= 0; i-- {
		r = r*t + c[i]
	}
	return r
}
