// Package lowdiscrepancy implements radical inverses, digit scrambling and
// generator-matrix sequences used by the (0,2)-sequence sampler.
package lowdiscrepancy

// PrimeTableSize is the number of prime bases available to RadicalInverse
const PrimeTableSize = 1000

var (
	// Primes holds the first PrimeTableSize primes
	Primes [PrimeTableSize]int
	// PrimeSums[i] is the sum of Primes[0..i-1], the offset of base i's
	// permutation in a flat permutation table
	PrimeSums [PrimeTableSize]int
)

func init() {
	// The 1000th prime is 7919
	const limit = 7920
	composite := make([]bool, limit)
	n := 0
	for i := 2; i < limit && n < PrimeTableSize; i++ {
		if composite[i] {
			continue
		}
		Primes[n] = i
		n++
		for j := i * i; j < limit; j += i {
			composite[j] = true
		}
	}
	if n != PrimeTableSize {
		panic("lowdiscrepancy: prime sieve too small")
	}

	sum := 0
	for i, p := range Primes {
		PrimeSums[i] = sum
		sum += p
	}
}
