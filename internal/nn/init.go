package nn

import (
	"math"
	"math/rand"
)

// Xavier returns n values drawn from the Xavier/Glorot uniform distribution
// U(-sqrt(6/(fanIn+fanOut)), sqrt(6/(fanIn+fanOut))).
//
// Values come from rng, or from the global math/rand source when rng is nil.
// Training is reproducible only with an explicitly seeded rng.
func Xavier(fanIn, fanOut, n int, rng *rand.Rand) []float64 {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))

	data := make([]float64, n)
	for i := range data {
		data[i] = (uniform(rng)*2.0 - 1.0) * bound
	}
	return data
}

//nolint:gosec // weight initialization is not security-critical
func uniform(rng *rand.Rand) float64 {
	if rng == nil {
		return rand.Float64()
	}
	return rng.Float64()
}
