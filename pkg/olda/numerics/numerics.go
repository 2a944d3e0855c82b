// Package numerics provides the sampling and normalization primitives used
// throughout the particle filter: categorical sampling from an unnormalized
// weight vector, CDF construction, sampling without replacement, and L2 norm.
package numerics

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cognicore/olda/pkg/olda/internalerr"
)

// NormalizeToCDF converts a non-negative weight vector into a cumulative
// distribution in place on a copy: out[i] = sum(xs[:i+1]) / sum(xs). The
// final entry is forced to exactly 1.0 to absorb floating point rounding.
//
// Fails with ErrDegenerateDistribution when xs is empty or sums to zero.
func NormalizeToCDF(xs []float64) ([]float64, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("normalize to cdf: %w", internalerr.ErrDegenerateDistribution)
	}

	var sum float64
	for _, x := range xs {
		sum += x
	}
	if sum <= 0 {
		return nil, fmt.Errorf("normalize to cdf: %w", internalerr.ErrDegenerateDistribution)
	}

	out := make([]float64, len(xs))
	running := 0.0
	for i, x := range xs {
		running += x
		out[i] = running / sum
	}
	out[len(out)-1] = 1.0
	return out, nil
}

// SampleCategorical draws u uniformly in [0,1) from rng and returns the
// least index i with cdf[i] >= u. For a single-element CDF it always
// returns 0. Fails with ErrEmptyDistribution when cdf has length 0.
func SampleCategorical(rng *rand.Rand, cdf []float64) (int, error) {
	if len(cdf) == 0 {
		return 0, fmt.Errorf("sample categorical: %w", internalerr.ErrEmptyDistribution)
	}
	if len(cdf) == 1 {
		return 0, nil
	}

	u := rng.Float64()
	for i, c := range cdf {
		if c >= u {
			return i, nil
		}
	}
	return len(cdf) - 1, nil
}

// SampleWithoutReplacement returns a uniform random k-subset of xs (order
// unspecified). If k >= len(xs), all of xs is returned (a copy).
func SampleWithoutReplacement(rng *rand.Rand, xs []int, k int) []int {
	if k >= len(xs) {
		out := make([]int, len(xs))
		copy(out, xs)
		return out
	}
	if k <= 0 {
		return nil
	}

	// Partial Fisher-Yates: shuffle only the first k positions.
	pool := make([]int, len(xs))
	copy(pool, xs)
	for i := 0; i < k; i++ {
		j := i + rng.Intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	out := make([]int, k)
	copy(out, pool[:k])
	return out
}

// L2Norm returns sqrt(sum(xs[i]^2)).
func L2Norm(xs []float64) float64 {
	var sumSq float64
	for _, x := range xs {
		sumSq += x * x
	}
	return math.Sqrt(sumSq)
}
