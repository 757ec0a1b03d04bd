// Package testkit provides seeded data generators shared by tests. All
// generators take an explicit *rand.Rand so a test can pin its seed and stay
// reproducible across runs.
package testkit

import (
	"math/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"evosweep/domain/core"
	"evosweep/domain/pareto"
	domain "evosweep/domain/stats"
)

// NewRand returns a deterministic generator for the given seed
func NewRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// NormalSample draws n values from N(mean, std^2)
func NormalSample(rng *rand.Rand, n int, mean, std float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = mean + std*rng.NormFloat64()
	}
	return values
}

// BlomSample returns the expected order statistics of a standard normal
// sample of size n. Deterministic, and as normal-looking as data gets, so
// tests that need a guaranteed pass of the normality screen use it instead
// of random draws.
func BlomSample(n int) []float64 {
	values := make([]float64, n)
	for i := 1; i <= n; i++ {
		values[i-1] = distuv.UnitNormal.Quantile((float64(i) - 0.375) / (float64(n) + 0.25))
	}
	return values
}

// UniformSample draws n values from U(lo, hi), a clearly non-normal source
// for power checks.
func UniformSample(rng *rand.Rand, n int, lo, hi float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = lo + (hi-lo)*rng.Float64()
	}
	return values
}

// ExponentialSample draws n values from Exp(rate), heavily right-skewed
func ExponentialSample(rng *rand.Rand, n int, rate float64) []float64 {
	values := make([]float64, n)
	for i := range values {
		values[i] = rng.ExpFloat64() / rate
	}
	return values
}

// Group wraps a value slice into a named sample, panicking on invalid input
// since test fixtures are authored, not received.
func Group(name string, values []float64) domain.Sample {
	sample, err := domain.NewSample(core.GroupName(name), values)
	if err != nil {
		panic("testkit: invalid fixture group " + name + ": " + err.Error())
	}
	return sample
}

// EqualMeanGroups builds k normal groups of size n sharing one mean, for
// checking that no spurious significance appears under the null.
func EqualMeanGroups(rng *rand.Rand, k, n int, mean, std float64) []domain.Sample {
	groups := make([]domain.Sample, k)
	for i := range groups {
		groups[i] = Group(groupLabel(i), NormalSample(rng, n, mean, std))
	}
	return groups
}

// ShiftedGroups builds normal groups of size n whose means step by shift, a
// signal any reasonable omnibus test should detect when shift >> std.
func ShiftedGroups(rng *rand.Rand, k, n int, baseMean, shift, std float64) []domain.Sample {
	groups := make([]domain.Sample, k)
	for i := range groups {
		mean := baseMean + float64(i)*shift
		groups[i] = Group(groupLabel(i), NormalSample(rng, n, mean, std))
	}
	return groups
}

// RandomSolutions scatters n points uniformly in the given objective box
func RandomSolutions(rng *rand.Rand, n int, f1Max, f2Max float64) []pareto.Solution {
	solutions := make([]pareto.Solution, n)
	for i := range solutions {
		solutions[i] = pareto.Solution{
			F1: rng.Float64() * f1Max,
			F2: rng.Float64() * f2Max,
		}
	}
	return solutions
}

func groupLabel(i int) string {
	return string(rune('A' + i))
}
