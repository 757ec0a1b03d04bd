// Package posthoc runs all pairwise follow-up comparisons after a
// significant omnibus result and controls the family-wise error rate with a
// Bonferroni correction. The pairwise test matches the omnibus family: a
// two-sample t test in the parametric branch, Mann-Whitney U in the
// non-parametric branch.
package posthoc

import (
	"fmt"
	"math"

	domain "evosweep/domain/stats"
)

// Analyze enumerates every unordered pair of groups exactly once, runs the
// pair test, and applies the Bonferroni correction. A pair that cannot be
// tested (numerical degeneracy) is recorded with Significant=false and a
// note; it never aborts the batch. Callers should only invoke this after a
// significant omnibus result.
func Analyze(samples []domain.Sample, omnibusMethod domain.OmnibusMethod, alpha float64) []domain.PairwiseComparison {
	valid := make([]domain.Sample, 0, len(samples))
	for _, s := range samples {
		if s.N() > 0 {
			valid = append(valid, s)
		}
	}

	method := domain.MethodMannWhitney
	if omnibusMethod == domain.MethodANOVA {
		method = domain.MethodStudentT
	}

	nPairs := domain.NPairs(len(valid))
	comparisons := make([]domain.PairwiseComparison, 0, nPairs)

	for i := 0; i < len(valid); i++ {
		for j := i + 1; j < len(valid); j++ {
			a, b := valid[i], valid[j]

			var (
				statistic float64
				rawP      float64
				err       error
			)
			switch method {
			case domain.MethodStudentT:
				statistic, rawP, err = studentT(a.Values, b.Values)
			default:
				statistic, rawP, err = mannWhitneyU(a.Values, b.Values)
			}

			c := domain.PairwiseComparison{
				GroupA:     a.Name,
				GroupB:     b.Name,
				Method:     method,
				Correction: domain.CorrectionBonferroni,
				Alpha:      alpha,
			}
			if err != nil {
				c.Statistic = math.NaN()
				c.RawPValue = math.NaN()
				c.CorrectedPValue = math.NaN()
				c.Significant = false
				c.Note = fmt.Sprintf("pairwise test failed: %v", err)
			} else {
				c.Statistic = statistic
				c.RawPValue = rawP
				c.CorrectedPValue = domain.BonferroniCorrect(rawP, nPairs)
				c.Significant = c.CorrectedPValue < alpha
			}
			comparisons = append(comparisons, c)
		}
	}

	return comparisons
}
