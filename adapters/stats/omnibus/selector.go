// Package omnibus runs the across-groups hypothesis test: a parametric
// one-way ANOVA when every group passed the normality screen, a rank-based
// Kruskal-Wallis comparison otherwise. The non-parametric branch trades
// power under normal-theory assumptions for robustness to outliers and
// skewed distributions.
package omnibus

import (
	"evosweep/adapters/stats/describe"
	"evosweep/domain/core"
	domain "evosweep/domain/stats"
	"evosweep/internal/errors"
)

// Compare dispatches on the aggregate normality verdict and runs the
// matching omnibus test across all groups simultaneously (not pairwise).
// Requires at least 2 non-empty groups; fewer is a structured error.
// Descriptive stats are computed for every group regardless of branch.
func Compare(samples []domain.Sample, alpha float64, allNormal bool) (domain.OmnibusResult, error) {
	valid := make([]domain.Sample, 0, len(samples))
	for _, s := range samples {
		if s.N() > 0 {
			valid = append(valid, s)
		}
	}
	if len(valid) < 2 {
		return domain.OmnibusResult{}, errors.InvalidComparison(len(valid))
	}

	groups := make([]core.GroupName, len(valid))
	desc := make(map[core.GroupName]domain.DescriptiveStats, len(valid))
	for i, s := range valid {
		groups[i] = s.Name
		desc[s.Name] = describe.Describe(s.Values)
	}

	var (
		method    domain.OmnibusMethod
		statistic float64
		pValue    float64
		err       error
	)
	if allNormal {
		method = domain.MethodANOVA
		statistic, pValue, err = anovaOneWay(valid)
	} else {
		method = domain.MethodKruskalWallis
		statistic, pValue, err = kruskalWallis(valid)
	}
	if err != nil {
		return domain.OmnibusResult{}, errors.NumericFailure(err)
	}

	return domain.OmnibusResult{
		Method:           method,
		Statistic:        statistic,
		PValue:           pValue,
		Significant:      pValue < alpha,
		Alpha:            alpha,
		Groups:           groups,
		DescriptiveStats: desc,
	}, nil
}
