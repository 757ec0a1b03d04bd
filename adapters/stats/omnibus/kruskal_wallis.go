package omnibus

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	domain "evosweep/domain/stats"
)

// kruskalWallis computes the rank-based H statistic across k groups with
// average ranks for ties and the standard tie correction, then approximates
// the p-value with a chi-square distribution on k-1 degrees of freedom.
func kruskalWallis(groups []domain.Sample) (statistic, pValue float64, err error) {
	k := len(groups)

	type obs struct {
		value float64
		group int
	}
	var pooled []obs
	for gi, g := range groups {
		for _, x := range g.Values {
			pooled = append(pooled, obs{value: x, group: gi})
		}
	}
	n := len(pooled)
	if n <= k {
		return 0, 0, fmt.Errorf("need more observations (%d) than groups (%d)", n, k)
	}

	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	// Average ranks for ties; accumulate the tie correction term on the fly.
	rankSums := make([]float64, k)
	tieTerm := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && pooled[j].value == pooled[i].value {
			j++
		}
		// Observations i..j-1 share the average of ranks i+1..j.
		avgRank := float64(i+1+j) / 2.0
		for m := i; m < j; m++ {
			rankSums[pooled[m].group] += avgRank
		}
		t := float64(j - i)
		tieTerm += t*t*t - t
		i = j
	}

	fn := float64(n)
	h := 0.0
	for gi, g := range groups {
		r := rankSums[gi]
		h += r * r / float64(g.N())
	}
	h = 12.0/(fn*(fn+1))*h - 3*(fn+1)

	correction := 1 - tieTerm/(fn*fn*fn-fn)
	if correction == 0 {
		return 0, 0, fmt.Errorf("all pooled values identical, H statistic undefined")
	}
	h /= correction

	chi := distuv.ChiSquared{K: float64(k - 1)}
	pValue = 1 - chi.CDF(h)
	return h, pValue, nil
}
