package posthoc

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// mannWhitneyU is the two-sided rank-sum test with the normal approximation,
// tie-corrected variance and continuity correction.
func mannWhitneyU(x, y []float64) (statistic, pValue float64, err error) {
	n1, n2 := len(x), len(y)
	if n1 == 0 || n2 == 0 {
		return 0, 0, fmt.Errorf("both groups need at least 1 observation")
	}

	type obs struct {
		value float64
		first bool
	}
	pooled := make([]obs, 0, n1+n2)
	for _, v := range x {
		pooled = append(pooled, obs{value: v, first: true})
	}
	for _, v := range y {
		pooled = append(pooled, obs{value: v})
	}
	sort.Slice(pooled, func(i, j int) bool { return pooled[i].value < pooled[j].value })

	n := len(pooled)
	rankSum1 := 0.0
	tieTerm := 0.0
	for i := 0; i < n; {
		j := i
		for j < n && pooled[j].value == pooled[i].value {
			j++
		}
		avgRank := float64(i+1+j) / 2.0
		for m := i; m < j; m++ {
			if pooled[m].first {
				rankSum1 += avgRank
			}
		}
		t := float64(j - i)
		tieTerm += t*t*t - t
		i = j
	}

	fn1, fn2, fn := float64(n1), float64(n2), float64(n)
	u1 := rankSum1 - fn1*(fn1+1)/2.0
	statistic = u1

	meanU := fn1 * fn2 / 2.0
	varU := fn1 * fn2 / 12.0 * ((fn + 1) - tieTerm/(fn*(fn-1)))
	if varU <= 0 {
		return 0, 0, fmt.Errorf("all pooled values identical, U variance is zero")
	}

	// Continuity correction toward the mean.
	z := (math.Abs(u1-meanU) - 0.5) / math.Sqrt(varU)
	if z < 0 {
		z = 0
	}
	pValue = 2 * (1 - distuv.UnitNormal.CDF(z))
	if pValue > 1 {
		pValue = 1
	}
	return statistic, pValue, nil
}
