package omnibus

import (
	"fmt"

	"gonum.org/v1/gonum/stat/distuv"

	domain "evosweep/domain/stats"
)

// anovaOneWay computes the one-way F statistic across k groups:
// F = (SSB / (k-1)) / (SSW / (N-k)), p from the F distribution.
func anovaOneWay(groups []domain.Sample) (statistic, pValue float64, err error) {
	k := len(groups)

	total := 0
	grandSum := 0.0
	for _, g := range groups {
		total += g.N()
		for _, x := range g.Values {
			grandSum += x
		}
	}
	if total <= k {
		return 0, 0, fmt.Errorf("need more observations (%d) than groups (%d)", total, k)
	}
	grandMean := grandSum / float64(total)

	ssb := 0.0 // between-groups sum of squares
	ssw := 0.0 // within-groups sum of squares
	for _, g := range groups {
		sum := 0.0
		for _, x := range g.Values {
			sum += x
		}
		groupMean := sum / float64(g.N())
		d := groupMean - grandMean
		ssb += float64(g.N()) * d * d

		for _, x := range g.Values {
			e := x - groupMean
			ssw += e * e
		}
	}

	if ssw == 0 {
		return 0, 0, fmt.Errorf("zero within-group variance, F statistic undefined")
	}

	df1 := float64(k - 1)
	df2 := float64(total - k)
	statistic = (ssb / df1) / (ssw / df2)

	fDist := distuv.F{D1: df1, D2: df2}
	pValue = 1 - fDist.CDF(statistic)
	return statistic, pValue, nil
}
