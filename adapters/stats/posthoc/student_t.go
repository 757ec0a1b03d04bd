package posthoc

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// studentT is the two-sample t test with pooled variance, two-sided.
func studentT(x, y []float64) (statistic, pValue float64, err error) {
	n1, n2 := float64(len(x)), float64(len(y))
	if n1 < 2 || n2 < 2 {
		return 0, 0, fmt.Errorf("both groups need at least 2 observations")
	}

	m1, v1 := meanVar(x)
	m2, v2 := meanVar(y)

	pooled := ((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2)
	if pooled == 0 {
		return 0, 0, fmt.Errorf("zero pooled variance")
	}

	statistic = (m1 - m2) / math.Sqrt(pooled*(1/n1+1/n2))

	df := n1 + n2 - 2
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	pValue = 2 * (1 - tDist.CDF(math.Abs(statistic)))
	return statistic, pValue, nil
}

// meanVar returns the mean and sample variance (ddof=1)
func meanVar(data []float64) (mean, variance float64) {
	n := float64(len(data))
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean = sum / n

	if len(data) < 2 {
		return mean, 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return mean, sumSq / (n - 1)
}
