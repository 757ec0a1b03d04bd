package normality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	domain "evosweep/domain/stats"
)

// Tabulated significance levels and critical values for the normal case
// (Stephens 1974). Levels are ordered from the most permissive (15%) to the
// strictest (1%); critical values increase as the level decreases.
var (
	adLevels    = []float64{0.15, 0.10, 0.05, 0.025, 0.01}
	adCriticals = []float64{0.576, 0.656, 0.787, 0.918, 1.092}
)

// AndersonDarling is the tail-sensitive normality test. It weights extreme
// observations more heavily than KS and needs at least 8 observations. The
// verdict compares A^2 against the tabulated critical value at the level
// nearest the requested alpha.
type AndersonDarling struct{}

// NewAndersonDarling creates the tail-sensitive classifier
func NewAndersonDarling() *AndersonDarling {
	return &AndersonDarling{}
}

func (a *AndersonDarling) Method() domain.NormalityMethod {
	return domain.MethodAndersonDarling
}

func (a *AndersonDarling) MinSampleSize() int {
	return 8
}

// Classify computes A^2 and decides by critical value:
// normal when statistic <= critical value at the nearest tabulated level.
func (a *AndersonDarling) Classify(sample domain.Sample, alpha float64) domain.NormalityVerdict {
	mean, std, bad := precheck(a.Method(), a.MinSampleSize(), sample)
	if bad != nil {
		return *bad
	}

	z := standardize(sample.Values, mean, std)
	sort.Float64s(z)

	n := len(z)
	fn := float64(n)

	// A^2 = -n - (1/n) * sum (2i-1) [ln F(z_i) + ln(1 - F(z_{n+1-i}))]
	sum := 0.0
	for i := 0; i < n; i++ {
		lo := distuv.UnitNormal.CDF(z[i])
		hi := distuv.UnitNormal.CDF(z[n-1-i])
		// Clamp away from {0,1}: extreme standardized values would
		// otherwise drive the logs to -Inf.
		lo = clampUnit(lo)
		hi = clampUnit(hi)
		sum += float64(2*i+1) * (math.Log(lo) + math.Log(1-hi))
	}
	statistic := -fn - sum/fn

	// The tabulated values assume known parameters; with mean and std
	// estimated from the sample, apply Stephens' finite-n adjustment.
	adj := 1.0 + 4.0/fn - 25.0/(fn*fn)
	criticals := make([]float64, len(adCriticals))
	for i, cv := range adCriticals {
		criticals[i] = cv / adj
	}

	idx := nearestLevel(alpha)
	critical := criticals[idx]
	isNormal := statistic <= critical

	p := adPValue(statistic, criticals)

	v := domain.NewOKVerdict(a.Method(), statistic, p, isNormal, n, mean, std)
	v.CriticalValue = critical
	v.CriticalAlpha = adLevels[idx]
	return v
}

// nearestLevel picks the tabulated significance level closest to alpha
func nearestLevel(alpha float64) int {
	best := 0
	bestDist := math.Abs(adLevels[0] - alpha)
	for i, level := range adLevels[1:] {
		if d := math.Abs(level - alpha); d < bestDist {
			best = i + 1
			bestDist = d
		}
	}
	return best
}

// adPValue maps A^2 to an approximate p-value by linear interpolation
// between the bracketing tabulated levels. Outside the table the value is
// clamped to the nearest level rather than extrapolated: below the smallest
// critical value the p-value is reported as 0.15 (a lower bound), above the
// largest as 0.01 (an upper bound).
func adPValue(statistic float64, criticals []float64) float64 {
	if statistic <= criticals[0] {
		return adLevels[0]
	}
	if statistic >= criticals[len(criticals)-1] {
		return adLevels[len(adLevels)-1]
	}
	for i := 0; i < len(criticals)-1; i++ {
		lo, hi := criticals[i], criticals[i+1]
		if statistic > lo && statistic < hi {
			ratio := (statistic - lo) / (hi - lo)
			return adLevels[i] + ratio*(adLevels[i+1]-adLevels[i])
		}
		if statistic == hi {
			return adLevels[i+1]
		}
	}
	return adLevels[len(adLevels)-1]
}

func clampUnit(p float64) float64 {
	const eps = 1e-15
	if p < eps {
		return eps
	}
	if p > 1-eps {
		return 1 - eps
	}
	return p
}
