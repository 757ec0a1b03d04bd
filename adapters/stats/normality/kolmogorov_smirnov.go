package normality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	domain "evosweep/domain/stats"
)

// KolmogorovSmirnov compares the empirical distribution of the standardized
// sample against the standard normal CDF. It is sensitive to differences in
// location, spread and shape, and needs at least 3 observations.
type KolmogorovSmirnov struct{}

// NewKolmogorovSmirnov creates the ECDF-based classifier
func NewKolmogorovSmirnov() *KolmogorovSmirnov {
	return &KolmogorovSmirnov{}
}

func (k *KolmogorovSmirnov) Method() domain.NormalityMethod {
	return domain.MethodKolmogorovSmirnov
}

func (k *KolmogorovSmirnov) MinSampleSize() int {
	return 3
}

// Classify runs the one-sample KS test. Decision rule: normal when
// p >= alpha.
func (k *KolmogorovSmirnov) Classify(sample domain.Sample, alpha float64) domain.NormalityVerdict {
	mean, std, bad := precheck(k.Method(), k.MinSampleSize(), sample)
	if bad != nil {
		return *bad
	}

	z := standardize(sample.Values, mean, std)
	sort.Float64s(z)

	// D = sup |ECDF - CDF|, evaluated at both sides of each jump.
	n := len(z)
	d := 0.0
	for i, zi := range z {
		cdf := distuv.UnitNormal.CDF(zi)
		upper := float64(i+1)/float64(n) - cdf
		lower := cdf - float64(i)/float64(n)
		if upper > d {
			d = upper
		}
		if lower > d {
			d = lower
		}
	}

	p := ksPValue(d, n)
	return domain.NewOKVerdict(k.Method(), d, p, p >= alpha, n, mean, std)
}

// ksPValue approximates the two-sided KS p-value with the asymptotic
// Kolmogorov distribution and Stephens' finite-n correction
// lambda = (sqrt(n) + 0.12 + 0.11/sqrt(n)) * D.
func ksPValue(d float64, n int) float64 {
	if d <= 0 {
		return 1.0
	}
	sqrtN := math.Sqrt(float64(n))
	lambda := (sqrtN + 0.12 + 0.11/sqrtN) * d

	// Q(lambda) = 2 * sum_{j>=1} (-1)^{j-1} exp(-2 j^2 lambda^2)
	sum := 0.0
	sign := 1.0
	for j := 1; j <= 100; j++ {
		term := sign * math.Exp(-2*float64(j*j)*lambda*lambda)
		sum += term
		if math.Abs(term) < 1e-12 {
			break
		}
		sign = -sign
	}

	p := 2 * sum
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
