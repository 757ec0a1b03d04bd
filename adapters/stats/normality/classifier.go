// Package normality decides whether a sample is compatible with a normal
// distribution. Three classifiers are provided: Shapiro-Wilk (regression
// type), Kolmogorov-Smirnov (ECDF based) and Anderson-Darling (tail
// sensitive). All of them fail soft: samples below the method minimum or
// with zero variance produce a tagged verdict with a note instead of an
// error, and are never classified as normal.
package normality

import (
	domain "evosweep/domain/stats"

	"evosweep/adapters/stats/describe"
)

// Classifier runs one normality test against a single sample
type Classifier interface {
	Method() domain.NormalityMethod
	MinSampleSize() int
	Classify(sample domain.Sample, alpha float64) domain.NormalityVerdict
}

// ForMethod returns the classifier implementing the given method
func ForMethod(method domain.NormalityMethod) (Classifier, bool) {
	switch method {
	case domain.MethodShapiroWilk:
		return NewShapiroWilk(), true
	case domain.MethodKolmogorovSmirnov:
		return NewKolmogorovSmirnov(), true
	case domain.MethodAndersonDarling:
		return NewAndersonDarling(), true
	}
	return nil, false
}

// precheck applies the shared preconditions: minimum sample size, then zero
// variance. Both are expected degenerate inputs, not exceptions, so they are
// checked before any numeric routine runs.
func precheck(method domain.NormalityMethod, minimum int, sample domain.Sample) (mean, std float64, verdict *domain.NormalityVerdict) {
	mean, std = describe.MeanStd(sample.Values)

	if sample.N() < minimum {
		v := domain.NewInsufficientVerdict(method, sample.N(), minimum, mean, std)
		return mean, std, &v
	}
	if std == 0 {
		v := domain.NewDegenerateVerdict(method, sample.N(), mean)
		return mean, std, &v
	}
	return mean, std, nil
}

// standardize maps the sample to (x - mean) / std for comparison against the
// standard normal reference.
func standardize(values []float64, mean, std float64) []float64 {
	z := make([]float64, len(values))
	for i, x := range values {
		z[i] = (x - mean) / std
	}
	return z
}
