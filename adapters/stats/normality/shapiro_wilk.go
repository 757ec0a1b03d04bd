package normality

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"

	domain "evosweep/domain/stats"
)

// ShapiroWilk implements Royston's AS R94 approximation of the Shapiro-Wilk
// W test. It regresses the ordered sample against expected normal order
// statistics and has good power for small to medium samples (n >= 3).
type ShapiroWilk struct{}

// NewShapiroWilk creates the regression-type classifier
func NewShapiroWilk() *ShapiroWilk {
	return &ShapiroWilk{}
}

func (s *ShapiroWilk) Method() domain.NormalityMethod {
	return domain.MethodShapiroWilk
}

func (s *ShapiroWilk) MinSampleSize() int {
	return 3
}

// Classify computes W and its p-value. Decision rule: normal when p >= alpha.
func (s *ShapiroWilk) Classify(sample domain.Sample, alpha float64) domain.NormalityVerdict {
	mean, std, bad := precheck(s.Method(), s.MinSampleSize(), sample)
	if bad != nil {
		return *bad
	}

	y := make([]float64, len(sample.Values))
	copy(y, sample.Values)
	sort.Float64s(y)

	w, p, err := swilk(y, mean)
	if err != nil {
		return domain.NewFailedVerdict(s.Method(), len(y), mean, std, err)
	}

	return domain.NewOKVerdict(s.Method(), w, p, p >= alpha, len(y), mean, std)
}

// swilk computes the W statistic and p-value for sorted data (AS R94).
func swilk(y []float64, mean float64) (w, p float64, err error) {
	n := len(y)
	fn := float64(n)

	// Expected values of normal order statistics (Blom scores).
	m := make([]float64, n)
	ssm := 0.0
	for i := 0; i < n; i++ {
		m[i] = distuv.UnitNormal.Quantile((float64(i+1) - 0.375) / (fn + 0.25))
		ssm += m[i] * m[i]
	}

	// Royston's corrected weights.
	a := make([]float64, n)
	if n == 3 {
		a[0] = -math.Sqrt(0.5)
		a[2] = math.Sqrt(0.5)
	} else {
		u := 1.0 / math.Sqrt(fn)
		rsm := math.Sqrt(ssm)
		an := -2.706056*pow5(u) + 4.434685*pow4(u) - 2.071190*pow3(u) -
			0.147981*u*u + 0.221157*u + m[n-1]/rsm

		if n <= 5 {
			phi := (ssm - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
			if phi <= 0 {
				return 0, 0, errInvalidWeights
			}
			sp := math.Sqrt(phi)
			for i := 1; i < n-1; i++ {
				a[i] = m[i] / sp
			}
			a[n-1] = an
			a[0] = -an
		} else {
			an1 := -3.582633*pow5(u) + 5.682633*pow4(u) - 1.752461*pow3(u) -
				0.293762*u*u + 0.042981*u + m[n-2]/rsm
			phi := (ssm - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) /
				(1 - 2*an*an - 2*an1*an1)
			if phi <= 0 {
				return 0, 0, errInvalidWeights
			}
			sp := math.Sqrt(phi)
			for i := 2; i < n-2; i++ {
				a[i] = m[i] / sp
			}
			a[n-1] = an
			a[n-2] = an1
			a[0] = -an
			a[1] = -an1
		}
	}

	num := 0.0
	den := 0.0
	for i, yi := range y {
		num += a[i] * yi
		d := yi - mean
		den += d * d
	}
	if den == 0 {
		return 0, 0, errInvalidWeights
	}
	w = num * num / den
	if w > 1 {
		w = 1
	}

	p = swilkPValue(w, n)
	return w, p, nil
}

// swilkPValue maps W to a p-value via Royston's normalizing transforms.
func swilkPValue(w float64, n int) float64 {
	fn := float64(n)

	if n == 3 {
		// Exact for n=3.
		p := (6.0 / math.Pi) * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		if p < 0 {
			return 0
		}
		if p > 1 {
			return 1
		}
		return p
	}

	oneMinusW := 1 - w
	if oneMinusW <= 0 {
		return 1.0
	}

	var z float64
	if n <= 11 {
		g := -2.273 + 0.459*fn
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		arg := g - math.Log(oneMinusW)
		if arg <= 0 {
			return 0
		}
		z = (-math.Log(arg) - mu) / sigma
	} else {
		ln := math.Log(fn)
		mu := -1.5861 - 0.31082*ln - 0.083751*ln*ln + 0.0038915*ln*ln*ln
		sigma := math.Exp(-0.4803 - 0.082676*ln + 0.0030302*ln*ln)
		z = (math.Log(oneMinusW) - mu) / sigma
	}

	return 1 - distuv.UnitNormal.CDF(z)
}

func pow3(x float64) float64 { return x * x * x }
func pow4(x float64) float64 { return x * x * x * x }
func pow5(x float64) float64 { return x * x * x * x * x }

var errInvalidWeights = &weightsError{}

type weightsError struct{}

func (*weightsError) Error() string { return "order-statistic weights are not computable" }
