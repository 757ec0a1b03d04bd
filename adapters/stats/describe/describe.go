// Package describe computes per-group descriptive statistics. These are
// produced for every group regardless of which hypothesis test runs, so
// result tables stay comparable across configurations.
package describe

import (
	"github.com/montanaflynn/stats"

	domain "evosweep/domain/stats"
)

// Describe summarizes one group of observations. Std is the sample standard
// deviation (ddof=1); for n=1 it is 0.
func Describe(values []float64) domain.DescriptiveStats {
	if len(values) == 0 {
		return domain.DescriptiveStats{}
	}

	mean, _ := stats.Mean(values)
	min, _ := stats.Min(values)
	max, _ := stats.Max(values)
	median, _ := stats.Median(values)
	q25, _ := stats.Percentile(values, 25)
	q75, _ := stats.Percentile(values, 75)

	std := 0.0
	if len(values) > 1 {
		std, _ = stats.StandardDeviationSample(values)
	}

	return domain.DescriptiveStats{
		N:      len(values),
		Mean:   mean,
		Std:    std,
		Median: median,
		Min:    min,
		Max:    max,
		Q25:    q25,
		Q75:    q75,
	}
}

// MeanStd returns just the mean and sample standard deviation.
func MeanStd(values []float64) (mean, std float64) {
	mean, _ = stats.Mean(values)
	if len(values) > 1 {
		std, _ = stats.StandardDeviationSample(values)
	}
	return mean, std
}
