package stattest

import (
	"math"

	"github.com/montanaflynn/stats"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	"reflectbench/internal/errors"
)

// ComputeDescriptiveStats summarizes one sample: mean, sample standard
// deviation (n-1 denominator), min, max, median, and a t-distribution
// confidence interval for the population mean at the given level.
// Samples below two observations have no defined standard error; that fails
// fast instead of propagating NaN.
func ComputeDescriptiveStats(sample bench.Sample, confidenceLevel float64) (analysis.DescriptiveStats, error) {
	n := sample.Len()
	if n < 2 {
		return analysis.DescriptiveStats{}, errors.InsufficientSampleSize(n, 2, "descriptive statistics")
	}

	data := sample.Values()
	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviationSample(data)
	minVal, _ := stats.Min(data)
	maxVal, _ := stats.Max(data)
	median, _ := stats.Median(data)

	return analysis.DescriptiveStats{
		Mean:       mean,
		StdDev:     stdDev,
		Min:        minVal,
		Max:        maxVal,
		Median:     median,
		MeanCI:     meanConfidenceInterval(mean, stdDev, n, confidenceLevel),
		SampleSize: n,
	}, nil
}

// meanConfidenceInterval builds the symmetric t-based interval around the
// mean. A zero standard deviation collapses the interval to the mean itself
// rather than dividing by zero anywhere.
func meanConfidenceInterval(mean, stdDev float64, n int, confidenceLevel float64) analysis.ConfidenceInterval {
	ci := analysis.ConfidenceInterval{Lower: mean, Upper: mean, Level: confidenceLevel}
	if stdDev == 0 {
		return ci
	}

	dist := NewDistributions()
	alpha := 1.0 - confidenceLevel
	tCritical := dist.TQuantile(1.0-alpha/2.0, n-1)
	margin := tCritical * stdDev / math.Sqrt(float64(n))

	ci.Lower = mean - margin
	ci.Upper = mean + margin
	return ci
}
