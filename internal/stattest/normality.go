package stattest

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	"reflectbench/internal/errors"
)

// andersonBaseValues are the asymptotic Anderson-Darling critical values for
// the normal family at the significance levels below; the per-sample table
// scales them by 1/(1 + 4/n - 25/n^2).
var (
	andersonBaseValues        = [5]float64{0.576, 0.656, 0.787, 0.918, 1.092}
	andersonSignificanceLevls = [5]float64{15.0, 10.0, 5.0, 2.5, 1.0}
)

// NormalityAssessor runs three independent normality tests over one sample
// and combines them conservatively: data must pass all three to be treated
// as normal.
type NormalityAssessor struct {
	dist *Distributions
}

// NewNormalityAssessor creates a normality assessor
func NewNormalityAssessor() *NormalityAssessor {
	return &NormalityAssessor{dist: NewDistributions()}
}

// Assess produces the normality verdict for a sample at significance alpha.
// Zero-variance samples get a degenerate (non-normal) verdict instead of a
// division by zero.
func (a *NormalityAssessor) Assess(sample bench.Sample, alpha float64) (analysis.NormalityVerdict, error) {
	n := sample.Len()
	if n < 3 {
		return analysis.NormalityVerdict{}, errors.InsufficientSampleSize(n, 3, "normality testing")
	}

	data := sample.Values()
	mean, _ := stats.Mean(data)
	stdDev, _ := stats.StandardDeviationSample(data)

	verdict := analysis.NormalityVerdict{
		AndersonDarling: analysis.AndersonDarlingResult{
			CriticalValues:     andersonCriticalValues(n),
			SignificanceLevels: andersonSignificanceLevls,
		},
	}

	if stdDev == 0 {
		verdict.Degenerate = true
		verdict.IsNormal = false
		return verdict, nil
	}

	sorted := make([]float64, n)
	copy(sorted, data)
	sort.Float64s(sorted)

	verdict.ShapiroWilk = a.shapiroWilk(sorted)
	verdict.KolmogorovSmirnov = a.kolmogorovSmirnov(sorted, mean, stdDev)
	verdict.AndersonDarling.Statistic = a.andersonDarling(sorted, mean, stdDev)

	verdict.IsNormal = verdict.ShapiroWilk.PValue > alpha &&
		verdict.KolmogorovSmirnov.PValue > alpha &&
		verdict.AndersonDarling.Statistic < verdict.AndersonDarling.CriticalValue5Pct()

	return verdict, nil
}

func andersonCriticalValues(n int) [5]float64 {
	correction := 1.0 + 4.0/float64(n) - 25.0/float64(n*n)
	var out [5]float64
	for i, base := range andersonBaseValues {
		out[i] = base / correction
	}
	return out
}

// shapiroWilk computes the W statistic and p-value using Royston's AS R94
// polynomial approximation of the normal order-statistic weights. Input must
// be sorted with nonzero range.
func (a *NormalityAssessor) shapiroWilk(sorted []float64) analysis.TestResult {
	n := len(sorted)
	fn := float64(n)

	// Expected normal order statistics via Blom-style plotting positions.
	m := make([]float64, n)
	ssq := 0.0
	for i := 0; i < n; i++ {
		m[i] = a.dist.NormalQuantile((float64(i+1) - 0.375) / (fn + 0.25))
		ssq += m[i] * m[i]
	}

	weights := shapiroWeights(m, ssq, n)

	mean := 0.0
	for _, x := range sorted {
		mean += x
	}
	mean /= fn

	num := 0.0
	den := 0.0
	for i, x := range sorted {
		num += weights[i] * x
		den += (x - mean) * (x - mean)
	}
	if den == 0 {
		return analysis.TestResult{Statistic: 1, PValue: 0}
	}

	w := num * num / den
	if w > 1 {
		w = 1
	}

	return analysis.TestResult{Statistic: w, PValue: a.shapiroPValue(w, n)}
}

// shapiroWeights builds the AS R94 weight vector: the two (one for n <= 5)
// outermost weights come from Royston's polynomials in u = 1/sqrt(n), the
// rest are rescaled expected order statistics.
func shapiroWeights(m []float64, ssq float64, n int) []float64 {
	weights := make([]float64, n)

	if n == 3 {
		weights[0] = -math.Sqrt(0.5)
		weights[2] = math.Sqrt(0.5)
		return weights
	}

	u := 1.0 / math.Sqrt(float64(n))
	rssq := math.Sqrt(ssq)

	an := polyval([]float64{-2.706056, 4.434685, -2.071190, -0.147981, 0.221157, 0}, u) + m[n-1]/rssq

	if n <= 5 {
		phi := (ssq - 2*m[n-1]*m[n-1]) / (1 - 2*an*an)
		fill := math.Sqrt(phi)
		for i := 1; i < n-1; i++ {
			weights[i] = m[i] / fill
		}
		weights[n-1] = an
		weights[0] = -an
		return weights
	}

	an1 := polyval([]float64{-3.582633, 5.682633, -1.752461, -0.293762, 0.042981, 0}, u) + m[n-2]/rssq

	phi := (ssq - 2*m[n-1]*m[n-1] - 2*m[n-2]*m[n-2]) / (1 - 2*an*an - 2*an1*an1)
	fill := math.Sqrt(phi)
	for i := 2; i < n-2; i++ {
		weights[i] = m[i] / fill
	}
	weights[n-1] = an
	weights[n-2] = an1
	weights[0] = -an
	weights[1] = -an1
	return weights
}

// shapiroPValue maps W to a p-value with Royston's normalizing transforms
func (a *NormalityAssessor) shapiroPValue(w float64, n int) float64 {
	fn := float64(n)

	if n == 3 {
		// Exact small-sample distribution.
		p := (6.0 / math.Pi) * (math.Asin(math.Sqrt(w)) - math.Asin(math.Sqrt(0.75)))
		return clamp01(p)
	}

	w1 := 1 - w
	if w1 < 1e-12 {
		// W numerically at 1: no evidence against normality.
		return 1.0
	}

	var z float64
	if n <= 11 {
		gamma := -2.273 + 0.459*fn
		if gamma-math.Log(w1) <= 0 {
			return 0
		}
		mu := 0.5440 - 0.39978*fn + 0.025054*fn*fn - 0.0006714*fn*fn*fn
		sigma := math.Exp(1.3822 - 0.77857*fn + 0.062767*fn*fn - 0.0020322*fn*fn*fn)
		z = (-math.Log(gamma-math.Log(w1)) - mu) / sigma
	} else {
		ln := math.Log(fn)
		mu := -1.5861 - 0.31082*ln - 0.083751*ln*ln + 0.0038915*ln*ln*ln
		sigma := math.Exp(-0.4803 - 0.082676*ln + 0.0030302*ln*ln)
		z = (math.Log(w1) - mu) / sigma
	}

	return clamp01(1 - a.dist.NormalCDF(z))
}

// kolmogorovSmirnov runs the goodness-of-fit test against a normal
// distribution parameterized by the sample's own mean and standard deviation.
// Using sample-estimated parameters makes the classical critical values
// approximate; this matches the upstream methodology.
func (a *NormalityAssessor) kolmogorovSmirnov(sorted []float64, mean, stdDev float64) analysis.TestResult {
	n := len(sorted)
	fn := float64(n)

	dMax := 0.0
	for i, x := range sorted {
		f := a.dist.NormalCDF((x - mean) / stdDev)
		dPlus := (float64(i+1))/fn - f
		dMinus := f - float64(i)/fn
		if dPlus > dMax {
			dMax = dPlus
		}
		if dMinus > dMax {
			dMax = dMinus
		}
	}

	return analysis.TestResult{
		Statistic: dMax,
		PValue:    a.dist.KolmogorovSF(math.Sqrt(fn) * dMax),
	}
}

// andersonDarling computes the A² statistic against the normal family
func (a *NormalityAssessor) andersonDarling(sorted []float64, mean, stdDev float64) float64 {
	n := len(sorted)
	fn := float64(n)

	sum := 0.0
	for i := 0; i < n; i++ {
		zLow := (sorted[i] - mean) / stdDev
		zHigh := (sorted[n-1-i] - mean) / stdDev
		cdf := boundedCDF(a.dist.NormalCDF(zLow))
		sf := boundedCDF(1 - a.dist.NormalCDF(zHigh))
		sum += (2*float64(i+1) - 1) * (math.Log(cdf) + math.Log(sf))
	}

	return -fn - sum/fn
}

// boundedCDF keeps probabilities away from 0 and 1 so their logs stay finite
func boundedCDF(p float64) float64 {
	const eps = 1e-300
	if p < eps {
		return eps
	}
	if p > 1-1e-16 {
		return 1 - 1e-16
	}
	return p
}

// polyval evaluates a polynomial with coefficients ordered from the highest
// degree down, matching how Royston's constants are tabulated
func polyval(coefs []float64, x float64) float64 {
	result := 0.0
	for _, c := range coefs {
		result = result*x + c
	}
	return result
}

func clamp01(p float64) float64 {
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}
