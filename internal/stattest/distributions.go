package stattest

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides unified access to the distribution math used by the
// validation pipeline, so CDF/quantile calculations live in one place.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue computes the two-sided p-value for a t-statistic using the
// Student's t-distribution
func (d *Distributions) TTestPValue(tStatistic float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 1.0
	}

	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}
	return 2 * (1 - tDist.CDF(math.Abs(tStatistic)))
}

// TQuantile computes the quantile of the Student's t-distribution
func (d *Distributions) TQuantile(p float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 0
	}
	return distuv.StudentsT{Mu: 0, Sigma: 1, Nu: float64(degreesOfFreedom)}.Quantile(p)
}

// NormalCDF computes the cumulative distribution function of the standard normal
func (d *Distributions) NormalCDF(x float64) float64 {
	return distuv.UnitNormal.CDF(x)
}

// NormalQuantile computes the quantile of the standard normal (inverse CDF)
func (d *Distributions) NormalQuantile(p float64) float64 {
	return distuv.UnitNormal.Quantile(p)
}

// KolmogorovSF computes the survival function of the asymptotic Kolmogorov
// distribution at t = sqrt(n)*D, via the alternating series
// Q(t) = 2 * sum_{k>=1} (-1)^{k-1} exp(-2 k^2 t^2).
func (d *Distributions) KolmogorovSF(t float64) float64 {
	if t <= 0 {
		return 1.0
	}
	sum := 0.0
	for k := 1; k <= 100; k++ {
		term := math.Exp(-2 * float64(k*k) * t * t)
		if k%2 == 1 {
			sum += term
		} else {
			sum -= term
		}
		if term < 1e-12 {
			break
		}
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

// NoncentralTCDF approximates the CDF of the noncentral t-distribution with
// noncentrality nc at t, using the standard normal approximation
// P(T' <= t) ~= Phi((t*(1 - 1/(4*df)) - nc) / sqrt(1 + t^2/(2*df))).
// gonum has no noncentral t; the approximation is accurate to a few decimal
// places for df >= 2, which is adequate for power reporting.
func (d *Distributions) NoncentralTCDF(t, nc float64, degreesOfFreedom int) float64 {
	if degreesOfFreedom <= 0 {
		return 0.5
	}
	df := float64(degreesOfFreedom)
	num := t*(1-1/(4*df)) - nc
	den := math.Sqrt(1 + t*t/(2*df))
	return d.NormalCDF(num / den)
}

// WilcoxonSignedRankPValue computes the two-sided p-value for the signed-rank
// sum wPlus over n nonzero differences. With no ties and small n the exact
// distribution of W+ is enumerated; otherwise a normal approximation with a
// tie correction is used.
func (d *Distributions) WilcoxonSignedRankPValue(wPlus float64, n int, tieCounts []int) float64 {
	if n <= 0 {
		return 1.0
	}

	hasTies := false
	for _, t := range tieCounts {
		if t > 1 {
			hasTies = true
			break
		}
	}

	if !hasTies && n <= 20 {
		return d.wilcoxonExactTwoSidedPValue(wPlus, n)
	}

	meanW := float64(n*(n+1)) / 4.0
	variance := float64(n*(n+1)*(2*n+1)) / 24.0
	for _, t := range tieCounts {
		if t > 1 {
			variance -= float64(t*t*t-t) / 48.0
		}
	}
	if variance <= 0 {
		return 1.0
	}

	z := (wPlus - meanW) / math.Sqrt(variance)
	p := 2 * (1 - d.NormalCDF(math.Abs(z)))
	if p > 1 {
		return 1
	}
	return p
}

func (d *Distributions) wilcoxonExactTwoSidedPValue(wPlus float64, n int) float64 {
	// W+ is integer-valued when there are no ties; round to be robust to
	// float representation.
	wObs := int(math.Round(wPlus))
	if wObs < 0 {
		wObs = 0
	}

	totalRankSum := n * (n + 1) / 2
	if wObs > totalRankSum {
		wObs = totalRankSum
	}

	// Two-sided p-value uses symmetry: P(W+ <= w) with w = min(W+, total-W+),
	// then doubled.
	w := wObs
	if totalRankSum-wObs < w {
		w = totalRankSum - wObs
	}

	// Dynamic programming over subset sums of ranks 1..n:
	// dp[s] = number of sign assignments producing W+ = s.
	dp := make([]uint64, totalRankSum+1)
	dp[0] = 1
	for r := 1; r <= n; r++ {
		for s := totalRankSum; s >= r; s-- {
			dp[s] += dp[s-r]
		}
	}

	totalOutcomes := uint64(1) << uint(n)
	var cum uint64
	for s := 0; s <= w; s++ {
		cum += dp[s]
	}

	pTwoSide := 2 * float64(cum) / float64(totalOutcomes)
	if pTwoSide > 1.0 {
		return 1.0
	}
	return pTwoSide
}
