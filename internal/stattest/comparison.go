package stattest

import (
	"math"
	"sort"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	"reflectbench/internal/errors"
)

// PairedComparer selects and runs the appropriate paired test: a paired
// t-test when both samples were deemed normal, a Wilcoxon signed-rank test
// otherwise. The branch is chosen once per call and never revisited.
type PairedComparer struct {
	dist *Distributions
}

// NewPairedComparer creates a paired comparer
func NewPairedComparer() *PairedComparer {
	return &PairedComparer{dist: NewDistributions()}
}

// Compare runs the selected test on the per-index differences at
// significance alpha
func (c *PairedComparer) Compare(pair bench.MetricSamples, bothNormal bool, alpha float64) (analysis.ComparisonResult, error) {
	n := pair.PairCount()
	if n < 2 {
		return analysis.ComparisonResult{}, errors.InsufficientSampleSize(n, 2, "paired comparison")
	}

	diffs := make([]float64, n)
	for i := range diffs {
		diffs[i] = pair.Reflection[i] - pair.Manual[i]
	}

	if bothNormal {
		return c.pairedTTest(diffs, alpha), nil
	}
	return c.wilcoxonSignedRank(diffs, alpha), nil
}

// pairedTTest tests the null hypothesis that the mean per-pair difference is
// zero, with df = n-1 and a t-based CI for the mean difference.
func (c *PairedComparer) pairedTTest(diffs []float64, alpha float64) analysis.ComparisonResult {
	n := len(diffs)
	fn := float64(n)
	df := n - 1

	meanDiff := 0.0
	for _, d := range diffs {
		meanDiff += d
	}
	meanDiff /= fn

	ssq := 0.0
	for _, d := range diffs {
		ssq += (d - meanDiff) * (d - meanDiff)
	}
	sdDiff := math.Sqrt(ssq / float64(df))

	detail := &analysis.PairedDetail{
		DegreesOfFreedom: df,
		MeanDifference:   meanDiff,
		DifferenceCI:     analysis.ConfidenceInterval{Lower: meanDiff, Upper: meanDiff, Level: 1 - alpha},
	}

	// Identical paired samples: zero differences everywhere. The statistic
	// is defined as 0 with p = 1 rather than 0/0.
	if sdDiff == 0 {
		if meanDiff == 0 {
			return analysis.ComparisonResult{
				Method:    analysis.MethodPairedT,
				Statistic: 0,
				PValue:    1,
				Paired:    detail,
			}
		}
		// Constant nonzero difference: evidence is as strong as it gets.
		return analysis.ComparisonResult{
			Method:      analysis.MethodPairedT,
			Statistic:   math.Copysign(math.MaxFloat64, meanDiff),
			PValue:      0,
			Significant: alpha > 0,
			Paired:      detail,
		}
	}

	se := sdDiff / math.Sqrt(fn)
	tStat := meanDiff / se
	pValue := c.dist.TTestPValue(tStat, df)

	tCritical := c.dist.TQuantile(1-alpha/2, df)
	detail.DifferenceCI.Lower = meanDiff - tCritical*se
	detail.DifferenceCI.Upper = meanDiff + tCritical*se

	return analysis.ComparisonResult{
		Method:      analysis.MethodPairedT,
		Statistic:   tStat,
		PValue:      pValue,
		Significant: pValue < alpha,
		Paired:      detail,
	}
}

// wilcoxonSignedRank runs the two-sided signed-rank test on the paired
// differences. Zero differences are dropped before ranking; the reported
// statistic is min(W+, W-), the smaller of the signed rank sums.
func (c *PairedComparer) wilcoxonSignedRank(diffs []float64, alpha float64) analysis.ComparisonResult {
	nonzero := make([]float64, 0, len(diffs))
	for _, d := range diffs {
		if d != 0 {
			nonzero = append(nonzero, d)
		}
	}

	// All pairs tied: no evidence of a shift in either direction.
	if len(nonzero) == 0 {
		return analysis.ComparisonResult{
			Method:    analysis.MethodWilcoxon,
			Statistic: 0,
			PValue:    1,
		}
	}

	ranks, tieCounts := rankAbsolute(nonzero)

	wPlus := 0.0
	totalRankSum := 0.0
	for i, d := range nonzero {
		totalRankSum += ranks[i]
		if d > 0 {
			wPlus += ranks[i]
		}
	}
	wMinus := totalRankSum - wPlus

	statistic := math.Min(wPlus, wMinus)
	pValue := c.dist.WilcoxonSignedRankPValue(wPlus, len(nonzero), tieCounts)

	return analysis.ComparisonResult{
		Method:      analysis.MethodWilcoxon,
		Statistic:   statistic,
		PValue:      pValue,
		Significant: pValue < alpha,
	}
}

// rankAbsolute assigns average ranks to |d| values, returning the rank per
// input index and the size of each tie group for the variance correction
func rankAbsolute(diffs []float64) (ranks []float64, tieCounts []int) {
	n := len(diffs)
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		return math.Abs(diffs[order[a]]) < math.Abs(diffs[order[b]])
	})

	ranks = make([]float64, n)
	i := 0
	for i < n {
		j := i
		for j+1 < n && math.Abs(diffs[order[j+1]]) == math.Abs(diffs[order[i]]) {
			j++
		}
		// Average rank over the tie group [i, j].
		avg := float64(i+j+2) / 2.0
		for k := i; k <= j; k++ {
			ranks[order[k]] = avg
		}
		tieCounts = append(tieCounts, j-i+1)
		i = j + 1
	}
	return ranks, tieCounts
}
