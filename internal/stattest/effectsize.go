package stattest

import (
	"math"

	"github.com/montanaflynn/stats"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	"reflectbench/internal/errors"
)

// ComputeEffectSize derives the standardized mean-difference measures from
// both raw samples.
//
// Cohen's d divides reflection-minus-manual by the pooled standard deviation
// sqrt((var(refl) + var(manual)) / 2); callers reading the sign must know
// reflection is the first operand. Percentage improvement keeps the manual
// mean as its baseline denominator.
//
// Identical-valued samples have zero pooled variance, which makes d undefined;
// that is surfaced as a DEGENERATE_EFFECT_SIZE error, distinct from a tiny
// but nonzero d.
func ComputeEffectSize(pair bench.MetricSamples) (analysis.EffectSize, error) {
	n1 := pair.Reflection.Len()
	n2 := pair.Manual.Len()
	if n1 < 2 || n2 < 2 {
		return analysis.EffectSize{}, errors.InsufficientSampleSize(min(n1, n2), 2, "effect size")
	}

	refl := pair.Reflection.Values()
	manual := pair.Manual.Values()

	meanRefl, _ := stats.Mean(refl)
	meanManual, _ := stats.Mean(manual)
	varRefl, _ := stats.SampleVariance(refl)
	varManual, _ := stats.SampleVariance(manual)

	pooledStd := math.Sqrt((varRefl + varManual) / 2)
	if pooledStd == 0 {
		return analysis.EffectSize{}, errors.DegenerateEffectSize(
			"zero pooled variance: both samples are constant, Cohen's d is undefined")
	}

	cohensD := (meanRefl - meanManual) / pooledStd

	// Hedges' correction for small-sample upward bias.
	correction := 1.0 - 3.0/(4.0*float64(n1+n2)-9.0)
	hedgesG := cohensD * correction

	percentImprovement := 0.0
	if meanManual != 0 {
		percentImprovement = (meanManual - meanRefl) / meanManual * 100.0
	}

	return analysis.EffectSize{
		CohensD:            cohensD,
		HedgesG:            hedgesG,
		PercentImprovement: percentImprovement,
		Magnitude:          analysis.InterpretMagnitude(math.Abs(cohensD)),
	}, nil
}
