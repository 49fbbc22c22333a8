package stattest

import (
	"errors"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	apperrors "reflectbench/internal/errors"
)

// DefaultAlpha is the significance threshold applied uniformly to normality
// tests, the comparison test, and power adequacy when none is configured.
const DefaultAlpha = 0.05

// StatisticalValidator produces a complete statistical verdict for one
// metric's paired samples: descriptives, normality, test selection, effect
// size, and power. It is stateless; every call computes fresh from its
// inputs and calls are safe to run in parallel across metrics.
type StatisticalValidator struct {
	alpha     float64
	normality *NormalityAssessor
	comparer  *PairedComparer
	power     *PowerAnalyzer
}

// NewStatisticalValidator creates a validator with the given significance
// threshold; alpha outside (0,1) falls back to the default.
func NewStatisticalValidator(alpha float64) *StatisticalValidator {
	if alpha <= 0 || alpha >= 1 {
		alpha = DefaultAlpha
	}
	return &StatisticalValidator{
		alpha:     alpha,
		normality: NewNormalityAssessor(),
		comparer:  NewPairedComparer(),
		power:     NewPowerAnalyzer(),
	}
}

// Alpha returns the configured significance threshold
func (v *StatisticalValidator) Alpha() float64 {
	return v.alpha
}

// AnalyzeComparison runs the full pipeline over one paired observation set.
// Input-level failures (too few observations) abort with an error; local
// computational failures (degenerate effect size, unsolvable power) are
// embedded in the result as fault variants so one bad derivation does not
// discard the rest of the bundle.
func (v *StatisticalValidator) AnalyzeComparison(pair bench.MetricSamples) (*analysis.MetricAnalysis, error) {
	confidence := 1 - v.alpha

	reflStats, err := ComputeDescriptiveStats(pair.Reflection, confidence)
	if err != nil {
		return nil, err
	}
	manualStats, err := ComputeDescriptiveStats(pair.Manual, confidence)
	if err != nil {
		return nil, err
	}

	reflNormality, err := v.normality.Assess(pair.Reflection, v.alpha)
	if err != nil {
		return nil, err
	}
	manualNormality, err := v.normality.Assess(pair.Manual, v.alpha)
	if err != nil {
		return nil, err
	}

	bothNormal := reflNormality.IsNormal && manualNormality.IsNormal
	comparison, err := v.comparer.Compare(pair, bothNormal, v.alpha)
	if err != nil {
		return nil, err
	}

	result := &analysis.MetricAnalysis{
		Metric:              pair.Metric,
		Alpha:               v.alpha,
		ReflectionStats:     reflStats,
		ManualStats:         manualStats,
		ReflectionNormality: reflNormality,
		ManualNormality:     manualNormality,
		Comparison:          comparison,
	}

	effect, err := ComputeEffectSize(pair)
	if err != nil {
		result.EffectSize.Fault = faultFrom(err, analysis.FaultDegenerateEffectSize)
		// Power needs the effect size; without it the power analysis is
		// equally unavailable.
		result.Power.Fault = analysis.NewFault(analysis.FaultPowerSolveFailure,
			"effect size unavailable, power not computed")
		return result, nil
	}
	result.EffectSize.Value = &effect

	powerResult, err := v.power.Analyze(effect.CohensD, pair.PairCount(), v.alpha)
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodePowerSolveFailure) {
			// Achieved power is still meaningful; only the minimum sample
			// size is unavailable.
			result.Power.Value = &powerResult
			return result, nil
		}
		result.Power.Fault = faultFrom(err, analysis.FaultPowerSolveFailure)
		return result, nil
	}
	result.Power.Value = &powerResult

	return result, nil
}

// faultFrom converts an AppError into the result-embedded fault variant
func faultFrom(err error, fallback analysis.FaultCode) *analysis.Fault {
	code := fallback
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		code = analysis.FaultCode(appErr.Code)
	}
	return analysis.NewFault(code, err.Error())
}
