package analysis

import "testing"

func metricWith(significant bool, magnitude EffectMagnitude, adequate bool) MetricAnalysis {
	return MetricAnalysis{
		Metric:     "m",
		Comparison: ComparisonResult{Significant: significant},
		EffectSize: EffectSizeOutcome{Value: &EffectSize{Magnitude: magnitude}},
		Power:      PowerOutcome{Value: &PowerAnalysis{AdequatePower: adequate}},
	}
}

func TestNewAnalysisRun(t *testing.T) {
	metrics := []MetricAnalysis{
		metricWith(true, EffectLarge, true),
		metricWith(true, EffectSmall, false),
		metricWith(false, EffectNegligible, false),
	}
	failures := []MetricFault{
		{Metric: "broken", Code: FaultInsufficientSampleSize, Reason: "too few observations"},
	}

	run := NewAnalysisRun(0.05, metrics, failures)

	if run.RunID == "" {
		t.Error("expected a run ID")
	}
	if run.CreatedAt.IsZero() {
		t.Error("expected a creation timestamp")
	}
	if run.Alpha != 0.05 {
		t.Errorf("alpha = %v, want 0.05", run.Alpha)
	}

	s := run.Summary
	if s.TotalMetrics != 4 {
		t.Errorf("total = %d, want 4 (analyzed plus failed)", s.TotalMetrics)
	}
	if s.SignificantMetrics != 2 {
		t.Errorf("significant = %d, want 2", s.SignificantMetrics)
	}
	if s.LargeEffects != 1 {
		t.Errorf("large effects = %d, want 1", s.LargeEffects)
	}
	if s.AdequatelyPowered != 1 {
		t.Errorf("adequately powered = %d, want 1", s.AdequatelyPowered)
	}
	if s.FailedMetrics != 1 {
		t.Errorf("failed = %d, want 1", s.FailedMetrics)
	}
}

func TestSummarizeSkipsFaultedOutcomes(t *testing.T) {
	m := MetricAnalysis{
		Metric:     "faulted",
		Comparison: ComparisonResult{Significant: true},
		EffectSize: EffectSizeOutcome{Fault: NewFault(FaultDegenerateEffectSize, "zero pooled variance")},
		Power:      PowerOutcome{Fault: NewFault(FaultPowerSolveFailure, "effect size unavailable")},
	}

	run := NewAnalysisRun(0.05, []MetricAnalysis{m}, nil)
	if run.Summary.LargeEffects != 0 {
		t.Errorf("large effects = %d, want 0 when the effect size is faulted", run.Summary.LargeEffects)
	}
	if run.Summary.AdequatelyPowered != 0 {
		t.Errorf("adequately powered = %d, want 0 when power is faulted", run.Summary.AdequatelyPowered)
	}
	if run.Summary.SignificantMetrics != 1 {
		t.Errorf("significant = %d, comparison verdicts still count", run.Summary.SignificantMetrics)
	}
}
