package analysis

import (
	"reflectbench/domain/core"
)

// MetricFault records a metric that could not be analyzed at all
// (e.g. insufficient sample size). The caller decides whether such metrics
// are excluded from aggregate reporting.
type MetricFault struct {
	Metric string    `json:"metric"`
	Code   FaultCode `json:"code"`
	Reason string    `json:"reason"`
}

// RunSummary tallies verdicts across a run's metrics, mirroring the
// conclusions section of the rendered report
type RunSummary struct {
	TotalMetrics       int `json:"total_metrics"`
	SignificantMetrics int `json:"significant_metrics"`
	LargeEffects       int `json:"large_effects"`
	AdequatelyPowered  int `json:"adequately_powered"`
	FailedMetrics      int `json:"failed_metrics"`
}

// AnalysisRun is the complete output artifact of analyzing one suite
type AnalysisRun struct {
	RunID     core.RunID       `json:"run_id"`
	Alpha     float64          `json:"alpha"`
	Metrics   []MetricAnalysis `json:"metrics"`
	Failures  []MetricFault    `json:"failures,omitempty"`
	Summary   RunSummary       `json:"summary"`
	CreatedAt core.Timestamp   `json:"created_at"`
}

// NewAnalysisRun assembles a run artifact and derives its summary tallies
func NewAnalysisRun(alpha float64, metrics []MetricAnalysis, failures []MetricFault) *AnalysisRun {
	run := &AnalysisRun{
		RunID:     core.RunID(core.NewID()),
		Alpha:     alpha,
		Metrics:   metrics,
		Failures:  failures,
		CreatedAt: core.Now(),
	}
	run.Summary = summarize(metrics, failures)
	return run
}

func summarize(metrics []MetricAnalysis, failures []MetricFault) RunSummary {
	s := RunSummary{
		TotalMetrics:  len(metrics) + len(failures),
		FailedMetrics: len(failures),
	}
	for _, m := range metrics {
		if m.Comparison.Significant {
			s.SignificantMetrics++
		}
		if m.EffectSize.Value != nil && m.EffectSize.Value.Magnitude == EffectLarge {
			s.LargeEffects++
		}
		if m.Power.Value != nil && m.Power.Value.AdequatePower {
			s.AdequatelyPowered++
		}
	}
	return s
}
