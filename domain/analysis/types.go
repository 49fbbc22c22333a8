package analysis

// ============================================================================
// DERIVED STATISTICS (immutable, computed fresh per analysis call)
// ============================================================================

// ConfidenceInterval is a two-sided interval at a configured confidence level
type ConfidenceInterval struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// DescriptiveStats summarizes one sample.
// INVARIANTS:
// - Min <= Median <= Max and Min <= Mean <= Max
// - StdDev uses the n-1 denominator (sample standard deviation)
// - MeanCI is constructed symmetrically around Mean via the t-distribution
type DescriptiveStats struct {
	Mean       float64            `json:"mean"`
	StdDev     float64            `json:"std_dev"`
	Min        float64            `json:"min"`
	Max        float64            `json:"max"`
	Median     float64            `json:"median"`
	MeanCI     ConfidenceInterval `json:"mean_ci"`
	SampleSize int                `json:"sample_size"`
}

// TestResult carries a single test statistic and its p-value
type TestResult struct {
	Statistic float64 `json:"statistic"`
	PValue    float64 `json:"p_value"`
}

// AndersonDarlingResult is the A² statistic plus its critical-value table.
// Critical values are indexed by SignificanceLevels; index 2 is the 5% level
// used by the normality decision rule.
type AndersonDarlingResult struct {
	Statistic          float64    `json:"statistic"`
	CriticalValues     [5]float64 `json:"critical_values"`
	SignificanceLevels [5]float64 `json:"significance_levels"`
}

// CriticalValue5Pct returns the 5%-significance critical value
func (r AndersonDarlingResult) CriticalValue5Pct() float64 {
	return r.CriticalValues[2]
}

// NormalityVerdict combines three normality tests over one sample.
// INVARIANT: IsNormal is true only when ALL three criteria hold
// (Shapiro p > alpha, KS p > alpha, A² below the 5% critical value).
// Degenerate marks zero-variance samples, which are never treated as normal
// but must still produce a verdict without dividing by zero.
type NormalityVerdict struct {
	IsNormal          bool                  `json:"is_normal"`
	Degenerate        bool                  `json:"degenerate,omitempty"`
	ShapiroWilk       TestResult            `json:"shapiro_wilk"`
	KolmogorovSmirnov TestResult            `json:"kolmogorov_smirnov"`
	AndersonDarling   AndersonDarlingResult `json:"anderson_darling"`
}

// TestMethod tags which paired-comparison branch was taken
type TestMethod string

const (
	MethodPairedT  TestMethod = "paired_t_test"
	MethodWilcoxon TestMethod = "wilcoxon_signed_rank"
)

// PairedDetail carries the fields that only exist for the t-test branch
type PairedDetail struct {
	DegreesOfFreedom int                `json:"degrees_of_freedom"`
	MeanDifference   float64            `json:"mean_difference"`
	DifferenceCI     ConfidenceInterval `json:"difference_ci"`
}

// ComparisonResult is the outcome of the selected paired test.
// Paired is non-nil exactly when Method == MethodPairedT; rank-test callers
// cannot read t-test-only fields by construction.
type ComparisonResult struct {
	Method      TestMethod    `json:"test_type"`
	Statistic   float64       `json:"statistic"`
	PValue      float64       `json:"p_value"`
	Significant bool          `json:"significant"`
	Paired      *PairedDetail `json:"paired,omitempty"`
}

// EffectMagnitude is the qualitative bucket for |Cohen's d|
type EffectMagnitude string

const (
	EffectNegligible EffectMagnitude = "negligible"
	EffectSmall      EffectMagnitude = "small"
	EffectMedium     EffectMagnitude = "medium"
	EffectLarge      EffectMagnitude = "large"
)

// InterpretMagnitude buckets an absolute Cohen's d:
// <0.2 negligible, [0.2,0.5) small, [0.5,0.8) medium, >=0.8 large
func InterpretMagnitude(absD float64) EffectMagnitude {
	switch {
	case absD < 0.2:
		return EffectNegligible
	case absD < 0.5:
		return EffectSmall
	case absD < 0.8:
		return EffectMedium
	default:
		return EffectLarge
	}
}

// EffectSize holds standardized mean-difference measures.
// Sign convention: CohensD is reflection-minus-manual over the pooled std.
// PercentImprovement uses the manual mean as the denominator baseline; the
// asymmetry is part of the reporting contract and must not be symmetrized.
type EffectSize struct {
	CohensD            float64         `json:"cohens_d"`
	HedgesG            float64         `json:"hedges_g"`
	PercentImprovement float64         `json:"percentage_improvement"`
	Magnitude          EffectMagnitude `json:"interpretation"`
}

// PowerAnalysis reports achieved power at the observed sample size.
// MinSampleSize80 is nil when no finite sample size reaches 80% power
// (zero effect size).
type PowerAnalysis struct {
	Power           float64 `json:"current_power"`
	SampleSize      int     `json:"sample_size"`
	MinSampleSize80 *int    `json:"min_sample_size_80_power"`
	AdequatePower   bool    `json:"adequate_power"`
}

// ============================================================================
// FAILURE VARIANTS
// ============================================================================

// FaultCode identifies a local computational failure
type FaultCode string

const (
	FaultInsufficientSampleSize FaultCode = "INSUFFICIENT_SAMPLE_SIZE"
	FaultDegenerateEffectSize   FaultCode = "DEGENERATE_EFFECT_SIZE"
	FaultPowerSolveFailure      FaultCode = "POWER_SOLVE_FAILURE"
)

// Fault captures a failure-with-reason for one derived computation
type Fault struct {
	Code    FaultCode `json:"code"`
	Message string    `json:"message"`
}

// NewFault creates a fault variant
func NewFault(code FaultCode, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// EffectSizeOutcome is success-with-value or failure-with-reason
type EffectSizeOutcome struct {
	Value *EffectSize `json:"value,omitempty"`
	Fault *Fault      `json:"fault,omitempty"`
}

// PowerOutcome is success-with-value or failure-with-reason
type PowerOutcome struct {
	Value *PowerAnalysis `json:"value,omitempty"`
	Fault *Fault         `json:"fault,omitempty"`
}

// MetricAnalysis is the full derived bundle for one benchmark metric
type MetricAnalysis struct {
	Metric              string            `json:"metric"`
	Alpha               float64           `json:"alpha"`
	ReflectionStats     DescriptiveStats  `json:"reflection_stats"`
	ManualStats         DescriptiveStats  `json:"manual_stats"`
	ReflectionNormality NormalityVerdict  `json:"reflection_normality"`
	ManualNormality     NormalityVerdict  `json:"manual_normality"`
	Comparison          ComparisonResult  `json:"comparison_test"`
	EffectSize          EffectSizeOutcome `json:"effect_size"`
	Power               PowerOutcome      `json:"power_analysis"`
}
