package bench

import (
	"fmt"
	"math"
	"sort"
)

// MinSampleSize is the smallest sample a comparison can be built from.
// Variance needs n >= 2; Shapiro-Wilk additionally needs n >= 3 and is
// guarded at the point of computation.
const MinSampleSize = 2

// Sample is an ordered sequence of finite measurements for one
// implementation variant. Samples are read-only once constructed.
type Sample []float64

// NewSample validates raw measurements into a Sample. Every value must be
// finite; the iteration order of the input is preserved.
func NewSample(values []float64) (Sample, error) {
	if len(values) < MinSampleSize {
		return nil, fmt.Errorf("sample requires at least %d measurements, got %d", MinSampleSize, len(values))
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("measurement %d is not finite: %v", i, v)
		}
	}
	s := make(Sample, len(values))
	copy(s, values)
	return s, nil
}

// Len returns the number of measurements
func (s Sample) Len() int {
	return len(s)
}

// Values returns a defensive copy of the underlying measurements
func (s Sample) Values() []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}

// MetricSamples is a paired observation set for one benchmark metric:
// index i in Reflection and Manual belongs to the same run.
type MetricSamples struct {
	Metric     string `json:"metric"`
	Reflection Sample `json:"reflection"`
	Manual     Sample `json:"manual"`
}

// NewMetricSamples builds a paired observation set, enforcing the pairing
// invariant (equal lengths) and per-sample validity.
func NewMetricSamples(metric string, reflection, manual []float64) (MetricSamples, error) {
	if metric == "" {
		return MetricSamples{}, fmt.Errorf("metric name cannot be empty")
	}
	refl, err := NewSample(reflection)
	if err != nil {
		return MetricSamples{}, fmt.Errorf("metric %q reflection sample: %w", metric, err)
	}
	man, err := NewSample(manual)
	if err != nil {
		return MetricSamples{}, fmt.Errorf("metric %q manual sample: %w", metric, err)
	}
	if refl.Len() != man.Len() {
		return MetricSamples{}, fmt.Errorf("metric %q samples are not paired: reflection has %d runs, manual has %d",
			metric, refl.Len(), man.Len())
	}
	return MetricSamples{Metric: metric, Reflection: refl, Manual: man}, nil
}

// PairCount returns the number of paired runs
func (m MetricSamples) PairCount() int {
	return m.Reflection.Len()
}

// Suite is the full input contract from the measurement harness: one paired
// observation set per metric, held in deterministic (name-sorted) order.
type Suite struct {
	Metrics []MetricSamples `json:"metrics"`
}

// RawPair is the unvalidated wire form of one metric's measurements
type RawPair struct {
	Reflection []float64 `json:"reflection"`
	Manual     []float64 `json:"manual"`
}

// NewSuite validates a metric->pair mapping into a Suite. Metrics are sorted
// by name so downstream artifacts are deterministic regardless of map order.
func NewSuite(pairs map[string]RawPair) (*Suite, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("suite contains no metrics")
	}
	names := make([]string, 0, len(pairs))
	for name := range pairs {
		names = append(names, name)
	}
	sort.Strings(names)

	suite := &Suite{Metrics: make([]MetricSamples, 0, len(names))}
	for _, name := range names {
		pair := pairs[name]
		ms, err := NewMetricSamples(name, pair.Reflection, pair.Manual)
		if err != nil {
			return nil, err
		}
		suite.Metrics = append(suite.Metrics, ms)
	}
	return suite, nil
}

// MetricCount returns the number of metrics in the suite
func (s *Suite) MetricCount() int {
	return len(s.Metrics)
}
