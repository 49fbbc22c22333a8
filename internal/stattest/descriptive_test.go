package stattest

import (
	"math"
	"testing"

	"reflectbench/domain/bench"
	apperrors "reflectbench/internal/errors"
)

func TestComputeDescriptiveStats(t *testing.T) {
	t.Run("basic summary", func(t *testing.T) {
		sample := bench.Sample{1, 2, 3, 4, 5}
		stats, err := ComputeDescriptiveStats(sample, 0.95)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if stats.Mean != 3 {
			t.Errorf("mean = %v, want 3", stats.Mean)
		}
		if math.Abs(stats.StdDev-1.5811388) > 1e-6 {
			t.Errorf("std dev = %v, want ~1.5811", stats.StdDev)
		}
		if stats.Min != 1 || stats.Max != 5 || stats.Median != 3 {
			t.Errorf("min/median/max = %v/%v/%v, want 1/3/5", stats.Min, stats.Median, stats.Max)
		}
		if stats.SampleSize != 5 {
			t.Errorf("sample size = %d, want 5", stats.SampleSize)
		}
	})

	t.Run("confidence interval brackets the mean", func(t *testing.T) {
		sample := bench.Sample{1, 2, 3, 4, 5}
		stats, err := ComputeDescriptiveStats(sample, 0.95)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// t(0.975, df=4) = 2.7764, margin = 2.7764 * 1.5811 / sqrt(5)
		if math.Abs(stats.MeanCI.Lower-1.03676) > 1e-4 {
			t.Errorf("CI lower = %v, want ~1.0368", stats.MeanCI.Lower)
		}
		if math.Abs(stats.MeanCI.Upper-4.96324) > 1e-4 {
			t.Errorf("CI upper = %v, want ~4.9632", stats.MeanCI.Upper)
		}
		if stats.MeanCI.Lower > stats.Mean || stats.MeanCI.Upper < stats.Mean {
			t.Errorf("CI [%v, %v] does not bracket mean %v", stats.MeanCI.Lower, stats.MeanCI.Upper, stats.Mean)
		}
		if stats.MeanCI.Level != 0.95 {
			t.Errorf("CI level = %v, want 0.95", stats.MeanCI.Level)
		}
	})

	t.Run("ordering invariants", func(t *testing.T) {
		sample := bench.Sample{3.2, 1.7, 9.4, 2.1, 5.5, 4.8}
		stats, err := ComputeDescriptiveStats(sample, 0.95)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if !(stats.Min <= stats.Median && stats.Median <= stats.Max) {
			t.Errorf("want min <= median <= max, got %v/%v/%v", stats.Min, stats.Median, stats.Max)
		}
		if !(stats.Min <= stats.Mean && stats.Mean <= stats.Max) {
			t.Errorf("want min <= mean <= max, got %v/%v/%v", stats.Min, stats.Mean, stats.Max)
		}
	})

	t.Run("constant sample collapses the interval", func(t *testing.T) {
		sample := bench.Sample{5, 5, 5, 5}
		stats, err := ComputeDescriptiveStats(sample, 0.95)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if stats.StdDev != 0 {
			t.Errorf("std dev = %v, want 0", stats.StdDev)
		}
		if stats.MeanCI.Lower != 5 || stats.MeanCI.Upper != 5 {
			t.Errorf("CI = [%v, %v], want collapsed to [5, 5]", stats.MeanCI.Lower, stats.MeanCI.Upper)
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		_, err := ComputeDescriptiveStats(bench.Sample{1}, 0.95)
		if err == nil {
			t.Fatal("expected error for single observation")
		}
		if !apperrors.HasCode(err, apperrors.CodeInsufficientSampleSize) {
			t.Errorf("error code = %s, want INSUFFICIENT_SAMPLE_SIZE", apperrors.GetCode(err))
		}
	})
}
