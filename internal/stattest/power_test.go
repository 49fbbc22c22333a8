package stattest

import (
	"testing"

	apperrors "reflectbench/internal/errors"
)

func TestPowerAnalyzer_AchievedPower(t *testing.T) {
	analyzer := NewPowerAnalyzer()

	t.Run("monotone in sample size", func(t *testing.T) {
		prev := 0.0
		for _, n := range []int{5, 10, 20, 40, 80} {
			power := analyzer.AchievedPower(0.5, n, 0.05)
			if power < prev {
				t.Errorf("power decreased at n=%d: %v < %v", n, power, prev)
			}
			prev = power
		}
	})

	t.Run("monotone in effect size", func(t *testing.T) {
		prev := 0.0
		for _, d := range []float64{0.1, 0.3, 0.5, 0.8, 1.5} {
			power := analyzer.AchievedPower(d, 20, 0.05)
			if power < prev {
				t.Errorf("power decreased at d=%v: %v < %v", d, power, prev)
			}
			prev = power
		}
	})

	t.Run("large effect saturates", func(t *testing.T) {
		power := analyzer.AchievedPower(2.0, 10, 0.05)
		if power < 0.99 {
			t.Errorf("power = %v, want > 0.99 for d=2 at n=10", power)
		}
	})

	t.Run("sign of the effect is irrelevant", func(t *testing.T) {
		pos := analyzer.AchievedPower(0.6, 15, 0.05)
		neg := analyzer.AchievedPower(-0.6, 15, 0.05)
		if pos != neg {
			t.Errorf("power(0.6) = %v, power(-0.6) = %v, want equal", pos, neg)
		}
	})
}

func TestPowerAnalyzer_MinimumSampleSize(t *testing.T) {
	analyzer := NewPowerAnalyzer()

	t.Run("medium effect", func(t *testing.T) {
		minN, err := analyzer.MinimumSampleSize(0.5, 0.05)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if minN != 34 {
			t.Errorf("min n = %d, want 34 for d=0.5 at alpha=0.05", minN)
		}
		// The solution is the boundary: n-1 must fall short of the target.
		if analyzer.AchievedPower(0.5, minN, 0.05) < 0.8 {
			t.Errorf("power at min n = %v, want >= 0.8", analyzer.AchievedPower(0.5, minN, 0.05))
		}
		if analyzer.AchievedPower(0.5, minN-1, 0.05) >= 0.8 {
			t.Errorf("power at min n - 1 = %v, want < 0.8", analyzer.AchievedPower(0.5, minN-1, 0.05))
		}
	})

	t.Run("large effect", func(t *testing.T) {
		minN, err := analyzer.MinimumSampleSize(0.8, 0.05)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if minN != 15 {
			t.Errorf("min n = %d, want 15 for d=0.8", minN)
		}
	})

	t.Run("zero effect has no finite solution", func(t *testing.T) {
		_, err := analyzer.MinimumSampleSize(0, 0.05)
		if err == nil {
			t.Fatal("expected power solve failure for zero effect")
		}
		if !apperrors.HasCode(err, apperrors.CodePowerSolveFailure) {
			t.Errorf("error code = %s, want POWER_SOLVE_FAILURE", apperrors.GetCode(err))
		}
	})
}

func TestPowerAnalyzer_Analyze(t *testing.T) {
	analyzer := NewPowerAnalyzer()

	t.Run("adequate power", func(t *testing.T) {
		result, err := analyzer.Analyze(1.5, 20, 0.05)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !result.AdequatePower {
			t.Errorf("power = %v, want adequate at d=1.5 n=20", result.Power)
		}
		if result.MinSampleSize80 == nil {
			t.Fatal("expected a minimum sample size")
		}
		if *result.MinSampleSize80 > 20 {
			t.Errorf("min n = %d, should not exceed an already adequate n", *result.MinSampleSize80)
		}
	})

	t.Run("zero effect keeps achieved power", func(t *testing.T) {
		result, err := analyzer.Analyze(0, 20, 0.05)
		if err == nil {
			t.Fatal("expected power solve failure")
		}
		if !apperrors.HasCode(err, apperrors.CodePowerSolveFailure) {
			t.Errorf("error code = %s, want POWER_SOLVE_FAILURE", apperrors.GetCode(err))
		}
		// Achieved power is still reported alongside the error.
		if result.SampleSize != 20 {
			t.Errorf("sample size = %d, want 20", result.SampleSize)
		}
		if result.Power < 0 || result.Power > 1 {
			t.Errorf("power = %v, want within [0, 1]", result.Power)
		}
		if result.MinSampleSize80 != nil {
			t.Error("min sample size must be nil when unsolvable")
		}
	})

	t.Run("too few observations", func(t *testing.T) {
		_, err := analyzer.Analyze(0.5, 1, 0.05)
		if err == nil {
			t.Fatal("expected error for n < 2")
		}
		if !apperrors.HasCode(err, apperrors.CodeInsufficientSampleSize) {
			t.Errorf("error code = %s, want INSUFFICIENT_SAMPLE_SIZE", apperrors.GetCode(err))
		}
	})
}
