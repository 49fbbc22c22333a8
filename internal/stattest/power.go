package stattest

import (
	"math"

	"reflectbench/domain/analysis"
	"reflectbench/internal/errors"
)

const (
	targetPower = 0.8
	// maxSolveSampleSize bounds the minimum-n search; beyond this the effect
	// is too small to ever reach the target in practice.
	maxSolveSampleSize = 1 << 22
)

// PowerAnalyzer computes achieved power and the sample size needed to reach
// 80% power for a two-sided paired t-test.
type PowerAnalyzer struct {
	dist *Distributions
}

// NewPowerAnalyzer creates a power analyzer
func NewPowerAnalyzer() *PowerAnalyzer {
	return &PowerAnalyzer{dist: NewDistributions()}
}

// Analyze reports power at the observed sample size and effect size, plus
// the minimum sample size for 80% power under the same effect and alpha
func (p *PowerAnalyzer) Analyze(effectSize float64, sampleSize int, alpha float64) (analysis.PowerAnalysis, error) {
	if sampleSize < 2 {
		return analysis.PowerAnalysis{}, errors.InsufficientSampleSize(sampleSize, 2, "power analysis")
	}

	power := p.AchievedPower(effectSize, sampleSize, alpha)
	result := analysis.PowerAnalysis{
		Power:         power,
		SampleSize:    sampleSize,
		AdequatePower: power >= targetPower,
	}

	minN, err := p.MinimumSampleSize(effectSize, alpha)
	if err != nil {
		return result, err
	}
	result.MinSampleSize80 = &minN
	return result, nil
}

// AchievedPower computes the probability of rejecting the null at the given
// effect size and sample size, using the noncentral-t power formula with
// noncentrality |d|*sqrt(n) and df = n-1.
func (p *PowerAnalyzer) AchievedPower(effectSize float64, sampleSize int, alpha float64) float64 {
	if sampleSize < 2 {
		return 0
	}

	df := sampleSize - 1
	nc := math.Abs(effectSize) * math.Sqrt(float64(sampleSize))
	tCritical := p.dist.TQuantile(1-alpha/2, df)

	// Two-sided rejection region: |T'| > tCritical.
	power := 1 - p.dist.NoncentralTCDF(tCritical, nc, df) + p.dist.NoncentralTCDF(-tCritical, nc, df)
	return clamp01(power)
}

// MinimumSampleSize solves for the smallest n whose power reaches 80%.
// Power is monotone in n, so a doubling scan plus binary search suffices.
// A zero effect size has no finite solution and fails with
// POWER_SOLVE_FAILURE.
func (p *PowerAnalyzer) MinimumSampleSize(effectSize float64, alpha float64) (int, error) {
	if math.Abs(effectSize) < 1e-12 {
		return 0, errors.PowerSolveFailure(
			"zero effect size: no finite sample size reaches the target power")
	}

	hi := 2
	for hi <= maxSolveSampleSize && p.AchievedPower(effectSize, hi, alpha) < targetPower {
		hi *= 2
	}
	if hi > maxSolveSampleSize {
		return 0, errors.PowerSolveFailure(
			"power solve did not converge within the sample size bound")
	}

	lo := hi/2 + 1
	if hi == 2 {
		lo = 2
	}
	for lo < hi {
		mid := (lo + hi) / 2
		if p.AchievedPower(effectSize, mid, alpha) >= targetPower {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return hi, nil
}
