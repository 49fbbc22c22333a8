package app

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	"reflectbench/internal"
	apperrors "reflectbench/internal/errors"
	"reflectbench/internal/stattest"
	"reflectbench/ports"
)

// AnalysisService fans a suite of metrics out over the statistical validator.
// Metric analyses are independent of each other, so they run concurrently
// behind a weighted semaphore; results are reassembled in suite order so run
// artifacts stay deterministic.
type AnalysisService struct {
	validator   *stattest.StatisticalValidator
	ledger      ports.RunLedgerPort // nil disables persistence
	sem         *semaphore.Weighted
	maxParallel int64
	logger      *internal.Logger
}

// NewAnalysisService creates an analysis service. ledger may be nil when no
// run persistence is configured.
func NewAnalysisService(alpha float64, maxParallel int64, ledger ports.RunLedgerPort, logger *internal.Logger) *AnalysisService {
	if maxParallel < 1 {
		maxParallel = 1
	}
	if logger == nil {
		logger = internal.NewDefaultLogger()
	}
	return &AnalysisService{
		validator:   stattest.NewStatisticalValidator(alpha),
		ledger:      ledger,
		sem:         semaphore.NewWeighted(maxParallel),
		maxParallel: maxParallel,
		logger:      logger.Named("analysis"),
	}
}

type metricOutcome struct {
	index  int
	result *analysis.MetricAnalysis
	fault  *analysis.MetricFault
}

// AnalyzeSuite runs the validator over every metric in the suite and
// assembles the run artifact. A metric that cannot be analyzed (insufficient
// sample size) is recorded as a failure instead of aborting the run; the
// caller decides how failed metrics affect aggregate reporting.
func (s *AnalysisService) AnalyzeSuite(ctx context.Context, suite *bench.Suite) (*analysis.AnalysisRun, error) {
	if suite == nil || suite.MetricCount() == 0 {
		return nil, apperrors.InvalidInput("suite has no metrics to analyze")
	}

	outcomes := make([]metricOutcome, suite.MetricCount())
	var wg sync.WaitGroup

	for i, pair := range suite.Metrics {
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return nil, apperrors.Wrap(err, "analysis cancelled while waiting for capacity")
		}

		wg.Add(1)
		go func(index int, pair bench.MetricSamples) {
			defer wg.Done()
			defer s.sem.Release(1)
			outcomes[index] = s.analyzeMetric(index, pair)
		}(i, pair)
	}
	wg.Wait()

	metrics := make([]analysis.MetricAnalysis, 0, len(outcomes))
	var failures []analysis.MetricFault
	for _, outcome := range outcomes {
		if outcome.fault != nil {
			failures = append(failures, *outcome.fault)
			continue
		}
		metrics = append(metrics, *outcome.result)
	}

	run := analysis.NewAnalysisRun(s.validator.Alpha(), metrics, failures)
	s.logger.Info("suite analyzed: run=%s metrics=%d significant=%d failed=%d",
		run.RunID, run.Summary.TotalMetrics, run.Summary.SignificantMetrics, run.Summary.FailedMetrics)

	if s.ledger != nil {
		if err := s.ledger.SaveRun(ctx, run); err != nil {
			return nil, apperrors.Wrap(err, "failed to persist analysis run")
		}
	}
	return run, nil
}

func (s *AnalysisService) analyzeMetric(index int, pair bench.MetricSamples) metricOutcome {
	result, err := s.validator.AnalyzeComparison(pair)
	if err != nil {
		s.logger.Warn("metric %s failed: %v", pair.Metric, err)
		return metricOutcome{
			index: index,
			fault: &analysis.MetricFault{
				Metric: pair.Metric,
				Code:   analysis.FaultCode(apperrors.GetCode(err)),
				Reason: err.Error(),
			},
		}
	}
	s.logger.Debug("metric %s analyzed: test=%s p=%.6f", pair.Metric,
		result.Comparison.Method, result.Comparison.PValue)
	return metricOutcome{index: index, result: result}
}
