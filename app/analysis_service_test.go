package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"reflectbench/domain/analysis"
	"reflectbench/domain/bench"
	"reflectbench/domain/core"
	"reflectbench/ports"
)

type MockRunLedger struct {
	mock.Mock
}

func (m *MockRunLedger) SaveRun(ctx context.Context, run *analysis.AnalysisRun) error {
	args := m.Called(ctx, run)
	return args.Error(0)
}

func (m *MockRunLedger) GetRun(ctx context.Context, id core.RunID) (*analysis.AnalysisRun, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*analysis.AnalysisRun), args.Error(1)
}

func (m *MockRunLedger) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]ports.RunRecord), args.Error(1)
}

func mustSuite(t *testing.T, pairs map[string]bench.RawPair) *bench.Suite {
	t.Helper()
	suite, err := bench.NewSuite(pairs)
	require.NoError(t, err)
	return suite
}

func TestAnalysisService_AnalyzeSuite(t *testing.T) {
	ctx := context.Background()

	t.Run("mixed suite keeps order and tallies verdicts", func(t *testing.T) {
		suite := mustSuite(t, map[string]bench.RawPair{
			"latency_ms": {
				Reflection: []float64{1.1, 1.2, 0.9, 1.0, 1.05},
				Manual:     []float64{2.0, 2.1, 1.9, 2.05, 1.95},
			},
			"alloc_bytes": {
				// Constant samples: degenerate effect size, analysis survives.
				Reflection: []float64{10, 10, 10, 10, 10},
				Manual:     []float64{20, 20, 20, 20, 20},
			},
		})

		service := NewAnalysisService(0.05, 4, nil, nil)
		run, err := service.AnalyzeSuite(ctx, suite)
		require.NoError(t, err)

		require.Len(t, run.Metrics, 2)
		assert.Equal(t, "alloc_bytes", run.Metrics[0].Metric)
		assert.Equal(t, "latency_ms", run.Metrics[1].Metric)

		assert.Equal(t, 2, run.Summary.TotalMetrics)
		assert.Equal(t, 0, run.Summary.FailedMetrics)
		// latency_ms is a large significant effect; alloc_bytes has a
		// degenerate effect size but its comparison still counts.
		assert.GreaterOrEqual(t, run.Summary.SignificantMetrics, 1)
		assert.Equal(t, 1, run.Summary.LargeEffects)

		assert.NotNil(t, run.Metrics[0].EffectSize.Fault)
		assert.Equal(t, analysis.FaultDegenerateEffectSize, run.Metrics[0].EffectSize.Fault.Code)
		assert.NotNil(t, run.Metrics[1].EffectSize.Value)
	})

	t.Run("unanalyzable metric becomes a failure entry", func(t *testing.T) {
		suite := mustSuite(t, map[string]bench.RawPair{
			"ok": {
				Reflection: []float64{1.1, 1.2, 0.9, 1.0, 1.05},
				Manual:     []float64{2.0, 2.1, 1.9, 2.05, 1.95},
			},
			"tiny": {
				// Two pairs pass suite validation but are below the normality
				// minimum of three observations.
				Reflection: []float64{1, 2},
				Manual:     []float64{3, 4},
			},
		})

		service := NewAnalysisService(0.05, 4, nil, nil)
		run, err := service.AnalyzeSuite(ctx, suite)
		require.NoError(t, err)

		require.Len(t, run.Metrics, 1)
		assert.Equal(t, "ok", run.Metrics[0].Metric)

		require.Len(t, run.Failures, 1)
		assert.Equal(t, "tiny", run.Failures[0].Metric)
		assert.Equal(t, analysis.FaultInsufficientSampleSize, run.Failures[0].Code)

		assert.Equal(t, 2, run.Summary.TotalMetrics)
		assert.Equal(t, 1, run.Summary.FailedMetrics)
	})

	t.Run("persists through the ledger when configured", func(t *testing.T) {
		suite := mustSuite(t, map[string]bench.RawPair{
			"latency_ms": {
				Reflection: []float64{1.1, 1.2, 0.9, 1.0, 1.05},
				Manual:     []float64{2.0, 2.1, 1.9, 2.05, 1.95},
			},
		})

		ledger := &MockRunLedger{}
		ledger.On("SaveRun", mock.Anything, mock.AnythingOfType("*analysis.AnalysisRun")).Return(nil)

		service := NewAnalysisService(0.05, 2, ledger, nil)
		run, err := service.AnalyzeSuite(ctx, suite)
		require.NoError(t, err)
		require.NotEmpty(t, run.RunID)

		ledger.AssertCalled(t, "SaveRun", mock.Anything, run)
	})

	t.Run("rejects empty suites", func(t *testing.T) {
		service := NewAnalysisService(0.05, 2, nil, nil)
		_, err := service.AnalyzeSuite(ctx, nil)
		assert.Error(t, err)
	})

	t.Run("serial and parallel runs agree", func(t *testing.T) {
		pairs := map[string]bench.RawPair{
			"a": {Reflection: []float64{1.1, 1.2, 0.9, 1.0, 1.05}, Manual: []float64{2.0, 2.1, 1.9, 2.05, 1.95}},
			"b": {Reflection: []float64{5, 6, 7, 8, 9}, Manual: []float64{5, 6, 7, 8, 9}},
			"c": {Reflection: []float64{10, 11, 9, 10.5, 9.5}, Manual: []float64{10, 11, 9, 10.5, 9.5}},
		}

		serial := NewAnalysisService(0.05, 1, nil, nil)
		parallel := NewAnalysisService(0.05, 8, nil, nil)

		serialRun, err := serial.AnalyzeSuite(ctx, mustSuite(t, pairs))
		require.NoError(t, err)
		parallelRun, err := parallel.AnalyzeSuite(ctx, mustSuite(t, pairs))
		require.NoError(t, err)

		require.Len(t, parallelRun.Metrics, len(serialRun.Metrics))
		for i := range serialRun.Metrics {
			assert.Equal(t, serialRun.Metrics[i].Metric, parallelRun.Metrics[i].Metric)
			assert.Equal(t, serialRun.Metrics[i].Comparison, parallelRun.Metrics[i].Comparison)
		}
		assert.Equal(t, serialRun.Summary, parallelRun.Summary)
	})
}
