package ports

import (
	"context"

	"reflectbench/domain/analysis"
	"reflectbench/domain/core"
)

// RunRecord is a lightweight listing row for stored analysis runs
type RunRecord struct {
	RunID       core.RunID     `json:"run_id"`
	Alpha       float64        `json:"alpha"`
	MetricCount int            `json:"metric_count"`
	CreatedAt   core.Timestamp `json:"created_at"`
}

// RunLedgerPort persists analysis runs for later retrieval
type RunLedgerPort interface {
	SaveRun(ctx context.Context, run *analysis.AnalysisRun) error
	GetRun(ctx context.Context, id core.RunID) (*analysis.AnalysisRun, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)
}
