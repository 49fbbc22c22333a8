package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"reflectbench/domain/analysis"
	"reflectbench/domain/core"
	apperrors "reflectbench/internal/errors"
	"reflectbench/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS analysis_runs (
	run_id     TEXT PRIMARY KEY,
	alpha      DOUBLE PRECISION NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
)`

// RunLedger persists analysis runs in Postgres as JSON payloads
type RunLedger struct {
	db *sqlx.DB
}

// NewRunLedger connects to Postgres and ensures the schema exists
func NewRunLedger(ctx context.Context, databaseURL string) (*RunLedger, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		return nil, apperrors.DatabaseError("failed to connect to run ledger", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, apperrors.DatabaseError("failed to ensure run ledger schema", err)
	}
	return &RunLedger{db: db}, nil
}

// Close releases the connection pool
func (l *RunLedger) Close() error {
	return l.db.Close()
}

// SaveRun stores a complete analysis run
func (l *RunLedger) SaveRun(ctx context.Context, run *analysis.AnalysisRun) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal analysis run")
	}

	query := `
		INSERT INTO analysis_runs (run_id, alpha, payload, created_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (run_id) DO UPDATE SET
			alpha = EXCLUDED.alpha,
			payload = EXCLUDED.payload`

	_, err = l.db.ExecContext(ctx, query, run.RunID.String(), run.Alpha, payload, run.CreatedAt.Time())
	if err != nil {
		return apperrors.DatabaseError("failed to save analysis run", err)
	}
	return nil
}

// GetRun retrieves one analysis run by ID
func (l *RunLedger) GetRun(ctx context.Context, id core.RunID) (*analysis.AnalysisRun, error) {
	var payload []byte
	err := l.db.GetContext(ctx, &payload,
		`SELECT payload FROM analysis_runs WHERE run_id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("analysis run " + id.String())
	}
	if err != nil {
		return nil, apperrors.DatabaseError("failed to load analysis run", err)
	}

	var run analysis.AnalysisRun
	if err := json.Unmarshal(payload, &run); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal analysis run")
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (l *RunLedger) ListRuns(ctx context.Context, limit int) ([]ports.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	rows := []struct {
		RunID     string    `db:"run_id"`
		Alpha     float64   `db:"alpha"`
		Metrics   int       `db:"metric_count"`
		CreatedAt time.Time `db:"created_at"`
	}{}

	query := `
		SELECT run_id, alpha,
		       jsonb_array_length(payload->'metrics') AS metric_count,
		       created_at
		FROM analysis_runs
		ORDER BY created_at DESC
		LIMIT $1`

	if err := l.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, apperrors.DatabaseError("failed to list analysis runs", err)
	}

	records := make([]ports.RunRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, ports.RunRecord{
			RunID:       core.RunID(row.RunID),
			Alpha:       row.Alpha,
			MetricCount: row.Metrics,
			CreatedAt:   core.NewTimestamp(row.CreatedAt),
		})
	}
	return records, nil
}
