package ports

import (
	"context"

	"reflectbench/domain/bench"
)

// SampleSourcePort supplies paired benchmark measurements per metric.
// Implementations own the file/wire format; the returned suite is already
// validated (equal-length pairs, finite values).
type SampleSourcePort interface {
	LoadSuite(ctx context.Context, path string) (*bench.Suite, error)
}
