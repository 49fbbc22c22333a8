package jsonfile

import (
	"context"
	"encoding/json"
	"io"
	"os"

	"reflectbench/domain/bench"
	"reflectbench/internal/errors"
)

// suiteDocument is the wire format the measurement harness emits:
// {"performance_metrics": {"<metric>": {"reflection": [...], "manual": [...]}}}
type suiteDocument struct {
	PerformanceMetrics map[string]bench.RawPair `json:"performance_metrics"`
}

// Reader loads benchmark suites from harness JSON files
type Reader struct{}

// NewReader creates a JSON suite reader
func NewReader() *Reader {
	return &Reader{}
}

// LoadSuite reads and validates a suite from a JSON file
func (r *Reader) LoadSuite(ctx context.Context, path string) (*bench.Suite, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open suite file %s", path)
	}
	defer f.Close()

	return r.ParseSuite(f)
}

// ParseSuite decodes and validates a suite from a reader
func (r *Reader) ParseSuite(src io.Reader) (*bench.Suite, error) {
	var doc suiteDocument
	decoder := json.NewDecoder(src)
	if err := decoder.Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "failed to decode suite document")
	}
	if len(doc.PerformanceMetrics) == 0 {
		return nil, errors.InvalidInput("suite document has no performance_metrics")
	}

	suite, err := bench.NewSuite(doc.PerformanceMetrics)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "suite validation failed")
	}
	return suite, nil
}
