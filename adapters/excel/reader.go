package excel

import (
	"context"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"reflectbench/domain/bench"
	"reflectbench/internal/errors"
)

const (
	sheetName        = "Sheet1"
	reflectionSuffix = "_reflection"
	manualSuffix     = "_manual"
)

// Reader loads benchmark suites from Excel workbooks. The first sheet holds
// one column pair per metric, headed "<metric>_reflection" and
// "<metric>_manual", one measurement per row.
type Reader struct{}

// NewReader creates an Excel suite reader
func NewReader() *Reader {
	return &Reader{}
}

// LoadSuite reads and validates a suite from an Excel workbook
func (r *Reader) LoadSuite(ctx context.Context, path string) (*bench.Suite, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open workbook %s", path)
	}
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read sheet %s", sheetName)
	}
	if len(rows) < 2 {
		return nil, errors.InvalidInput("workbook has no measurement rows")
	}

	headers := rows[0]
	columns := make([][]float64, len(headers))

	for rowIdx, row := range rows[1:] {
		for colIdx := range headers {
			if colIdx >= len(row) || strings.TrimSpace(row[colIdx]) == "" {
				continue
			}
			value, err := strconv.ParseFloat(strings.TrimSpace(row[colIdx]), 64)
			if err != nil {
				return nil, errors.Newf(errors.CodeInvalidInput,
					"row %d column %q is not numeric: %q", rowIdx+2, headers[colIdx], row[colIdx])
			}
			columns[colIdx] = append(columns[colIdx], value)
		}
	}

	pairs := make(map[string]bench.RawPair)
	for colIdx, header := range headers {
		name := strings.TrimSpace(header)
		switch {
		case strings.HasSuffix(name, reflectionSuffix):
			metric := strings.TrimSuffix(name, reflectionSuffix)
			pair := pairs[metric]
			pair.Reflection = columns[colIdx]
			pairs[metric] = pair
		case strings.HasSuffix(name, manualSuffix):
			metric := strings.TrimSuffix(name, manualSuffix)
			pair := pairs[metric]
			pair.Manual = columns[colIdx]
			pairs[metric] = pair
		}
	}
	if len(pairs) == 0 {
		return nil, errors.InvalidInput("workbook has no *_reflection/*_manual column pairs")
	}

	suite, err := bench.NewSuite(pairs)
	if err != nil {
		return nil, errors.Wrap(errors.InvalidInput(err.Error()), "suite validation failed")
	}
	return suite, nil
}
