package cleaning

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"home_pricer/internal/domain"
	"home_pricer/pkg/errcodes"
)

// Dataset is an in-memory tabular dataset loaded from CSV. Cells keep their
// raw text; numeric interpretation is decided per column.
type Dataset struct {
	Columns []string
	Rows    [][]string
}

// LoadCSV reads a header-first CSV stream into a Dataset.
func LoadCSV(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.DatasetUnreadable, "failed to read CSV header")
	}

	var rows [][]string

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, domain.WrapError(err, errcodes.DatasetUnreadable, "failed to read CSV row")
		}

		rows = append(rows, record)
	}

	if len(rows) == 0 {
		return nil, domain.NewError(errcodes.DatasetEmpty, "dataset has a header but no rows")
	}

	return &Dataset{Columns: header, Rows: rows}, nil
}

// ColumnIndex returns the position of a named column.
func (d *Dataset) ColumnIndex(name string) (int, error) {
	for i, col := range d.Columns {
		if col == name {
			return i, nil
		}
	}

	return 0, fmt.Errorf("column %q not in dataset", name)
}

func isMissing(cell string) bool {
	switch strings.TrimSpace(strings.ToLower(cell)) {
	case "", "na", "n/a", "nan", "null", "none":
		return true
	}
	return false
}

// numericColumn reports whether every non-missing cell parses as a float,
// and collects the parsed values.
func (d *Dataset) numericColumn(col int) ([]float64, bool) {
	values := make([]float64, 0, len(d.Rows))

	for _, row := range d.Rows {
		if col >= len(row) || isMissing(row[col]) {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			return nil, false
		}

		values = append(values, v)
	}

	return values, len(values) > 0
}

// NumericColumns lists columns whose non-missing cells are all numeric.
func (d *Dataset) NumericColumns() []string {
	var out []string

	for i, name := range d.Columns {
		if _, ok := d.numericColumn(i); ok {
			out = append(out, name)
		}
	}

	return out
}

func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}

	return sorted[mid]
}

func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return 0
	}

	// Linear interpolation between closest ranks, same as pandas default.
	pos := q * float64(len(sorted)-1)
	lower := int(pos)
	if lower >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}

	frac := pos - float64(lower)

	return sorted[lower] + frac*(sorted[lower+1]-sorted[lower])
}

// mode returns the most frequent non-missing cell of a column; ties break
// to the lexicographically smallest candidate for determinism.
func (d *Dataset) mode(col int) string {
	counts := map[string]int{}

	for _, row := range d.Rows {
		if col >= len(row) || isMissing(row[col]) {
			continue
		}
		counts[row[col]]++
	}

	best, bestCount := "Unknown", 0
	for v, c := range counts {
		if c > bestCount || (c == bestCount && v < best) {
			best, bestCount = v, c
		}
	}

	return best
}
