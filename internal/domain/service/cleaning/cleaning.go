// Package cleaning implements the dataset quality pipeline: quality report,
// missing-value handling, dedupe and outlier detection over the raw housing
// CSV before it is persisted.
package cleaning

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// MissingStrategy decides what happens to incomplete rows.
type MissingStrategy string

const (
	// StrategyDefault fills numeric columns with the median and
	// categorical columns with the mode.
	StrategyDefault MissingStrategy = "default"
	// StrategyDrop removes any row with at least one missing cell.
	StrategyDrop MissingStrategy = "drop"
)

// OutlierMethod selects the detection rule.
type OutlierMethod string

const (
	MethodIQR    OutlierMethod = "iqr"
	MethodZScore OutlierMethod = "zscore"
)

const (
	iqrFenceFactor  = 1.5
	zscoreThreshold = 3.0
)

// QualityReport summarizes the state of a dataset.
type QualityReport struct {
	TotalRows      int
	TotalColumns   int
	MissingValues  map[string]int
	MissingPct     map[string]float64
	DuplicateRows  int
	NumericColumns []string
}

// OutlierInfo describes outliers found in one column.
type OutlierInfo struct {
	Count      int
	Percentage float64
	Indices    []int
}

// Report builds a quality report without mutating the dataset.
func Report(d *Dataset) QualityReport {
	report := QualityReport{
		TotalRows:      len(d.Rows),
		TotalColumns:   len(d.Columns),
		MissingValues:  map[string]int{},
		MissingPct:     map[string]float64{},
		NumericColumns: d.NumericColumns(),
	}

	for i, name := range d.Columns {
		missing := 0
		for _, row := range d.Rows {
			if i >= len(row) || isMissing(row[i]) {
				missing++
			}
		}

		if missing > 0 {
			report.MissingValues[name] = missing
			report.MissingPct[name] = math.Round(float64(missing)/float64(len(d.Rows))*100*100) / 100
		}
	}

	report.DuplicateRows = countDuplicates(d)

	return report
}

// HandleMissing fills or drops incomplete rows, returning how many cells
// were touched (filled or dropped rows, per strategy).
func HandleMissing(d *Dataset, strategy MissingStrategy) (int, error) {
	switch strategy {
	case StrategyDefault:
		return fillMissing(d), nil
	case StrategyDrop:
		return dropMissing(d), nil
	default:
		return 0, fmt.Errorf("unknown missing-value strategy %q", strategy)
	}
}

func fillMissing(d *Dataset) int {
	filled := 0

	for col := range d.Columns {
		var fill string

		if values, numeric := d.numericColumn(col); numeric {
			fill = strconv.FormatFloat(median(values), 'f', -1, 64)
		} else {
			fill = d.mode(col)
		}

		for _, row := range d.Rows {
			if col < len(row) && isMissing(row[col]) {
				row[col] = fill
				filled++
			}
		}
	}

	return filled
}

func dropMissing(d *Dataset) int {
	kept := d.Rows[:0]
	dropped := 0

rows:
	for _, row := range d.Rows {
		for col := range d.Columns {
			if col >= len(row) || isMissing(row[col]) {
				dropped++
				continue rows
			}
		}
		kept = append(kept, row)
	}

	d.Rows = kept

	return dropped
}

// RemoveDuplicates drops whole-row duplicates, keeping first occurrences.
func RemoveDuplicates(d *Dataset) int {
	seen := make(map[string]struct{}, len(d.Rows))
	kept := d.Rows[:0]
	removed := 0

	for _, row := range d.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			removed++
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, row)
	}

	d.Rows = kept

	return removed
}

func countDuplicates(d *Dataset) int {
	seen := make(map[string]struct{}, len(d.Rows))
	dups := 0

	for _, row := range d.Rows {
		key := strings.Join(row, "\x1f")
		if _, ok := seen[key]; ok {
			dups++
			continue
		}
		seen[key] = struct{}{}
	}

	return dups
}

// DetectOutliers inspects the given numeric columns (all of them when nil)
// and reports, per column, which row indices fall outside the fences.
func DetectOutliers(d *Dataset, method OutlierMethod, columns []string) (map[string]OutlierInfo, error) {
	if columns == nil {
		columns = d.NumericColumns()
	}

	result := make(map[string]OutlierInfo, len(columns))

	for _, name := range columns {
		col, err := d.ColumnIndex(name)
		if err != nil {
			return nil, err
		}

		values, numeric := d.numericColumn(col)
		if !numeric {
			return nil, fmt.Errorf("column %q is not numeric", name)
		}

		var indices []int

		switch method {
		case MethodIQR:
			indices = iqrOutliers(d, col, values)
		case MethodZScore:
			indices = zscoreOutliers(d, col, values)
		default:
			return nil, fmt.Errorf("unknown outlier method %q", method)
		}

		result[name] = OutlierInfo{
			Count:      len(indices),
			Percentage: float64(len(indices)) / float64(len(d.Rows)) * 100,
			Indices:    indices,
		}
	}

	return result, nil
}

// RemoveOutlierRows drops every row flagged by any column of the outliers
// map, returning the number removed.
func RemoveOutlierRows(d *Dataset, outliers map[string]OutlierInfo) int {
	doomed := map[int]struct{}{}

	for _, info := range outliers {
		for _, idx := range info.Indices {
			doomed[idx] = struct{}{}
		}
	}

	if len(doomed) == 0 {
		return 0
	}

	kept := d.Rows[:0]

	for i, row := range d.Rows {
		if _, ok := doomed[i]; ok {
			continue
		}
		kept = append(kept, row)
	}

	removed := len(d.Rows) - len(kept)
	d.Rows = kept

	return removed
}

func iqrOutliers(d *Dataset, col int, values []float64) []int {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	q1 := quantile(sorted, 0.25)
	q3 := quantile(sorted, 0.75)
	iqr := q3 - q1

	lower := q1 - iqrFenceFactor*iqr
	upper := q3 + iqrFenceFactor*iqr

	return collectOutliers(d, col, func(v float64) bool {
		return v < lower || v > upper
	})
}

func zscoreOutliers(d *Dataset, col int, values []float64) []int {
	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var sqDiff float64
	for _, v := range values {
		sqDiff += (v - mean) * (v - mean)
	}
	std := math.Sqrt(sqDiff / float64(len(values)))

	if std == 0 {
		return nil
	}

	return collectOutliers(d, col, func(v float64) bool {
		return math.Abs((v-mean)/std) > zscoreThreshold
	})
}

func collectOutliers(d *Dataset, col int, isOutlier func(float64) bool) []int {
	var indices []int

	for i, row := range d.Rows {
		if col >= len(row) || isMissing(row[col]) {
			continue
		}

		v, err := strconv.ParseFloat(strings.TrimSpace(row[col]), 64)
		if err != nil {
			continue
		}

		if isOutlier(v) {
			indices = append(indices, i)
		}
	}

	return indices
}
