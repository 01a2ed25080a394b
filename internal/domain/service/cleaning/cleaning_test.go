package cleaning_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"home_pricer/internal/domain"
	"home_pricer/internal/domain/service/cleaning"
	"home_pricer/pkg/errcodes"
)

func testDataset() *cleaning.Dataset {
	return &cleaning.Dataset{
		Columns: []string{"price", "bedrooms", "city"},
		Rows: [][]string{
			{"100", "2", "seattle"},
			{"200", "3", "bellevue"},
			{"300", "", "seattle"},
			{"", "4", "seattle"},
			{"200", "3", "bellevue"},
		},
	}
}

func TestLoadCSV(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		rq := require.New(t)

		dataset, err := cleaning.LoadCSV(strings.NewReader("a,b\n1,2\n3,4\n"))
		rq.NoError(err)
		rq.Equal([]string{"a", "b"}, dataset.Columns)
		rq.Len(dataset.Rows, 2)
	})

	t.Run("header only", func(t *testing.T) {
		rq := require.New(t)

		_, err := cleaning.LoadCSV(strings.NewReader("a,b\n"))
		rq.Error(err)

		code, ok := domain.GetCode(err)
		rq.True(ok)
		rq.Equal(errcodes.DatasetEmpty, code)
	})

	t.Run("broken quoting", func(t *testing.T) {
		rq := require.New(t)

		_, err := cleaning.LoadCSV(strings.NewReader("a,b\n\"oops,2\n"))
		rq.Error(err)

		code, ok := domain.GetCode(err)
		rq.True(ok)
		rq.Equal(errcodes.DatasetUnreadable, code)
	})
}

func TestReport(t *testing.T) {
	rq := require.New(t)

	report := cleaning.Report(testDataset())

	rq.Equal(5, report.TotalRows)
	rq.Equal(3, report.TotalColumns)
	rq.Equal(1, report.MissingValues["price"])
	rq.Equal(1, report.MissingValues["bedrooms"])
	rq.NotContains(report.MissingValues, "city")
	rq.Equal(1, report.DuplicateRows)
	rq.InDelta(20.0, report.MissingPct["price"], 1e-9)
}

func TestHandleMissing(t *testing.T) {
	t.Run("default fills numeric columns with the median", func(t *testing.T) {
		rq := require.New(t)

		dataset := testDataset()
		filled, err := cleaning.HandleMissing(dataset, cleaning.StrategyDefault)
		rq.NoError(err)
		rq.Equal(2, filled)

		// median of 100, 200, 300, 200 is 200
		rq.Equal("200", dataset.Rows[3][0])
		// median of 2, 3, 4, 3 is 3
		rq.Equal("3", dataset.Rows[2][1])
	})

	t.Run("drop removes incomplete rows", func(t *testing.T) {
		rq := require.New(t)

		dataset := testDataset()
		dropped, err := cleaning.HandleMissing(dataset, cleaning.StrategyDrop)
		rq.NoError(err)
		rq.Equal(2, dropped)
		rq.Len(dataset.Rows, 3)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		rq := require.New(t)

		_, err := cleaning.HandleMissing(testDataset(), cleaning.MissingStrategy("bogus"))
		rq.Error(err)
		rq.Contains(err.Error(), "unknown missing-value strategy")
	})
}

func TestRemoveDuplicates(t *testing.T) {
	rq := require.New(t)

	dataset := testDataset()
	removed := cleaning.RemoveDuplicates(dataset)

	rq.Equal(1, removed)
	rq.Len(dataset.Rows, 4)
}

func TestDetectOutliers(t *testing.T) {
	// Nine tame values and one wild one, so both methods flag row 9.
	dataset := &cleaning.Dataset{
		Columns: []string{"price"},
		Rows: [][]string{
			{"100"}, {"110"}, {"105"}, {"95"}, {"102"},
			{"98"}, {"103"}, {"99"}, {"101"}, {"100000"},
		},
	}

	t.Run("iqr", func(t *testing.T) {
		rq := require.New(t)

		outliers, err := cleaning.DetectOutliers(dataset, cleaning.MethodIQR, nil)
		rq.NoError(err)
		rq.Equal(1, outliers["price"].Count)
		rq.Equal([]int{9}, outliers["price"].Indices)
		rq.InDelta(10.0, outliers["price"].Percentage, 1e-9)
	})

	t.Run("zscore", func(t *testing.T) {
		rq := require.New(t)

		// A single extreme among n points cannot exceed z = (n-1)/sqrt(n),
		// so the sample has to be big enough for the threshold of 3.
		rows := make([][]string, 0, 25)
		for i := 0; i < 24; i++ {
			rows = append(rows, []string{"100"})
		}
		rows = append(rows, []string{"100000"})

		wide := &cleaning.Dataset{Columns: []string{"price"}, Rows: rows}

		outliers, err := cleaning.DetectOutliers(wide, cleaning.MethodZScore, nil)
		rq.NoError(err)
		rq.Equal([]int{24}, outliers["price"].Indices)
	})

	t.Run("unknown method", func(t *testing.T) {
		rq := require.New(t)

		_, err := cleaning.DetectOutliers(dataset, cleaning.OutlierMethod("bogus"), nil)
		rq.Error(err)
		rq.Contains(err.Error(), "unknown outlier method")
	})

	t.Run("non numeric column", func(t *testing.T) {
		rq := require.New(t)

		mixed := &cleaning.Dataset{
			Columns: []string{"city"},
			Rows:    [][]string{{"seattle"}, {"bellevue"}},
		}

		_, err := cleaning.DetectOutliers(mixed, cleaning.MethodIQR, []string{"city"})
		rq.Error(err)
		rq.Contains(err.Error(), "not numeric")
	})
}

func TestRemoveOutlierRows(t *testing.T) {
	rq := require.New(t)

	dataset := &cleaning.Dataset{
		Columns: []string{"price"},
		Rows:    [][]string{{"1"}, {"2"}, {"3"}, {"4"}},
	}

	removed := cleaning.RemoveOutlierRows(dataset, map[string]cleaning.OutlierInfo{
		"price": {Count: 2, Indices: []int{1, 3}},
	})

	rq.Equal(2, removed)
	rq.Equal([][]string{{"1"}, {"3"}}, dataset.Rows)
}
