package cleaning

import (
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/rs/xid"

	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/contextx"
	"home_pricer/pkg/metrics"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const persistBatchSize = 500

// King County dataset column names the pipeline maps onto Property.
const (
	colPrice        = "price"
	colBedrooms     = "bedrooms"
	colBathrooms    = "bathrooms"
	colSqftLiving   = "sqft_living"
	colSqftLot      = "sqft_lot"
	colFloors       = "floors"
	colCondition    = "condition"
	colGrade        = "grade"
	colYearBuilt    = "yr_built"
	colYearRenov    = "yr_renovated"
	colNeighborhood = "zipcode"
	colLatitude     = "lat"
	colLongitude    = "long"
)

type propertyWriter interface {
	CreateBatch(ctx context.Context, properties []*entity.Property) error
}

// Options tune one pipeline run.
type Options struct {
	MissingStrategy MissingStrategy
	OutlierMethod   OutlierMethod
	RemoveOutliers  bool
}

// Result is the outcome of a pipeline run.
type Result struct {
	InitialReport  QualityReport
	FilledCells    int
	DroppedRows    int
	RemovedDupes   int
	Outliers       map[string]OutlierInfo
	OutliersPurged int
	RowsPersisted  int
	RowsSkipped    int
}

// Pipeline cleans a raw housing CSV and persists the survivors.
type Pipeline struct {
	properties propertyWriter
}

func NewPipeline(properties propertyWriter) *Pipeline {
	return &Pipeline{properties: properties}
}

// Run executes load -> report -> missing values -> dedupe -> outliers ->
// persist over the CSV stream.
func (p *Pipeline) Run(ctx context.Context, input io.Reader, opts Options) (Result, error) {
	if opts.MissingStrategy == "" {
		opts.MissingStrategy = StrategyDefault
	}
	if opts.OutlierMethod == "" {
		opts.OutlierMethod = MethodIQR
	}

	dataset, err := LoadCSV(input)
	if err != nil {
		return Result{}, fmt.Errorf("cleaning.LoadCSV: %w", err)
	}

	var result Result

	result.InitialReport = Report(dataset)
	logger(ctx).Info("dataset loaded",
		"rows", result.InitialReport.TotalRows,
		"columns", result.InitialReport.TotalColumns,
		"duplicates", result.InitialReport.DuplicateRows,
		"columns_with_missing", len(result.InitialReport.MissingValues),
	)

	touched, err := HandleMissing(dataset, opts.MissingStrategy)
	if err != nil {
		return result, fmt.Errorf("cleaning.HandleMissing: %w", err)
	}

	if opts.MissingStrategy == StrategyDrop {
		result.DroppedRows = touched
	} else {
		result.FilledCells = touched
	}

	result.RemovedDupes = RemoveDuplicates(dataset)

	result.Outliers, err = DetectOutliers(dataset, opts.OutlierMethod, nil)
	if err != nil {
		return result, fmt.Errorf("cleaning.DetectOutliers: %w", err)
	}

	for col, info := range result.Outliers {
		if info.Count > 0 {
			logger(ctx).Info("outliers detected",
				"column", col, "count", info.Count,
				"percentage", fmt.Sprintf("%.2f", info.Percentage),
			)
		}
	}

	if opts.RemoveOutliers {
		result.OutliersPurged = RemoveOutlierRows(dataset, result.Outliers)
	}

	persisted, skipped, err := p.persist(ctx, dataset)
	if err != nil {
		return result, fmt.Errorf("persist: %w", err)
	}

	result.RowsPersisted = persisted
	result.RowsSkipped = skipped

	logger(ctx).Info("cleaning pipeline finished",
		"persisted", persisted,
		"skipped", skipped,
		"dupes_removed", result.RemovedDupes,
		"outliers_purged", result.OutliersPurged,
	)

	return result, nil
}

func (p *Pipeline) persist(ctx context.Context, d *Dataset) (persisted, skipped int, err error) {
	batch := make([]*entity.Property, 0, persistBatchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		if err := p.properties.CreateBatch(ctx, batch); err != nil {
			return fmt.Errorf("properties.CreateBatch: %w", err)
		}

		metrics.IngestedRows.Add(float64(len(batch)))
		persisted += len(batch)
		batch = batch[:0]

		return nil
	}

	for i, row := range d.Rows {
		property, err := rowToProperty(d, row)
		if err != nil {
			logger(ctx).Debug("skipping unmappable row", "row", i, "error", err)
			skipped++
			continue
		}

		batch = append(batch, property)

		if len(batch) == persistBatchSize {
			if err := flush(); err != nil {
				return persisted, skipped, err
			}
		}
	}

	if err := flush(); err != nil {
		return persisted, skipped, err
	}

	return persisted, skipped, nil
}

func rowToProperty(d *Dataset, row []string) (*entity.Property, error) {
	cell := func(name string) (string, error) {
		idx, err := d.ColumnIndex(name)
		if err != nil {
			return "", err
		}
		if idx >= len(row) {
			return "", fmt.Errorf("row too short for column %q", name)
		}
		return strings.TrimSpace(row[idx]), nil
	}

	num := func(name string) (float64, error) {
		raw, err := cell(name)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, fmt.Errorf("column %q: %w", name, err)
		}
		return v, nil
	}

	property := &entity.Property{ID: xid.New().String()}

	var parseErr error

	read := func(name string, dst *float64) {
		if parseErr != nil {
			return
		}
		v, err := num(name)
		if err != nil {
			parseErr = err
			return
		}
		*dst = v
	}

	var bedrooms, condition, grade, yearBuilt, yearRenovated, price float64

	read(colSqftLiving, &property.SqftLiving)
	read(colSqftLot, &property.SqftLot)
	read(colBedrooms, &bedrooms)
	read(colBathrooms, &property.Bathrooms)
	read(colFloors, &property.Floors)
	read(colCondition, &condition)
	read(colGrade, &grade)
	read(colYearBuilt, &yearBuilt)
	read(colYearRenov, &yearRenovated)
	read(colPrice, &price)
	read(colLatitude, &property.Latitude)
	read(colLongitude, &property.Longitude)

	if parseErr != nil {
		return nil, parseErr
	}

	neighborhood, err := cell(colNeighborhood)
	if err != nil {
		return nil, err
	}

	property.Neighborhood = neighborhood
	property.Bedrooms = int(bedrooms)
	property.Condition = int(condition)
	property.Grade = int(grade)
	property.YearBuilt = int(yearBuilt)
	property.YearRenovated = int(yearRenovated)

	if price > 0 {
		cents := int64(math.Round(price * 100))
		property.SalePriceCents = &cents
	}

	if err := property.Features().Validate(); err != nil {
		return nil, fmt.Errorf("features invalid: %w", err)
	}

	return property, nil
}
