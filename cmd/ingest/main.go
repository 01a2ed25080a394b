package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"

	"home_pricer/internal/config"
	"home_pricer/internal/domain/service/cleaning"
	"home_pricer/internal/infrastructure/persistence"
	"home_pricer/pkg/application/connectors"
	"home_pricer/pkg/contextx"
)

// go run cmd/ingest/main.go -input kc_house_data.csv
// go run cmd/ingest/main.go -input kc_house_data.csv -strategy drop -drop-outliers

func main() {
	input := flag.String("input", "", "path to the raw housing CSV")
	strategy := flag.String("strategy", "default", "missing value strategy: default (median/mode fill) or drop")
	method := flag.String("method", "iqr", "outlier detection method: iqr or zscore")
	dropOutliers := flag.Bool("drop-outliers", false, "remove outlier rows instead of only reporting them")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log := slog.New(tint.NewHandler(os.Stdout, &tint.Options{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(log)

	if *input == "" {
		log.Error("missing required flag -input")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(ctx, log, *input, *strategy, *method, *dropOutliers); err != nil {
		log.Error("ingest failed", "error", err)
		os.Exit(1)
	}

	log.Info("ingest finished")
}

func run(ctx context.Context, log *slog.Logger, input, strategy, method string, dropOutliers bool) error {
	ctx = contextx.WithLogger(ctx, log)

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}

	file, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("open dataset: %w", err)
	}
	defer file.Close() //nolint:errcheck

	pipeline := cleaning.NewPipeline(persistence.NewPropertyRepository(db))

	result, err := pipeline.Run(ctx, file, cleaning.Options{
		MissingStrategy: cleaning.MissingStrategy(strategy),
		OutlierMethod:   cleaning.OutlierMethod(method),
		RemoveOutliers:  dropOutliers,
	})
	if err != nil {
		return fmt.Errorf("pipeline run: %w", err)
	}

	log.Info("cleaning summary",
		"rows_initial", result.InitialReport.TotalRows,
		"filled_cells", result.FilledCells,
		"dropped_rows", result.DroppedRows,
		"removed_dupes", result.RemovedDupes,
		"outliers_purged", result.OutliersPurged,
		"rows_persisted", result.RowsPersisted,
		"rows_skipped", result.RowsSkipped,
	)

	for column, info := range result.Outliers {
		log.Info("outlier column", "column", column, "count", info.Count, "pct", info.Percentage)
	}

	return nil
}
