package application

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"home_pricer/internal/config"
	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/service/gbdt"
	"home_pricer/internal/domain/service/pricing"
	"home_pricer/internal/infrastructure/cache"
	"home_pricer/internal/infrastructure/persistence"
	"home_pricer/internal/infrastructure/tasks"
	"home_pricer/internal/server"
	"home_pricer/internal/worker"
	"home_pricer/pkg/application/connectors"
	"home_pricer/pkg/application/modules"
	"home_pricer/pkg/contextx"
	"home_pricer/pkg/logx"
	"home_pricer/pkg/middlewarex"
)

func Run(ctx context.Context, log *slog.Logger) error {
	ctx = contextx.WithLogger(ctx, log)

	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	// 2. Database
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
	log.Info("database connection OK")

	// 3. Redis
	rd := &connectors.Redis{
		Address:            cfg.Redis.Address,
		Username:           cfg.Redis.Username,
		Password:           cfg.Redis.Password,
		DatabaseNumber:     cfg.Redis.DatabaseNumber,
		PoolSize:           cfg.Redis.PoolSize,
		MinIdleConnections: cfg.Redis.MinIdleConnections,
		MaxIdleConnections: cfg.Redis.MaxIdleConnections,
	}
	redisClient := rd.Client(ctx)
	defer rd.Close(ctx)

	// 4. Model artifact
	model, err := gbdt.Load(cfg.Model.ArtifactPath)
	if err != nil {
		return fmt.Errorf("load model artifact: %w", err)
	}
	log.Info("model artifact loaded",
		"version", model.Version(),
		"trees", model.TreeCount(),
		"trained_at", model.TrainedAt(),
	)

	// 5. Repositories
	propertyRepo := persistence.NewPropertyRepository(db)
	predictionRepo := persistence.NewPredictionRepository(db)
	neighborhoodRepo := persistence.NewNeighborhoodRepository(db)

	// 6. Audit queue producer
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	})
	defer asynqClient.Close() //nolint:errcheck

	recorder := tasks.NewRecorder(asynqClient)

	// 7. Pricing service
	encoder := pricing.NewEncoder(model, neighborhoodRepo, cfg.Model.StatsTTL)
	predictionCache := cache.NewPredictionCache(redisClient, cfg.Model.CacheTTL)
	pricingService := pricing.NewService(model, encoder, predictionCache, recorder, predictionRepo)

	// 8. HTTP surface
	apiServer := server.NewServer(
		server.NewPredictionServer(pricingService),
		server.NewPropertyServer(propertyRepo),
		server.NewNeighborhoodServer(neighborhoodRepo),
	)

	masker := logx.NewSensitiveDataMasker()

	router := chi.NewRouter()
	router.Use(
		middlewarex.TraceID,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, cfg.HTTP.LogFieldMaxLen),
		middlewarex.ResponseLogging(masker, cfg.HTTP.LogFieldMaxLen),
	)
	apiServer.RegisterRoutes(router)

	g, ctx := errgroup.WithContext(ctx)

	modules.HTTPServer{
		ShutdownTimeout: cfg.HTTP.ShutdownTimeout,
	}.Run(ctx, g, &http.Server{ //nolint:exhaustruct
		Addr:        cfg.HTTP.ListenAddress,
		Handler:     router,
		BaseContext: func(net.Listener) context.Context { return ctx },
	})

	modules.ProbeServer{
		Name:          cfg.App.Name,
		Version:       cfg.App.Version,
		ListenAddress: cfg.Probe.ListenAddress,
	}.Run(ctx, g)

	modules.MetricServer{
		ListenAddress: cfg.Metrics.ListenAddress,
	}.Run(ctx, g)

	modules.AsynqServer{
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisAddress:  cfg.Redis.Address,
		RedisDB:       cfg.Redis.DatabaseNumber,
		Concurrency:   cfg.Asynq.Concurrency,
	}.Run(ctx, g, tasks.Queues(), modules.AsynqHandler{
		Pattern: tasks.TypeRecordPrediction,
		Handle:  tasks.HandleRecordPrediction(predictionRepo),
	})

	// 9. Drift monitoring
	alerts := make(chan entity.DriftAlert, 100)

	scanner := worker.NewDriftScanner(neighborhoodRepo, model, alerts, cfg.Drift.ScanInterval).
		WithThreshold(cfg.Drift.ThresholdPct)

	g.Go(func() error {
		defer close(alerts)
		return scanner.Run(ctx)
	})

	g.Go(func() error {
		consumeDriftAlerts(ctx, alerts)
		return nil
	})

	log.Info("application started", "http", cfg.HTTP.ListenAddress)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("application group: %w", err)
	}

	return nil
}

func consumeDriftAlerts(ctx context.Context, alerts <-chan entity.DriftAlert) {
	for alert := range alerts {
		logger(ctx).Warn("neighborhood price drift detected",
			"neighborhood", alert.Neighborhood,
			"baseline_cents", alert.BaselineCents,
			"current_cents", alert.CurrentCents,
			"drift_pct", fmt.Sprintf("%.1f", alert.DriftPct),
		)
	}
}
