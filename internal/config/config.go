package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App      App
	HTTP     HTTP
	Probe    Probe
	Metrics  Metrics
	Postgres Postgres
	Redis    Redis
	Model    Model
	Drift    Drift
	Asynq    Asynq
}

type App struct {
	Name    string `env:"APP_NAME" envDefault:"home-pricer"`
	Version string `env:"APP_VERSION" envDefault:"dev"`
}

type HTTP struct {
	ListenAddress   string        `env:"HTTP_LISTEN_ADDRESS" envDefault:":8080"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogFieldMaxLen  int           `env:"HTTP_LOG_FIELD_MAX_LEN" envDefault:"4096"`
}

type Probe struct {
	ListenAddress string `env:"PROBE_LISTEN_ADDRESS" envDefault:":8081"`
}

type Metrics struct {
	ListenAddress string `env:"METRICS_LISTEN_ADDRESS" envDefault:":9090"`
}

type Model struct {
	ArtifactPath string        `env:"MODEL_ARTIFACT_PATH,notEmpty"`
	CacheTTL     time.Duration `env:"MODEL_PREDICTION_CACHE_TTL" envDefault:"15m"`
	StatsTTL     time.Duration `env:"MODEL_STATS_CACHE_TTL" envDefault:"5m"`
}

type Drift struct {
	ScanInterval time.Duration `env:"DRIFT_SCAN_INTERVAL" envDefault:"10m"`
	ThresholdPct float64       `env:"DRIFT_THRESHOLD_PCT" envDefault:"15"`
}

type Asynq struct {
	Concurrency int `env:"ASYNQ_CONCURRENCY" envDefault:"10"`
}

func Load() (Config, error) {
	_ = godotenv.Load()

	var config Config

	if err := env.Parse(&config); err != nil {
		return Config{}, fmt.Errorf("env.Parse: %w", err)
	}

	return config, nil
}
