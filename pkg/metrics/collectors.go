package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals
var (
	PredictionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "home_pricer",
		Subsystem: "pricing",
		Name:      "predictions_total",
		Help:      "Predictions served, labeled by outcome (scored, cached, rejected, failed).",
	}, []string{"outcome"})

	PredictionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "home_pricer",
		Subsystem: "pricing",
		Name:      "prediction_duration_seconds",
		Help:      "Wall time of a single prediction, scoring and cache included.",
		Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
	})

	NeighborhoodDrift = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "home_pricer",
		Subsystem: "drift",
		Name:      "neighborhood_median_drift_ratio",
		Help:      "Relative drift of the current neighborhood median vs the model-era baseline.",
	}, []string{"neighborhood"})

	IngestedRows = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "home_pricer",
		Subsystem: "ingest",
		Name:      "rows_total",
		Help:      "Dataset rows persisted by the ingest pipeline.",
	})
)
