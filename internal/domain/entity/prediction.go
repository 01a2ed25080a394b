package entity

import (
	"time"

	"home_pricer/internal/domain/value"
)

// Prediction is one priced request, kept as an audit record.
type Prediction struct {
	ID             string                 `json:"id"`
	Features       value.PropertyFeatures `json:"features"`
	PriceCents     int64                  `json:"price_cents"`
	Interval       value.ConfidenceInterval `json:"interval"`
	ModelVersion   string                 `json:"model_version"`
	CreatedAt      time.Time              `json:"created_at"`

	// Cached marks a response replayed from the prediction cache. Not
	// persisted; an audit row is only written for fresh scores.
	Cached bool `json:"-"`
}
