package entity

import "time"

// NeighborhoodStats are aggregated sale statistics for one neighborhood
// code (zipcode in the King County dataset). Prices in cents.
type NeighborhoodStats struct {
	Code              string    `json:"code"`
	SampleCount       int       `json:"sample_count"`
	MedianPriceCents  int64     `json:"median_price_cents"`
	AveragePriceCents int64     `json:"average_price_cents"`
	PricePerSqftCents int64     `json:"price_per_sqft_cents"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// DriftAlert is emitted when a neighborhood median moves too far from the
// baseline the serving model was trained against.
type DriftAlert struct {
	Neighborhood  string
	BaselineCents int64
	CurrentCents  int64
	DriftPct      float64
	ObservedAt    time.Time
}
