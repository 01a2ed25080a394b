package persistence

import (
	"encoding/json"
	"time"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/value"
)

// propertySchema maps one row of the properties table.
type propertySchema struct {
	ID             string    `db:"id"`
	Address        string    `db:"address"`
	Neighborhood   string    `db:"neighborhood"`
	SqftLiving     float64   `db:"sqft_living"`
	SqftLot        float64   `db:"sqft_lot"`
	Bedrooms       int       `db:"bedrooms"`
	Bathrooms      float64   `db:"bathrooms"`
	Floors         float64   `db:"floors"`
	Condition      int       `db:"condition"`
	Grade          int       `db:"grade"`
	YearBuilt      int       `db:"year_built"`
	YearRenovated  int       `db:"year_renovated"`
	Latitude       float64   `db:"latitude"`
	Longitude      float64   `db:"longitude"`
	SalePriceCents *int64    `db:"sale_price_cents"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func fromProperty(e *entity.Property) *propertySchema {
	return &propertySchema{
		ID:             e.ID,
		Address:        e.Address,
		Neighborhood:   e.Neighborhood,
		SqftLiving:     e.SqftLiving,
		SqftLot:        e.SqftLot,
		Bedrooms:       e.Bedrooms,
		Bathrooms:      e.Bathrooms,
		Floors:         e.Floors,
		Condition:      e.Condition,
		Grade:          e.Grade,
		YearBuilt:      e.YearBuilt,
		YearRenovated:  e.YearRenovated,
		Latitude:       e.Latitude,
		Longitude:      e.Longitude,
		SalePriceCents: e.SalePriceCents,
		CreatedAt:      e.CreatedAt,
		UpdatedAt:      e.UpdatedAt,
	}
}

func (s *propertySchema) toDomain() *entity.Property {
	return &entity.Property{
		ID:             s.ID,
		Address:        s.Address,
		Neighborhood:   s.Neighborhood,
		SqftLiving:     s.SqftLiving,
		SqftLot:        s.SqftLot,
		Bedrooms:       s.Bedrooms,
		Bathrooms:      s.Bathrooms,
		Floors:         s.Floors,
		Condition:      s.Condition,
		Grade:          s.Grade,
		YearBuilt:      s.YearBuilt,
		YearRenovated:  s.YearRenovated,
		Latitude:       s.Latitude,
		Longitude:      s.Longitude,
		SalePriceCents: s.SalePriceCents,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// predictionSchema maps one row of the predictions table. The feature
// snapshot is stored as JSONB.
type predictionSchema struct {
	ID           string    `db:"id"`
	Features     []byte    `db:"features"`
	PriceCents   int64     `db:"price_cents"`
	LowCents     int64     `db:"interval_low_cents"`
	HighCents    int64     `db:"interval_high_cents"`
	ModelVersion string    `db:"model_version"`
	CreatedAt    time.Time `db:"created_at"`
}

func (s *predictionSchema) toDomain() (*entity.Prediction, error) {
	var features value.PropertyFeatures
	if len(s.Features) > 0 {
		if err := json.Unmarshal(s.Features, &features); err != nil {
			return nil, err
		}
	}

	return &entity.Prediction{
		ID:           s.ID,
		Features:     features,
		PriceCents:   s.PriceCents,
		Interval:     value.NewConfidenceInterval(s.LowCents, s.HighCents),
		ModelVersion: s.ModelVersion,
		CreatedAt:    s.CreatedAt,
	}, nil
}

// neighborhoodSchema maps one row of the neighborhood_stats table.
type neighborhoodSchema struct {
	Code              string    `db:"code"`
	SampleCount       int       `db:"sample_count"`
	MedianPriceCents  int64     `db:"median_price_cents"`
	AveragePriceCents int64     `db:"average_price_cents"`
	PricePerSqftCents int64     `db:"price_per_sqft_cents"`
	UpdatedAt         time.Time `db:"updated_at"`
}

func (s *neighborhoodSchema) toDomain() *entity.NeighborhoodStats {
	return &entity.NeighborhoodStats{
		Code:              s.Code,
		SampleCount:       s.SampleCount,
		MedianPriceCents:  s.MedianPriceCents,
		AveragePriceCents: s.AveragePriceCents,
		PricePerSqftCents: s.PricePerSqftCents,
		UpdatedAt:         s.UpdatedAt,
	}
}
