package entity

import (
	"time"

	"home_pricer/internal/domain/value"
)

// Property is a single dwelling from the ingested dataset or submitted
// through the API. Prices are stored in cents.
type Property struct {
	ID            string    `json:"id"`
	Address       string    `json:"address,omitempty"`
	Neighborhood  string    `json:"neighborhood"`
	SqftLiving    float64   `json:"sqft_living"`
	SqftLot       float64   `json:"sqft_lot"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     float64   `json:"bathrooms"`
	Floors        float64   `json:"floors"`
	Condition     int       `json:"condition"`
	Grade         int       `json:"grade"`
	YearBuilt     int       `json:"year_built"`
	YearRenovated int       `json:"year_renovated"`
	Latitude      float64   `json:"latitude,omitempty"`
	Longitude     float64   `json:"longitude,omitempty"`
	SalePriceCents *int64   `json:"sale_price_cents,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Features projects the property onto the model input value object.
func (p *Property) Features() value.PropertyFeatures {
	return value.PropertyFeatures{
		SqftLiving:    p.SqftLiving,
		SqftLot:       p.SqftLot,
		Bedrooms:      p.Bedrooms,
		Bathrooms:     p.Bathrooms,
		Floors:        p.Floors,
		Condition:     p.Condition,
		Grade:         p.Grade,
		YearBuilt:     p.YearBuilt,
		YearRenovated: p.YearRenovated,
		Neighborhood:  p.Neighborhood,
	}
}
