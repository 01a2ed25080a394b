// This file should be generated from the openapi specification and be named types.gen.go
package rest

import "time"

// PredictRequest property attributes the model is asked to price.
type PredictRequest struct {
	SqftLiving    float64 `json:"sqftLiving" validate:"required,gt=0"`
	SqftLot       float64 `json:"sqftLot" validate:"gte=0"`
	Bedrooms      int     `json:"bedrooms" validate:"gte=0,lte=33"`
	Bathrooms     float64 `json:"bathrooms" validate:"gte=0"`
	Floors        float64 `json:"floors" validate:"gte=0"`
	Condition     int     `json:"condition" validate:"gte=0,lte=5"`
	Grade         int     `json:"grade" validate:"gte=0,lte=13"`
	YearBuilt     int     `json:"yearBuilt" validate:"required,gte=1800,lte=2100"`
	YearRenovated int     `json:"yearRenovated" validate:"gte=0,lte=2100"`
	Neighborhood  string  `json:"neighborhood" validate:"required"`
}

// ConfidenceInterval symmetric interval around the point estimate, USD.
type ConfidenceInterval struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// Prediction the priced result returned to the client.
type Prediction struct {
	PredictionID       string             `json:"predictionId"`
	PredictedPrice     float64            `json:"predictedPrice"`
	ConfidenceInterval ConfidenceInterval `json:"confidenceInterval"`
	ModelVersion       string             `json:"modelVersion"`
	CreatedAt          time.Time          `json:"createdAt"`
	Cached             bool               `json:"cached,omitempty"`
}

// Property a listed or ingested property.
type Property struct {
	ID            string   `json:"id,omitempty"`
	Address       string   `json:"address,omitempty"`
	Neighborhood  string   `json:"neighborhood" validate:"required"`
	SqftLiving    float64  `json:"sqftLiving" validate:"required,gt=0"`
	SqftLot       float64  `json:"sqftLot" validate:"gte=0"`
	Bedrooms      int      `json:"bedrooms" validate:"gte=0,lte=33"`
	Bathrooms     float64  `json:"bathrooms" validate:"gte=0"`
	Floors        float64  `json:"floors" validate:"gte=0"`
	Condition     int      `json:"condition" validate:"gte=0,lte=5"`
	Grade         int      `json:"grade" validate:"gte=0,lte=13"`
	YearBuilt     int      `json:"yearBuilt" validate:"required,gte=1800,lte=2100"`
	YearRenovated int      `json:"yearRenovated" validate:"gte=0,lte=2100"`
	Latitude      float64  `json:"latitude,omitempty"`
	Longitude     float64  `json:"longitude,omitempty"`
	SalePrice     *float64 `json:"salePrice,omitempty" validate:"omitempty,gt=0"`
}

// PropertyList a page of properties.
type PropertyList struct {
	Items  []Property `json:"items"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// NeighborhoodStats aggregated sale statistics for one neighborhood.
type NeighborhoodStats struct {
	Code         string    `json:"code"`
	SampleCount  int       `json:"sampleCount"`
	MedianPrice  float64   `json:"medianPrice"`
	AveragePrice float64   `json:"averagePrice"`
	PricePerSqft float64   `json:"pricePerSqft"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ModelInfo metadata of the model artifact currently serving predictions.
type ModelInfo struct {
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trainedAt"`
	Features  []string  `json:"features"`
	RMSE      float64   `json:"rmse"`
	TreeCount int       `json:"treeCount"`
}

// Health service liveness payload.
type Health struct {
	Status       string `json:"status"`
	ModelVersion string `json:"modelVersion"`
}

// Error error payload.
type Error struct {
	// Code machine-readable error code.
	Code ErrorCode `json:"code"`

	// Message human-readable message (for UI display down the line).
	Message string `json:"message"`
}

// ErrorCode machine-readable error code.
type ErrorCode string
