package server

import (
	"fmt"
	"math"

	"github.com/rs/xid"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/service/pricing"
	"home_pricer/internal/domain/value"
	"home_pricer/pkg/lox"
	"home_pricer/pkg/rest"
)

func newRESTPrediction(prediction entity.Prediction) rest.Prediction {
	return rest.Prediction{
		PredictionID:   prediction.ID,
		PredictedPrice: centsToDollars(prediction.PriceCents),
		ConfidenceInterval: rest.ConfidenceInterval{
			Low:  centsToDollars(prediction.Interval.LowCents),
			High: centsToDollars(prediction.Interval.HighCents),
		},
		ModelVersion: prediction.ModelVersion,
		CreatedAt:    prediction.CreatedAt,
		Cached:       prediction.Cached,
	}
}

func newRESTPredictions(predictions []entity.Prediction) []rest.Prediction {
	return lox.Map(predictions, newRESTPrediction)
}

func newDomainFeatures(request rest.PredictRequest) value.PropertyFeatures {
	return value.PropertyFeatures{
		SqftLiving:    request.SqftLiving,
		SqftLot:       request.SqftLot,
		Bedrooms:      request.Bedrooms,
		Bathrooms:     request.Bathrooms,
		Floors:        request.Floors,
		Condition:     request.Condition,
		Grade:         request.Grade,
		YearBuilt:     request.YearBuilt,
		YearRenovated: request.YearRenovated,
		Neighborhood:  request.Neighborhood,
	}
}

func newDomainProperty(request rest.Property) (*entity.Property, error) {
	property := &entity.Property{
		ID:            request.ID,
		Address:       request.Address,
		Neighborhood:  request.Neighborhood,
		SqftLiving:    request.SqftLiving,
		SqftLot:       request.SqftLot,
		Bedrooms:      request.Bedrooms,
		Bathrooms:     request.Bathrooms,
		Floors:        request.Floors,
		Condition:     request.Condition,
		Grade:         request.Grade,
		YearBuilt:     request.YearBuilt,
		YearRenovated: request.YearRenovated,
		Latitude:      request.Latitude,
		Longitude:     request.Longitude,
	}

	if property.ID == "" {
		property.ID = xid.New().String()
	}

	if request.SalePrice != nil {
		if *request.SalePrice <= 0 {
			return nil, fmt.Errorf("sale price must be positive, got %v", *request.SalePrice)
		}
		cents := dollarsToCents(*request.SalePrice)
		property.SalePriceCents = &cents
	}

	if err := property.Features().Validate(); err != nil {
		return nil, fmt.Errorf("features.Validate: %w", err)
	}

	return property, nil
}

func newRESTProperty(property entity.Property) rest.Property {
	out := rest.Property{
		ID:            property.ID,
		Address:       property.Address,
		Neighborhood:  property.Neighborhood,
		SqftLiving:    property.SqftLiving,
		SqftLot:       property.SqftLot,
		Bedrooms:      property.Bedrooms,
		Bathrooms:     property.Bathrooms,
		Floors:        property.Floors,
		Condition:     property.Condition,
		Grade:         property.Grade,
		YearBuilt:     property.YearBuilt,
		YearRenovated: property.YearRenovated,
		Latitude:      property.Latitude,
		Longitude:     property.Longitude,
	}

	if property.SalePriceCents != nil {
		price := centsToDollars(*property.SalePriceCents)
		out.SalePrice = &price
	}

	return out
}

func newRESTPropertyList(properties []entity.Property, limit, offset int) rest.PropertyList {
	return rest.PropertyList{
		Items:  lox.Map(properties, newRESTProperty),
		Limit:  limit,
		Offset: offset,
	}
}

func newRESTNeighborhoods(stats []entity.NeighborhoodStats) []rest.NeighborhoodStats {
	return lox.Map(stats, func(s entity.NeighborhoodStats) rest.NeighborhoodStats {
		return rest.NeighborhoodStats{
			Code:         s.Code,
			SampleCount:  s.SampleCount,
			MedianPrice:  centsToDollars(s.MedianPriceCents),
			AveragePrice: centsToDollars(s.AveragePriceCents),
			PricePerSqft: centsToDollars(s.PricePerSqftCents),
			UpdatedAt:    s.UpdatedAt,
		}
	})
}

func newRESTModelInfo(info pricing.ModelInfo) rest.ModelInfo {
	return rest.ModelInfo{
		Version:   info.Version,
		TrainedAt: info.TrainedAt,
		Features:  info.Features,
		RMSE:      info.RMSE,
		TreeCount: info.TreeCount,
	}
}

func centsToDollars(cents int64) float64 {
	return float64(cents) / 100
}

func dollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}
