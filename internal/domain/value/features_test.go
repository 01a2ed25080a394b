package value_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"home_pricer/internal/domain/value"
)

func validFeatures() value.PropertyFeatures {
	return value.PropertyFeatures{
		SqftLiving:    1890,
		SqftLot:       6560,
		Bedrooms:      3,
		Bathrooms:     2.25,
		Floors:        2,
		Condition:     3,
		Grade:         7,
		YearBuilt:     1994,
		YearRenovated: 0,
		Neighborhood:  "98052",
	}
}

func TestPropertyFeaturesValidate(t *testing.T) {
	testCases := []struct {
		name    string
		mutate  func(f *value.PropertyFeatures)
		wantErr string
	}{
		{
			name:   "valid features",
			mutate: func(f *value.PropertyFeatures) {},
		},
		{
			name:    "zero sqft living",
			mutate:  func(f *value.PropertyFeatures) { f.SqftLiving = 0 },
			wantErr: "sqft_living",
		},
		{
			name:    "negative sqft lot",
			mutate:  func(f *value.PropertyFeatures) { f.SqftLot = -1 },
			wantErr: "sqft_lot",
		},
		{
			name:    "too many bedrooms",
			mutate:  func(f *value.PropertyFeatures) { f.Bedrooms = 34 },
			wantErr: "bedrooms",
		},
		{
			name:    "condition above scale",
			mutate:  func(f *value.PropertyFeatures) { f.Condition = 6 },
			wantErr: "condition",
		},
		{
			name:    "grade above scale",
			mutate:  func(f *value.PropertyFeatures) { f.Grade = 14 },
			wantErr: "grade",
		},
		{
			name:    "year built before 1800",
			mutate:  func(f *value.PropertyFeatures) { f.YearBuilt = 1750 },
			wantErr: "year_built",
		},
		{
			name: "renovated before built",
			mutate: func(f *value.PropertyFeatures) {
				f.YearBuilt = 1990
				f.YearRenovated = 1980
			},
			wantErr: "year_renovated",
		},
		{
			name:    "missing neighborhood",
			mutate:  func(f *value.PropertyFeatures) { f.Neighborhood = "" },
			wantErr: "neighborhood",
		},
		{
			name: "zero condition and grade are unknown, not invalid",
			mutate: func(f *value.PropertyFeatures) {
				f.Condition = 0
				f.Grade = 0
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rq := require.New(t)

			features := validFeatures()
			tc.mutate(&features)

			err := features.Validate()
			if tc.wantErr == "" {
				rq.NoError(err)
				return
			}

			rq.Error(err)
			rq.Contains(err.Error(), tc.wantErr)
		})
	}
}

func TestPropertyFeaturesCacheKey(t *testing.T) {
	rq := require.New(t)

	base := validFeatures()

	rq.Equal(base.CacheKey("v1"), base.CacheKey("v1"), "same features and version share a key")

	other := base
	other.SqftLiving++
	rq.NotEqual(base.CacheKey("v1"), other.CacheKey("v1"), "different features get different keys")

	rq.NotEqual(base.CacheKey("v1"), base.CacheKey("v2"), "a new model version invalidates old keys")
}

func TestPropertyFeaturesAge(t *testing.T) {
	rq := require.New(t)

	features := validFeatures()
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	rq.Equal(30, features.Age(now))

	features.YearBuilt = now.Year() + 1
	rq.Equal(0, features.Age(now), "future build years clamp to zero age")
}

func TestPropertyFeaturesRenovated(t *testing.T) {
	rq := require.New(t)

	features := validFeatures()
	rq.False(features.Renovated())

	features.YearRenovated = 2010
	rq.True(features.Renovated())
}
