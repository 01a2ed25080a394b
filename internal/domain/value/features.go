package value

import (
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"math"
	"strconv"
	"time"
)

// PropertyFeatures is the validated model input. It deliberately mirrors the
// King County dataset columns the model was trained on.
type PropertyFeatures struct {
	SqftLiving    float64 `json:"sqft_living"`
	SqftLot       float64 `json:"sqft_lot"`
	Bedrooms      int     `json:"bedrooms"`
	Bathrooms     float64 `json:"bathrooms"`
	Floors        float64 `json:"floors"`
	Condition     int     `json:"condition"`
	Grade         int     `json:"grade"`
	YearBuilt     int     `json:"year_built"`
	YearRenovated int     `json:"year_renovated"`
	Neighborhood  string  `json:"neighborhood"`
}

// Validate enforces the dataset invariants. Zero Condition/Grade/Floors are
// allowed and treated as unknown by the encoder.
func (f PropertyFeatures) Validate() error {
	switch {
	case f.SqftLiving <= 0:
		return fmt.Errorf("sqft_living must be positive, got %v", f.SqftLiving)
	case f.SqftLot < 0:
		return fmt.Errorf("sqft_lot must not be negative, got %v", f.SqftLot)
	case f.Bedrooms < 0 || f.Bedrooms > 33:
		return fmt.Errorf("bedrooms out of range: %d", f.Bedrooms)
	case f.Bathrooms < 0:
		return fmt.Errorf("bathrooms must not be negative, got %v", f.Bathrooms)
	case f.Condition < 0 || f.Condition > 5:
		return fmt.Errorf("condition out of range: %d", f.Condition)
	case f.Grade < 0 || f.Grade > 13:
		return fmt.Errorf("grade out of range: %d", f.Grade)
	case f.YearBuilt < 1800 || f.YearBuilt > time.Now().Year()+1:
		return fmt.Errorf("year_built out of range: %d", f.YearBuilt)
	case f.YearRenovated != 0 && (f.YearRenovated < f.YearBuilt || f.YearRenovated > time.Now().Year()+1):
		return fmt.Errorf("year_renovated out of range: %d", f.YearRenovated)
	case f.Neighborhood == "":
		return fmt.Errorf("neighborhood is required")
	}

	return nil
}

// Age of the building in years at the given moment.
func (f PropertyFeatures) Age(now time.Time) int {
	age := now.Year() - f.YearBuilt
	if age < 0 {
		return 0
	}
	return age
}

// Renovated reports whether the property was ever renovated.
func (f PropertyFeatures) Renovated() bool {
	return f.YearRenovated > 0
}

// CacheKey is a stable digest of the feature set, used to key the
// prediction cache. Two requests with identical features share it.
func (f PropertyFeatures) CacheKey(modelVersion string) string {
	h := fnv.New64a()

	for _, v := range []float64{
		f.SqftLiving, f.SqftLot, float64(f.Bedrooms), f.Bathrooms,
		f.Floors, float64(f.Condition), float64(f.Grade),
		float64(f.YearBuilt), float64(f.YearRenovated),
	} {
		var buf [8]byte
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:]) //nolint:errcheck
	}

	h.Write([]byte(f.Neighborhood)) //nolint:errcheck
	h.Write([]byte(modelVersion))   //nolint:errcheck

	return strconv.FormatUint(h.Sum64(), 16)
}
