package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/value"
)

// Feature names the encoder knows how to produce. The artifact's feature
// list must be a subset of these.
const (
	featSqftLiving         = "sqft_living"
	featSqftLot            = "sqft_lot"
	featBedrooms           = "bedrooms"
	featBathrooms          = "bathrooms"
	featFloors             = "floors"
	featCondition          = "condition"
	featGrade              = "grade"
	featAge                = "age"
	featRenovated          = "renovated"
	featNeighborhoodMedian = "neighborhood_median_price"
)

// Encoder turns a validated feature object into the model's input vector.
// The neighborhood target encoding is backed by live stats from Postgres,
// memoized in-process; unknown neighborhoods fall back to the artifact's
// training-time baseline.
type Encoder struct {
	model     model
	statsRepo neighborhoodStats
	memo      *cache.Cache
	now       func() time.Time
}

type neighborhoodStats interface {
	GetByCode(ctx context.Context, code string) (*entity.NeighborhoodStats, error)
}

func NewEncoder(m model, statsRepo neighborhoodStats, statsTTL time.Duration) *Encoder {
	return &Encoder{
		model:     m,
		statsRepo: statsRepo,
		memo:      cache.New(statsTTL, statsTTL*2),
		now:       time.Now,
	}
}

// Encode produces the vector in artifact feature order.
func (e *Encoder) Encode(ctx context.Context, f value.PropertyFeatures) ([]float64, error) {
	values := map[string]float64{
		featSqftLiving: f.SqftLiving,
		featSqftLot:    f.SqftLot,
		featBedrooms:   float64(f.Bedrooms),
		featBathrooms:  f.Bathrooms,
		featFloors:     f.Floors,
		featCondition:  float64(f.Condition),
		featGrade:      float64(f.Grade),
		featAge:        float64(f.Age(e.now())),
		featRenovated:  0,
	}

	if f.Renovated() {
		values[featRenovated] = 1
	}

	names := e.model.Features()

	vector := make([]float64, len(names))

	for i, name := range names {
		if name == featNeighborhoodMedian {
			vector[i] = e.neighborhoodMedian(ctx, f.Neighborhood)
			continue
		}

		v, ok := values[name]
		if !ok {
			return nil, fmt.Errorf("model expects unknown feature %q", name)
		}

		vector[i] = v
	}

	return vector, nil
}

func (e *Encoder) neighborhoodMedian(ctx context.Context, code string) float64 {
	if v, found := e.memo.Get(code); found {
		return v.(float64)
	}

	median := e.fetchMedian(ctx, code)
	e.memo.Set(code, median, cache.DefaultExpiration)

	return median
}

func (e *Encoder) fetchMedian(ctx context.Context, code string) float64 {
	stats, err := e.statsRepo.GetByCode(ctx, code)
	if err == nil && stats.MedianPriceCents > 0 {
		return float64(stats.MedianPriceCents) / 100
	}

	if err != nil {
		logger(ctx).Debug("neighborhood stats unavailable, falling back to artifact baseline",
			"neighborhood", code, "error", err)
	}

	baseline, _ := e.model.NeighborhoodBaseline(code)

	return baseline
}
