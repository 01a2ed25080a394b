package server_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"home_pricer/internal/domain"
	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/service/pricing"
	"home_pricer/internal/domain/value"
	"home_pricer/internal/server"
	"home_pricer/pkg/errcodes"
	"home_pricer/pkg/rest"
)

type fakePricing struct {
	prediction entity.Prediction
	stored     map[string]*entity.Prediction
	recent     []entity.Prediction
	err        error
}

func (f *fakePricing) Predict(_ context.Context, features value.PropertyFeatures) (entity.Prediction, error) {
	if f.err != nil {
		return entity.Prediction{}, f.err
	}
	p := f.prediction
	p.Features = features
	return p, nil
}

func (f *fakePricing) GetPrediction(_ context.Context, id string) (*entity.Prediction, error) {
	if p, ok := f.stored[id]; ok {
		return p, nil
	}
	return nil, domain.NewError(errcodes.PredictionNotFound, "prediction not found")
}

func (f *fakePricing) ListRecentPredictions(_ context.Context, limit int) ([]entity.Prediction, error) {
	if limit < len(f.recent) {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakePricing) ModelInfo() pricing.ModelInfo {
	return pricing.ModelInfo{
		Version:   "v1",
		TrainedAt: time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Features:  []string{"sqft_living"},
		RMSE:      20000,
		TreeCount: 40,
	}
}

type fakeProperties struct {
	created []*entity.Property
	stored  map[string]*entity.Property
	list    []entity.Property
}

func (f *fakeProperties) Create(_ context.Context, property *entity.Property) error {
	f.created = append(f.created, property)
	return nil
}

func (f *fakeProperties) GetByID(_ context.Context, id string) (*entity.Property, error) {
	if p, ok := f.stored[id]; ok {
		return p, nil
	}
	return nil, domain.NewError(errcodes.PropertyNotFound, "property not found")
}

func (f *fakeProperties) List(_ context.Context, limit, offset int) ([]entity.Property, error) {
	return f.list, nil
}

type fakeNeighborhoods struct {
	list []entity.NeighborhoodStats
}

func (f *fakeNeighborhoods) List(_ context.Context, limit, offset int) ([]entity.NeighborhoodStats, error) {
	return f.list, nil
}

func newTestRouter(pricingSvc *fakePricing, properties *fakeProperties, neighborhoods *fakeNeighborhoods) chi.Router {
	srv := server.NewServer(
		server.NewPredictionServer(pricingSvc),
		server.NewPropertyServer(properties),
		server.NewNeighborhoodServer(neighborhoods),
	)

	router := chi.NewRouter()
	srv.RegisterRoutes(router)

	return router
}

func doJSON(t *testing.T, router chi.Router, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, jsoniter.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	return rec
}

func validPredictRequest() rest.PredictRequest {
	return rest.PredictRequest{
		SqftLiving:   1890,
		SqftLot:      6560,
		Bedrooms:     3,
		Bathrooms:    2.25,
		Floors:       2,
		Condition:    3,
		Grade:        7,
		YearBuilt:    1994,
		Neighborhood: "98052",
	}
}

func TestPostV1Prediction(t *testing.T) {
	t.Run("scores a valid request", func(t *testing.T) {
		rq := require.New(t)

		pricingSvc := &fakePricing{prediction: entity.Prediction{
			ID:           "pred-1",
			PriceCents:   25_000_000,
			Interval:     value.NewConfidenceInterval(21_080_000, 28_920_000),
			ModelVersion: "v1",
			CreatedAt:    time.Now().UTC(),
		}}

		router := newTestRouter(pricingSvc, &fakeProperties{}, &fakeNeighborhoods{})

		rec := doJSON(t, router, http.MethodPost, "/v1/predictions", validPredictRequest())
		rq.Equal(http.StatusOK, rec.Code)

		var response rest.Prediction
		rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
		rq.Equal("pred-1", response.PredictionID)
		rq.InDelta(250000.0, response.PredictedPrice, 1e-9)
		rq.InDelta(210800.0, response.ConfidenceInterval.Low, 1e-9)
		rq.InDelta(289200.0, response.ConfidenceInterval.High, 1e-9)
		rq.Equal("v1", response.ModelVersion)
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		rq := require.New(t)

		router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

		req := httptest.NewRequest(http.MethodPost, "/v1/predictions", bytes.NewBufferString("{nope"))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		rq.Equal(http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects out-of-range features", func(t *testing.T) {
		rq := require.New(t)

		router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

		request := validPredictRequest()
		request.SqftLiving = 0

		rec := doJSON(t, router, http.MethodPost, "/v1/predictions", request)
		rq.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestGetV1Prediction(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		rq := require.New(t)

		pricingSvc := &fakePricing{stored: map[string]*entity.Prediction{
			"pred-1": {ID: "pred-1", PriceCents: 100_00, ModelVersion: "v1"},
		}}

		router := newTestRouter(pricingSvc, &fakeProperties{}, &fakeNeighborhoods{})

		rec := doJSON(t, router, http.MethodGet, "/v1/predictions/pred-1", nil)
		rq.Equal(http.StatusOK, rec.Code)

		var response rest.Prediction
		rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
		rq.Equal("pred-1", response.PredictionID)
	})

	t.Run("missing id is a 404", func(t *testing.T) {
		rq := require.New(t)

		router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

		rec := doJSON(t, router, http.MethodGet, "/v1/predictions/nope", nil)
		rq.Equal(http.StatusNotFound, rec.Code)
		rq.Contains(rec.Body.String(), errcodes.PredictionNotFound.String())
	})
}

func TestGetV1Predictions(t *testing.T) {
	t.Run("lists recent", func(t *testing.T) {
		rq := require.New(t)

		pricingSvc := &fakePricing{recent: []entity.Prediction{
			{ID: "a"}, {ID: "b"},
		}}

		router := newTestRouter(pricingSvc, &fakeProperties{}, &fakeNeighborhoods{})

		rec := doJSON(t, router, http.MethodGet, "/v1/predictions", nil)
		rq.Equal(http.StatusOK, rec.Code)

		var response []rest.Prediction
		rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
		rq.Len(response, 2)
	})

	t.Run("invalid limit", func(t *testing.T) {
		rq := require.New(t)

		router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

		rec := doJSON(t, router, http.MethodGet, "/v1/predictions?limit=0", nil)
		rq.Equal(http.StatusBadRequest, rec.Code)

		rec = doJSON(t, router, http.MethodGet, "/v1/predictions?limit=9999", nil)
		rq.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestPostV1Property(t *testing.T) {
	t.Run("creates a property", func(t *testing.T) {
		rq := require.New(t)

		properties := &fakeProperties{}
		router := newTestRouter(&fakePricing{}, properties, &fakeNeighborhoods{})

		salePrice := 450000.0
		request := rest.Property{
			Neighborhood: "98052",
			SqftLiving:   1890,
			SqftLot:      6560,
			Bedrooms:     3,
			Bathrooms:    2.25,
			Floors:       2,
			Condition:    3,
			Grade:        7,
			YearBuilt:    1994,
			SalePrice:    &salePrice,
		}

		rec := doJSON(t, router, http.MethodPost, "/v1/properties", request)
		rq.Equal(http.StatusCreated, rec.Code)
		rq.Len(properties.created, 1)

		created := properties.created[0]
		rq.NotEmpty(created.ID, "server mints an id when none is given")
		rq.NotNil(created.SalePriceCents)
		rq.Equal(int64(45_000_000), *created.SalePriceCents)

		var response rest.Property
		rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
		rq.Equal(created.ID, response.ID)
	})

	t.Run("rejects non-positive sale price", func(t *testing.T) {
		rq := require.New(t)

		router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

		salePrice := -1.0
		request := rest.Property{
			Neighborhood: "98052",
			SqftLiving:   1890,
			YearBuilt:    1994,
			SalePrice:    &salePrice,
		}

		rec := doJSON(t, router, http.MethodPost, "/v1/properties", request)
		rq.Equal(http.StatusBadRequest, rec.Code)
	})
}

func TestGetV1Properties(t *testing.T) {
	rq := require.New(t)

	properties := &fakeProperties{list: []entity.Property{
		{ID: "prop-1", Neighborhood: "98052", SqftLiving: 1890, YearBuilt: 1994},
	}}

	router := newTestRouter(&fakePricing{}, properties, &fakeNeighborhoods{})

	rec := doJSON(t, router, http.MethodGet, "/v1/properties?limit=10&offset=0", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var response rest.PropertyList
	rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
	rq.Len(response.Items, 1)
	rq.Equal(10, response.Limit)
	rq.Equal("prop-1", response.Items[0].ID)
}

func TestGetV1Property(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

	rec := doJSON(t, router, http.MethodGet, "/v1/properties/nope", nil)
	rq.Equal(http.StatusNotFound, rec.Code)
}

func TestGetV1Neighborhoods(t *testing.T) {
	rq := require.New(t)

	neighborhoods := &fakeNeighborhoods{list: []entity.NeighborhoodStats{
		{
			Code:              "98052",
			SampleCount:       120,
			MedianPriceCents:  65_000_000,
			AveragePriceCents: 70_000_000,
			PricePerSqftCents: 35_000,
			UpdatedAt:         time.Now().UTC(),
		},
	}}

	router := newTestRouter(&fakePricing{}, &fakeProperties{}, neighborhoods)

	rec := doJSON(t, router, http.MethodGet, "/v1/neighborhoods", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var response []rest.NeighborhoodStats
	rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
	rq.Len(response, 1)
	rq.Equal("98052", response[0].Code)
	rq.InDelta(650000.0, response[0].MedianPrice, 1e-9)
}

func TestGetV1Model(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

	rec := doJSON(t, router, http.MethodGet, "/v1/model", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var response rest.ModelInfo
	rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
	rq.Equal("v1", response.Version)
	rq.Equal(40, response.TreeCount)
}

func TestGetHealth(t *testing.T) {
	rq := require.New(t)

	router := newTestRouter(&fakePricing{}, &fakeProperties{}, &fakeNeighborhoods{})

	rec := doJSON(t, router, http.MethodGet, "/health", nil)
	rq.Equal(http.StatusOK, rec.Code)

	var response rest.Health
	rq.NoError(jsoniter.Unmarshal(rec.Body.Bytes(), &response))
	rq.Equal("ok", response.Status)
	rq.Equal("v1", response.ModelVersion)
}
