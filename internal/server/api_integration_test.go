package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/value"
	"home_pricer/pkg/httpx"
	"home_pricer/pkg/rest"
	"home_pricer/pkg/tests"
)

// TestAPIRoundTrip drives the router over a real HTTP server, the way an
// external consumer would.
func TestAPIRoundTrip(t *testing.T) {
	rq := require.New(t)

	pricingSvc := &fakePricing{prediction: entity.Prediction{
		ID:           "pred-1",
		PriceCents:   25_000_000,
		Interval:     value.NewConfidenceInterval(21_080_000, 28_920_000),
		ModelVersion: "v1",
	}}

	router := newTestRouter(pricingSvc, &fakeProperties{}, &fakeNeighborhoods{})

	srv := httptest.NewServer(router)
	defer srv.Close()

	client := tests.NewAPIClient(srv.URL, &http.Client{
		Transport: httpx.NewLoggingRoundTripper(http.DefaultTransport),
	})
	random := tests.NewRandomizer()

	ctx := context.Background()

	t.Run("predict", func(t *testing.T) {
		request := validPredictRequest()
		request.SqftLiving = 500 + random.Float64()*3000
		request.YearRenovated = 0
		if random.Bool() {
			request.YearRenovated = request.YearBuilt + 1
		}

		var prediction rest.Prediction
		var apiErr rest.Error

		resp, err := client.Post(ctx, "/v1/predictions", http.Header{}, request, &prediction, &apiErr)
		rq.NoError(err)
		rq.Equal(http.StatusOK, resp.StatusCode)
		rq.Equal("pred-1", prediction.PredictionID)
		rq.InDelta(250000.0, prediction.PredictedPrice, 1e-9)
	})

	t.Run("predict with broken payload", func(t *testing.T) {
		var prediction rest.Prediction
		var apiErr rest.Error

		resp, err := client.PostJSON(ctx, "/v1/predictions", http.Header{}, `{"sqftLiving":`, &prediction, &apiErr)
		rq.NoError(err)
		rq.Equal(http.StatusBadRequest, resp.StatusCode)
		rq.NotEmpty(apiErr.Code)
	})

	t.Run("model info", func(t *testing.T) {
		var info rest.ModelInfo

		resp, err := client.Get(ctx, "/v1/model", http.Header{}, &info, nil)
		rq.NoError(err)
		rq.Equal(http.StatusOK, resp.StatusCode)
		rq.Equal("v1", info.Version)
	})

	t.Run("health", func(t *testing.T) {
		var health rest.Health

		resp, err := client.Get(ctx, "/health", http.Header{}, &health, nil)
		rq.NoError(err)
		rq.Equal(http.StatusOK, resp.StatusCode)
		rq.Equal("ok", health.Status)
	})
}
