package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/service/pricing"
	"home_pricer/internal/domain/value"
	"home_pricer/pkg/errcodes"
	"home_pricer/pkg/httpx/reply"
	"home_pricer/pkg/httpx/req"
	"home_pricer/pkg/rest"
)

const defaultRecentPredictions = 20

type pricingService interface {
	Predict(ctx context.Context, features value.PropertyFeatures) (entity.Prediction, error)
	GetPrediction(ctx context.Context, id string) (*entity.Prediction, error)
	ListRecentPredictions(ctx context.Context, limit int) ([]entity.Prediction, error)
	ModelInfo() pricing.ModelInfo
}

type PredictionServer struct {
	pricingService pricingService
}

func NewPredictionServer(pricingService pricingService) PredictionServer {
	return PredictionServer{
		pricingService: pricingService,
	}
}

func (s PredictionServer) postV1Prediction(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.PredictRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	features := newDomainFeatures(request)

	if err := features.Validate(); err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("features.Validate: %w", err),
			failure.WithCode(errcodes.InvalidFeatures),
		)
	}

	prediction, err := s.pricingService.Predict(ctx, features)
	if err != nil {
		return fmt.Errorf("pricingService.Predict: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPrediction(prediction))

	return nil
}

func (s PredictionServer) getV1Prediction(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		return failure.NewInvalidArgumentError(
			"empty prediction id",
			failure.WithCode(errcodes.InvalidPredictionID),
		)
	}

	prediction, err := s.pricingService.GetPrediction(ctx, id)
	if err != nil {
		return fmt.Errorf("pricingService.GetPrediction: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPrediction(*prediction))

	return nil
}

func (s PredictionServer) getV1Predictions(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := queryInt(r, "limit", defaultRecentPredictions)
	if err != nil || limit <= 0 || limit > maxPageSize {
		return failure.NewInvalidArgumentError(
			"invalid limit",
			failure.WithCode(errcodes.InvalidPaging),
		)
	}

	predictions, err := s.pricingService.ListRecentPredictions(ctx, limit)
	if err != nil {
		return fmt.Errorf("pricingService.ListRecentPredictions: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPredictions(predictions))

	return nil
}

func (s PredictionServer) getV1Model(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, newRESTModelInfo(s.pricingService.ModelInfo()))

	return nil
}

func (s PredictionServer) getHealth(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, rest.Health{
		Status:       "ok",
		ModelVersion: s.pricingService.ModelInfo().Version,
	})

	return nil
}
