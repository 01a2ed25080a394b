package pricing

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/rs/xid"

	"home_pricer/internal/domain/entity"
	"home_pricer/internal/domain/value"
	"home_pricer/pkg/metrics"
)

type model interface {
	Version() string
	TrainedAt() time.Time
	Features() []string
	RMSE() float64
	TreeCount() int
	Predict(vector []float64) (float64, error)
	IntervalWidth() float64
	NeighborhoodBaseline(code string) (float64, bool)
	GlobalMedian() float64
}

type predictionCache interface {
	Get(ctx context.Context, key string) (*entity.Prediction, error)
	Set(ctx context.Context, key string, prediction entity.Prediction) error
}

type predictionRecorder interface {
	EnqueueRecord(ctx context.Context, prediction entity.Prediction) error
}

type predictionRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Prediction, error)
	ListRecent(ctx context.Context, limit int) ([]entity.Prediction, error)
}

// Service prices properties with the loaded GBDT model. Fresh scores are
// cached in redis keyed by the feature digest and recorded asynchronously
// through the audit queue.
type Service struct {
	model    model
	encoder  *Encoder
	cache    predictionCache
	recorder predictionRecorder
	repo     predictionRepository
}

func NewService(
	m model,
	encoder *Encoder,
	cache predictionCache,
	recorder predictionRecorder,
	repo predictionRepository,
) *Service {
	return &Service{
		model:    m,
		encoder:  encoder,
		cache:    cache,
		recorder: recorder,
		repo:     repo,
	}
}

// ModelInfo describes the artifact currently serving predictions.
type ModelInfo struct {
	Version   string
	TrainedAt time.Time
	Features  []string
	RMSE      float64
	TreeCount int
}

func (s *Service) ModelInfo() ModelInfo {
	return ModelInfo{
		Version:   s.model.Version(),
		TrainedAt: s.model.TrainedAt(),
		Features:  s.model.Features(),
		RMSE:      s.model.RMSE(),
		TreeCount: s.model.TreeCount(),
	}
}

// Predict scores one feature set. Cache hits are replayed with their
// original prediction id and marked Cached.
func (s *Service) Predict(ctx context.Context, features value.PropertyFeatures) (entity.Prediction, error) {
	start := time.Now()
	defer func() {
		metrics.PredictionDuration.Observe(time.Since(start).Seconds())
	}()

	if err := features.Validate(); err != nil {
		metrics.PredictionsTotal.WithLabelValues("rejected").Inc()
		return entity.Prediction{}, fmt.Errorf("features.Validate: %w", err)
	}

	cacheKey := features.CacheKey(s.model.Version())

	if cached, err := s.cache.Get(ctx, cacheKey); err == nil && cached != nil {
		metrics.PredictionsTotal.WithLabelValues("cached").Inc()
		cached.Cached = true
		return *cached, nil
	} else if err != nil {
		logger(ctx).Warn("prediction cache lookup failed", "error", err)
	}

	prediction, err := s.score(ctx, features)
	if err != nil {
		metrics.PredictionsTotal.WithLabelValues("failed").Inc()
		return entity.Prediction{}, err
	}

	if err := s.cache.Set(ctx, cacheKey, prediction); err != nil {
		logger(ctx).Warn("prediction cache store failed", "error", err)
	}

	if err := s.recorder.EnqueueRecord(ctx, prediction); err != nil {
		// The client already has the answer; losing one audit row is
		// worth logging, not failing the request.
		logger(ctx).Error("failed to enqueue prediction audit record", "prediction_id", prediction.ID, "error", err)
	}

	metrics.PredictionsTotal.WithLabelValues("scored").Inc()

	return prediction, nil
}

func (s *Service) score(ctx context.Context, features value.PropertyFeatures) (entity.Prediction, error) {
	vector, err := s.encoder.Encode(ctx, features)
	if err != nil {
		return entity.Prediction{}, fmt.Errorf("encoder.Encode: %w", err)
	}

	price, err := s.model.Predict(vector)
	if err != nil {
		return entity.Prediction{}, fmt.Errorf("model.Predict: %w", err)
	}

	priceCents := dollarsToCents(price)
	width := dollarsToCents(s.model.IntervalWidth())

	return entity.Prediction{
		ID:           xid.New().String(),
		Features:     features,
		PriceCents:   priceCents,
		Interval:     value.NewConfidenceInterval(priceCents-width, priceCents+width),
		ModelVersion: s.model.Version(),
		CreatedAt:    time.Now().UTC(),
	}, nil
}

// GetPrediction returns a stored audit record by id.
func (s *Service) GetPrediction(ctx context.Context, id string) (*entity.Prediction, error) {
	prediction, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("predictionRepository.GetByID: %w", err)
	}

	return prediction, nil
}

// ListRecentPredictions returns the newest audit records, up to limit.
func (s *Service) ListRecentPredictions(ctx context.Context, limit int) ([]entity.Prediction, error) {
	predictions, err := s.repo.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("predictionRepository.ListRecent: %w", err)
	}

	return predictions, nil
}

func dollarsToCents(dollars float64) int64 {
	return int64(math.Round(dollars * 100))
}
