package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"

	"home_pricer/internal/domain"
	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/errcodes"
)

type PredictionRepository struct {
	db *sqlx.DB
}

func NewPredictionRepository(db *sqlx.DB) *PredictionRepository {
	return &PredictionRepository{db: db}
}

// Create writes one audit row. Retried tasks hit the same id, hence the
// DO NOTHING.
func (r *PredictionRepository) Create(ctx context.Context, prediction *entity.Prediction) error {
	featuresBytes, err := json.Marshal(prediction.Features)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal features")
	}

	query := `
		INSERT INTO predictions (
			id, features, price_cents, interval_low_cents, interval_high_cents,
			model_version, created_at
		) VALUES (
			:id, :features, :price_cents, :interval_low_cents, :interval_high_cents,
			:model_version, :created_at
		)
		ON CONFLICT (id) DO NOTHING`

	params := map[string]any{
		"id":                  prediction.ID,
		"features":            featuresBytes,
		"price_cents":         prediction.PriceCents,
		"interval_low_cents":  prediction.Interval.LowCents,
		"interval_high_cents": prediction.Interval.HighCents,
		"model_version":       prediction.ModelVersion,
		"created_at":          prediction.CreatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, query, params); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert prediction")
	}

	return nil
}

func (r *PredictionRepository) GetByID(ctx context.Context, id string) (*entity.Prediction, error) {
	query := `
		SELECT id, features, price_cents, interval_low_cents, interval_high_cents,
		       model_version, created_at
		FROM predictions
		WHERE id = $1`

	var schema predictionSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.PredictionNotFound, "prediction not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get prediction")
	}

	prediction, err := schema.toDomain()
	if err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert prediction")
	}

	return prediction, nil
}

func (r *PredictionRepository) ListRecent(ctx context.Context, limit int) ([]entity.Prediction, error) {
	query := `
		SELECT id, features, price_cents, interval_low_cents, interval_high_cents,
		       model_version, created_at
		FROM predictions
		ORDER BY created_at DESC
		LIMIT $1`

	var schemas []predictionSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list predictions")
	}

	predictions := make([]entity.Prediction, 0, len(schemas))
	for i := range schemas {
		prediction, err := schemas[i].toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert prediction")
		}
		predictions = append(predictions, *prediction)
	}

	return predictions, nil
}
