package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"home_pricer/internal/domain"
	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/errcodes"
)

type NeighborhoodRepository struct {
	db *sqlx.DB
}

func NewNeighborhoodRepository(db *sqlx.DB) *NeighborhoodRepository {
	return &NeighborhoodRepository{db: db}
}

func (r *NeighborhoodRepository) GetByCode(ctx context.Context, code string) (*entity.NeighborhoodStats, error) {
	query := `
		SELECT code, sample_count, median_price_cents, average_price_cents,
		       price_per_sqft_cents, updated_at
		FROM neighborhood_stats
		WHERE code = $1`

	var schema neighborhoodSchema
	if err := r.db.GetContext(ctx, &schema, query, code); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.NeighborhoodNotFound, "neighborhood not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get neighborhood stats")
	}

	return schema.toDomain(), nil
}

func (r *NeighborhoodRepository) List(ctx context.Context, limit, offset int) ([]entity.NeighborhoodStats, error) {
	query := `
		SELECT code, sample_count, median_price_cents, average_price_cents,
		       price_per_sqft_cents, updated_at
		FROM neighborhood_stats
		ORDER BY code
		LIMIT $1 OFFSET $2`

	var schemas []neighborhoodSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list neighborhood stats")
	}

	stats := make([]entity.NeighborhoodStats, 0, len(schemas))
	for i := range schemas {
		stats = append(stats, *schemas[i].toDomain())
	}

	return stats, nil
}

// RefreshFromProperties recomputes every neighborhood's aggregates from the
// properties table in one statement and returns the fresh rows. Properties
// without a sale price do not contribute.
func (r *NeighborhoodRepository) RefreshFromProperties(ctx context.Context) ([]entity.NeighborhoodStats, error) {
	query := `
		INSERT INTO neighborhood_stats (
			code, sample_count, median_price_cents, average_price_cents,
			price_per_sqft_cents, updated_at
		)
		SELECT neighborhood,
		       COUNT(*),
		       CAST(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY sale_price_cents) AS BIGINT),
		       CAST(AVG(sale_price_cents) AS BIGINT),
		       CAST(AVG(sale_price_cents / NULLIF(sqft_living, 0)) AS BIGINT),
		       $1
		FROM properties
		WHERE sale_price_cents IS NOT NULL
		GROUP BY neighborhood
		ON CONFLICT (code) DO UPDATE SET
			sample_count = EXCLUDED.sample_count,
			median_price_cents = EXCLUDED.median_price_cents,
			average_price_cents = EXCLUDED.average_price_cents,
			price_per_sqft_cents = EXCLUDED.price_per_sqft_cents,
			updated_at = EXCLUDED.updated_at
		RETURNING code, sample_count, median_price_cents, average_price_cents,
		          price_per_sqft_cents, updated_at`

	var schemas []neighborhoodSchema
	if err := r.db.SelectContext(ctx, &schemas, query, time.Now()); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to refresh neighborhood stats")
	}

	stats := make([]entity.NeighborhoodStats, 0, len(schemas))
	for i := range schemas {
		stats = append(stats, *schemas[i].toDomain())
	}

	return stats, nil
}

// UpsertStats writes one stats row, used by tests and backfills.
func (r *NeighborhoodRepository) UpsertStats(ctx context.Context, stats *entity.NeighborhoodStats) error {
	if stats.UpdatedAt.IsZero() {
		stats.UpdatedAt = time.Now()
	}

	query := `
		INSERT INTO neighborhood_stats (
			code, sample_count, median_price_cents, average_price_cents,
			price_per_sqft_cents, updated_at
		) VALUES (
			:code, :sample_count, :median_price_cents, :average_price_cents,
			:price_per_sqft_cents, :updated_at
		)
		ON CONFLICT (code) DO UPDATE SET
			sample_count = EXCLUDED.sample_count,
			median_price_cents = EXCLUDED.median_price_cents,
			average_price_cents = EXCLUDED.average_price_cents,
			price_per_sqft_cents = EXCLUDED.price_per_sqft_cents,
			updated_at = EXCLUDED.updated_at`

	schema := neighborhoodSchema{
		Code:              stats.Code,
		SampleCount:       stats.SampleCount,
		MedianPriceCents:  stats.MedianPriceCents,
		AveragePriceCents: stats.AveragePriceCents,
		PricePerSqftCents: stats.PricePerSqftCents,
		UpdatedAt:         stats.UpdatedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, query, schema); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to upsert neighborhood stats")
	}

	return nil
}
