package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"home_pricer/internal/domain"
	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/errcodes"
)

type PropertyRepository struct {
	db *sqlx.DB
}

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{db: db}
}

func (r *PropertyRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Create persists one property.
func (r *PropertyRepository) Create(ctx context.Context, property *entity.Property) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		return r.createTx(ctx, tx, property)
	})
}

// CreateBatch persists a slice of properties atomically. The ingest
// pipeline relies on this for its flush batches.
func (r *PropertyRepository) CreateBatch(ctx context.Context, properties []*entity.Property) error {
	if len(properties) == 0 {
		return nil
	}

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		for i, property := range properties {
			if err := r.createTx(ctx, tx, property); err != nil {
				return domain.WrapError(err, errcodes.InternalServerError,
					fmt.Sprintf("failed at index %d", i))
			}
		}
		return nil
	})
}

func (r *PropertyRepository) GetByID(ctx context.Context, id string) (*entity.Property, error) {
	query := `
		SELECT id, address, neighborhood, sqft_living, sqft_lot, bedrooms, bathrooms,
		       floors, condition, grade, year_built, year_renovated, latitude, longitude,
		       sale_price_cents, created_at, updated_at
		FROM properties
		WHERE id = $1`

	var schema propertySchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.PropertyNotFound, "property not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get property")
	}

	return schema.toDomain(), nil
}

func (r *PropertyRepository) List(ctx context.Context, limit, offset int) ([]entity.Property, error) {
	query := `
		SELECT id, address, neighborhood, sqft_living, sqft_lot, bedrooms, bathrooms,
		       floors, condition, grade, year_built, year_renovated, latitude, longitude,
		       sale_price_cents, created_at, updated_at
		FROM properties
		ORDER BY created_at DESC, id
		LIMIT $1 OFFSET $2`

	var schemas []propertySchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list properties")
	}

	properties := make([]entity.Property, 0, len(schemas))
	for i := range schemas {
		properties = append(properties, *schemas[i].toDomain())
	}

	return properties, nil
}

func (r *PropertyRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM properties WHERE id = $1)`

	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, domain.WrapError(err, errcodes.InternalServerError, "failed to check property existence")
	}

	return exists, nil
}

func (r *PropertyRepository) createTx(ctx context.Context, tx *sqlx.Tx, property *entity.Property) error {
	schema := fromProperty(property)

	now := time.Now()
	if schema.CreatedAt.IsZero() {
		schema.CreatedAt = now
	}
	if schema.UpdatedAt.IsZero() {
		schema.UpdatedAt = now
	}

	query := `
		INSERT INTO properties (
			id, address, neighborhood, sqft_living, sqft_lot, bedrooms, bathrooms,
			floors, condition, grade, year_built, year_renovated, latitude, longitude,
			sale_price_cents, created_at, updated_at
		) VALUES (
			:id, :address, :neighborhood, :sqft_living, :sqft_lot, :bedrooms, :bathrooms,
			:floors, :condition, :grade, :year_built, :year_renovated, :latitude, :longitude,
			:sale_price_cents, :created_at, :updated_at
		)`

	if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert property")
	}

	return nil
}
