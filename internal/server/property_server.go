package server

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/errcodes"
	"home_pricer/pkg/httpx/reply"
	"home_pricer/pkg/httpx/req"
	"home_pricer/pkg/rest"
)

const (
	defaultPageSize = 50
	maxPageSize     = 500
)

type propertyRepository interface {
	Create(ctx context.Context, property *entity.Property) error
	GetByID(ctx context.Context, id string) (*entity.Property, error)
	List(ctx context.Context, limit, offset int) ([]entity.Property, error)
}

type PropertyServer struct {
	properties propertyRepository
}

func NewPropertyServer(properties propertyRepository) PropertyServer {
	return PropertyServer{
		properties: properties,
	}
}

func (s PropertyServer) postV1Property(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.Property

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	property, err := newDomainProperty(request)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("newDomainProperty: %w", err),
			failure.WithCode(errcodes.InvalidFeatures),
		)
	}

	if err := s.properties.Create(ctx, property); err != nil {
		return fmt.Errorf("properties.Create: %w", err)
	}

	reply.JSON(ctx, w, http.StatusCreated, newRESTProperty(*property))

	return nil
}

func (s PropertyServer) getV1Property(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		return failure.NewInvalidArgumentError(
			"empty property id",
			failure.WithCode(errcodes.InvalidPropertyID),
		)
	}

	property, err := s.properties.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("properties.GetByID: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTProperty(*property))

	return nil
}

func (s PropertyServer) getV1Properties(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	limit, err := queryInt(r, "limit", defaultPageSize)
	if err != nil || limit <= 0 || limit > maxPageSize {
		return failure.NewInvalidArgumentError(
			"invalid limit",
			failure.WithCode(errcodes.InvalidPaging),
		)
	}

	offset, err := queryInt(r, "offset", 0)
	if err != nil || offset < 0 {
		return failure.NewInvalidArgumentError(
			"invalid offset",
			failure.WithCode(errcodes.InvalidPaging),
		)
	}

	properties, err := s.properties.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("properties.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTPropertyList(properties, limit, offset))

	return nil
}

func queryInt(r *http.Request, name string, fallback int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback, nil
	}

	return strconv.Atoi(raw)
}
