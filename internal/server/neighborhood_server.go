package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"

	"home_pricer/internal/domain/entity"
	"home_pricer/pkg/errcodes"
	"home_pricer/pkg/httpx/reply"
)

type neighborhoodRepository interface {
	List(ctx context.Context, limit, offset int) ([]entity.NeighborhoodStats, error)
}

type NeighborhoodServer struct {
	neighborhoods neighborhoodRepository
}

func NewNeighborhoodServer(neighborhoods neighborhoodRepository) NeighborhoodServer {
	return NeighborhoodServer{
		neighborhoods: neighborhoods,
	}
}

func (s NeighborhoodServer) getV1Neighborhoods(w http.ResponseWriter, r *http.Request) error {
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

	stats, err := s.neighborhoods.List(ctx, limit, offset)
	if err != nil {
		return fmt.Errorf("neighborhoods.List: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTNeighborhoods(stats))

	return nil
}
