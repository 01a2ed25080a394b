package server

import (
	"context"
	"errors"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"home_pricer/internal/domain"
	"home_pricer/pkg/errcodes"
	"home_pricer/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) {
	r.Get("/health", handler(s.getHealth))

	r.Route("/v1", func(r chi.Router) {
		r.Route("/predictions", func(r chi.Router) {
			r.Post("/", handler(s.postV1Prediction))
			r.Get("/", handler(s.getV1Predictions))
			r.Get("/{id}", handler(s.getV1Prediction))
		})

		r.Route("/properties", func(r chi.Router) {
			r.Post("/", handler(s.postV1Property))
			r.Get("/", handler(s.getV1Properties))
			r.Get("/{id}", handler(s.getV1Property))
		})

		r.Get("/neighborhoods", handler(s.getV1Neighborhoods))
		r.Get("/model", handler(s.getV1Model))
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			replyError(r.Context(), w, err)
		}
	}
}

// Repositories raise *domain.AppError, which carries a code but no HTTP
// class. Map the lookup misses to 404 here and leave the rest to
// reply.Error.
var notFoundCodes = map[failure.ErrorCode]struct{}{ //nolint:gochecknoglobals
	errcodes.PredictionNotFound:   {},
	errcodes.PropertyNotFound:     {},
	errcodes.NeighborhoodNotFound: {},
	errcodes.NotFound:             {},
}

func replyError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		if _, ok := notFoundCodes[appErr.Code]; ok {
			reply.NotFound(ctx, w, appErr.Code, appErr.Message)
			return
		}
	}

	reply.Error(ctx, w, err)
}
