package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	personHandler "usermgmt/internal/person/handler"
	"usermgmt/internal/platform/metrics"
	"usermgmt/internal/platform/middleware"
)

// NewRouter wires all public endpoints behind the shared middleware chain.
// Any method or path without a route answers 404 with the standard envelope.
func NewRouter(persons *personHandler.Handler, logger *slog.Logger, m *metrics.Metrics) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestContext,
		middleware.AccessLog(logger, m),
		middleware.Recover(logger, m),
	)
	r.NotFound(personHandler.HandleRouteNotFound)
	r.MethodNotAllowed(personHandler.HandleRouteNotFound)

	persons.Register(r)
	return r
}
