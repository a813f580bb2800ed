package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"usermgmt/internal/person/models"
	dErrors "usermgmt/pkg/domain-errors"
	"usermgmt/pkg/platform/httputil"
	"usermgmt/pkg/requestcontext"
)

// Service defines the person operations the handlers call.
type Service interface {
	List(ctx context.Context) ([]models.Person, error)
	Create(ctx context.Context, draft models.Draft) (models.Person, error)
	Update(ctx context.Context, id string, draft models.Draft) (models.Person, error)
	Delete(ctx context.Context, id string) error
}

// Handler wires the /persons endpoints to the person service.
type Handler struct {
	service      Service
	logger       *slog.Logger
	maxBodyBytes int64
}

type Option func(*Handler)

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(h *Handler) {
		h.maxBodyBytes = n
	}
}

// New constructs a person handler with its dependencies.
func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{
		service:      service,
		logger:       logger,
		maxBodyBytes: httputil.DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts person endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/persons", h.HandleList)
	r.Post("/persons", h.HandleCreate)
	r.Put("/persons/{id}", h.HandleUpdate)
	r.Delete("/persons/{id}", h.HandleDelete)
}

// HandleList handles GET /persons.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	persons, err := h.service.List(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPersons(persons))
}

// HandleCreate handles POST /persons.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	req, err := httputil.DecodeJSON[PersonRequest](r, h.maxBodyBytes)
	if err != nil {
		h.logDecodeFailure(ctx, err)
		httputil.WriteError(w, err)
		return
	}

	person, err := h.service.Create(ctx, req.ToDraft())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromPerson(person))
}

// HandleUpdate handles PUT /persons/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	req, err := httputil.DecodeJSON[PersonRequest](r, h.maxBodyBytes)
	if err != nil {
		h.logDecodeFailure(ctx, err)
		httputil.WriteError(w, err)
		return
	}

	person, err := h.service.Update(ctx, id, req.ToDraft())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromPerson(person))
}

// HandleDelete handles DELETE /persons/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.MessageResponse{Message: deletedMessage(id)})
}

// HandleRouteNotFound answers every method and path no route claims.
func HandleRouteNotFound(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteError(w, dErrors.New(dErrors.CodeRouteNotFound, "Endpoint not found."))
}

// pathID returns the {id} segment percent-decoded exactly once. chi matches
// on the escaped path when one is present, so only then is decoding needed.
func pathID(r *http.Request) (string, error) {
	raw := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return raw, nil
	}
	id, err := url.PathUnescape(raw)
	if err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeBadRequest, "Malformed person id in path.")
	}
	return id, nil
}

func (h *Handler) logDecodeFailure(ctx context.Context, err error) {
	h.logger.WarnContext(ctx, "request body rejected",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
}
