package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"usermgmt/internal/person/metrics"
	"usermgmt/internal/person/models"
	dErrors "usermgmt/pkg/domain-errors"
	"usermgmt/pkg/platform/sentinel"
	"usermgmt/pkg/requestcontext"
)

const tracerName = "usermgmt/internal/person/service"

// Store is the persistence contract the service needs.
type Store interface {
	List(ctx context.Context) ([]models.Person, error)
	Create(ctx context.Context, draft models.Draft) (models.Person, error)
	Update(ctx context.Context, id string, draft models.Draft) (models.Person, error)
	Delete(ctx context.Context, id string) error
}

// Service orchestrates person lifecycle operations over a Store.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
	strict  bool
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithStrictValidation rejects drafts with a blank name, missing birth date
// or negative salary. Off by default: historically only the client validated.
func WithStrictValidation(strict bool) Option {
	return func(s *Service) {
		s.strict = strict
	}
}

// New constructs a Service.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("person store is required")
	}
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NotFoundMessage is the caller-facing text for an unknown id.
func NotFoundMessage(id string) string {
	return fmt.Sprintf("Person with Id %s not found.", id)
}

// List returns every person in insertion order.
func (s *Service) List(ctx context.Context) ([]models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "person.List")
	defer span.End()
	start := time.Now()

	persons, err := s.store.List(ctx)
	s.metrics.ObserveOperation("list", start)
	if err != nil {
		return nil, s.fail(ctx, span, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to list persons."))
	}
	span.SetAttributes(attribute.Int("person.count", len(persons)))
	return persons, nil
}

// Create stores a new person and returns it with its minted id.
func (s *Service) Create(ctx context.Context, draft models.Draft) (models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "person.Create")
	defer span.End()

	if err := s.validate(draft); err != nil {
		return models.Person{}, s.fail(ctx, span, err)
	}

	start := time.Now()
	person, err := s.store.Create(ctx, draft)
	s.metrics.ObserveOperation("create", start)
	if err != nil {
		return models.Person{}, s.fail(ctx, span, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to create person."))
	}

	span.SetAttributes(attribute.String("person.id", person.ID))
	s.metrics.IncrementCreated()
	s.logger.InfoContext(ctx, "person created",
		"request_id", requestcontext.RequestID(ctx),
		"person_id", person.ID,
	)
	return person, nil
}

// Update replaces name, birth date and salary of an existing person.
func (s *Service) Update(ctx context.Context, id string, draft models.Draft) (models.Person, error) {
	ctx, span := s.tracer.Start(ctx, "person.Update", trace.WithAttributes(attribute.String("person.id", id)))
	defer span.End()

	if err := s.validate(draft); err != nil {
		return models.Person{}, s.fail(ctx, span, err)
	}

	start := time.Now()
	person, err := s.store.Update(ctx, id, draft)
	s.metrics.ObserveOperation("update", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementNotFound("update")
			return models.Person{}, dErrors.Wrap(err, dErrors.CodeNotFound, NotFoundMessage(id))
		}
		return models.Person{}, s.fail(ctx, span, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to update person."))
	}

	s.metrics.IncrementUpdated()
	s.logger.InfoContext(ctx, "person updated",
		"request_id", requestcontext.RequestID(ctx),
		"person_id", id,
	)
	return person, nil
}

// Delete removes a person.
func (s *Service) Delete(ctx context.Context, id string) error {
	ctx, span := s.tracer.Start(ctx, "person.Delete", trace.WithAttributes(attribute.String("person.id", id)))
	defer span.End()

	start := time.Now()
	err := s.store.Delete(ctx, id)
	s.metrics.ObserveOperation("delete", start)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.metrics.IncrementNotFound("delete")
			return dErrors.Wrap(err, dErrors.CodeNotFound, NotFoundMessage(id))
		}
		return s.fail(ctx, span, dErrors.Wrap(err, dErrors.CodeInternal, "Failed to delete person."))
	}

	s.metrics.IncrementDeleted()
	s.logger.InfoContext(ctx, "person deleted",
		"request_id", requestcontext.RequestID(ctx),
		"person_id", id,
	)
	return nil
}

func (s *Service) validate(draft models.Draft) error {
	if !s.strict {
		return nil
	}
	return draft.Validate()
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	if !dErrors.HasCode(err, dErrors.CodeValidation) {
		s.logger.ErrorContext(ctx, "person operation failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	return err
}
