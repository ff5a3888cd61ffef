package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	regmetrics "regform/internal/registration/metrics"
	"regform/internal/registration/models"
	"regform/internal/registration/validation"
	dErrors "regform/pkg/domain-errors"
	"regform/pkg/platform/sentinel"
)

// Caller-facing messages. Clients match on these strings.
const (
	MsgAllFieldsRequired      = "All fields are required"
	MsgInvalidEmailFormat     = "Invalid email format"
	MsgEmailAlreadyRegistered = "Email already registered"
)

// Store is the persistence the service needs. Implementations must reject a
// duplicate email atomically with sentinel.ErrConflict.
type Store interface {
	Insert(ctx context.Context, sub models.Submission) (models.Record, error)
	List(ctx context.Context) ([]models.Record, error)
	Count(ctx context.Context) (int, error)
}

// Service validates and persists registrations and answers read queries.
type Service struct {
	store   Store
	logger  *slog.Logger
	metrics *regmetrics.Metrics
	tracer  trace.Tracer
}

// Option configures a Service.
type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *regmetrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.Default(),
		tracer: otel.Tracer("regform/registration"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register validates sub and inserts it exactly once. Validation and
// duplicate failures come back as CodeValidation/CodeConflict; any other store
// failure is CodeInternal with the cause attached for logging.
func (s *Service) Register(ctx context.Context, sub models.Submission) (models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Register")
	defer span.End()

	if err := validation.Validate(sub); err != nil {
		outcome, msg := regmetrics.OutcomeMissing, MsgAllFieldsRequired
		if errors.Is(err, validation.ErrInvalidEmailFormat) {
			outcome, msg = regmetrics.OutcomeInvalidEmail, MsgInvalidEmailFormat
		}
		s.metrics.IncRegistration(outcome)
		span.SetAttributes(attribute.String("registration.outcome", outcome))
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeValidation, msg)
	}

	start := time.Now()
	rec, err := s.store.Insert(ctx, sub)
	s.metrics.ObserveInsert(start)
	if err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			s.metrics.IncRegistration(regmetrics.OutcomeDuplicate)
			span.SetAttributes(attribute.String("registration.outcome", regmetrics.OutcomeDuplicate))
			return models.Record{}, dErrors.Wrap(err, dErrors.CodeConflict, MsgEmailAlreadyRegistered)
		}
		s.metrics.IncRegistration(regmetrics.OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return models.Record{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register user")
	}

	s.metrics.IncRegistration(regmetrics.OutcomeCreated)
	span.SetAttributes(
		attribute.String("registration.outcome", regmetrics.OutcomeCreated),
		attribute.Int64("registration.id", rec.ID),
	)
	s.logger.InfoContext(ctx, "user registered", "user_id", rec.ID)
	return rec, nil
}

// List returns every record, newest first.
func (s *Service) List(ctx context.Context) ([]models.Record, error) {
	ctx, span := s.tracer.Start(ctx, "registration.List")
	defer span.End()

	start := time.Now()
	records, err := s.store.List(ctx)
	s.metrics.ObserveQuery("list", start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "list failed")
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list users")
	}
	if records == nil {
		records = []models.Record{}
	}
	return records, nil
}

// Count returns the number of stored records.
func (s *Service) Count(ctx context.Context) (int, error) {
	ctx, span := s.tracer.Start(ctx, "registration.Count")
	defer span.End()

	start := time.Now()
	n, err := s.store.Count(ctx)
	s.metrics.ObserveQuery("count", start)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "count failed")
		return 0, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	return n, nil
}
