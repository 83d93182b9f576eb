package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	auditdomain "github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
)

const tracerName = "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/observability/service"

// Service decorates the audit service with tracing, logging, and metrics.
type Service struct {
	inner   auditports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core audit service.
func New(inner auditports.Service, opts ...Option) auditports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Record(ctx context.Context, input auditports.RecordInput) (*auditdomain.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "AuditService.Record",
		trace.WithAttributes(attribute.String("audit.action", string(input.Action)), attribute.String("audit.target", input.Target)))
	defer span.End()

	entry, err := s.inner.Record(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to record audit entry",
			slog.String("audit.action", string(input.Action)), slog.String("audit.target", input.Target))
	}
	s.metrics.recordEntry(ctx, entry.Action)
	s.logInfo(ctx, "audit entry recorded",
		slog.String("audit.id", entry.ID),
		slog.String("audit.action", string(entry.Action)),
		slog.String("audit.actor", entry.Actor),
		slog.String("audit.target", entry.Target))
	return entry, nil
}

func (s *Service) List(ctx context.Context, input auditports.ListInput) ([]*auditdomain.Entry, error) {
	ctx, span := s.tracer.Start(ctx, "AuditService.List")
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list audit entries", slog.String("audit.action", input.Action))
	}
	span.SetAttributes(attribute.Int("audit.entries.count", len(result)))
	return result, nil
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	entriesRecorded metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	entriesRecorded, _ := m.Int64Counter("audit.service.entries_recorded", metric.WithDescription("Number of audit entries appended"))
	return serviceMetrics{entriesRecorded: entriesRecorded}
}

func (m serviceMetrics) recordEntry(ctx context.Context, action auditdomain.Action) {
	if m.entriesRecorded != nil {
		m.entriesRecorded.Add(ctx, 1, metric.WithAttributes(attribute.String("audit.action", string(action))))
	}
}

var _ auditports.Service = (*Service)(nil)
