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

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

const tracerName = "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/observability/service"

// Service decorates the quote calculator with tracing, logging, and metrics.
type Service struct {
	inner     ports.Service
	tracer    trace.Tracer
	logger    *slog.Logger
	submitted metric.Int64Counter
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		if m == nil {
			return
		}
		s.submitted, _ = m.Int64Counter("quotes.service.quotes_submitted", metric.WithDescription("Number of quotes generated for customers"))
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Catalog(ctx context.Context) ([]domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Catalog")
	defer span.End()

	result, err := s.inner.Catalog(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list quote catalog")
	}
	return result, nil
}

func (s *Service) Create(ctx context.Context, customer ports.CustomerInput) (*ports.QuoteView, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Create")
	defer span.End()

	result, err := s.inner.Create(ctx, customer)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to create quote")
	}
	span.SetAttributes(attribute.String("quote.id", result.ID))
	return result, nil
}

func (s *Service) Get(ctx context.Context, quoteID string) (*ports.QuoteView, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Get", trace.WithAttributes(attribute.String("quote.id", quoteID)))
	defer span.End()

	result, err := s.inner.Get(ctx, quoteID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get quote", slog.String("quote.id", quoteID))
	}
	return result, nil
}

func (s *Service) Add(ctx context.Context, quoteID string, productID int64) (*ports.QuoteView, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Add", trace.WithAttributes(
		attribute.String("quote.id", quoteID),
		attribute.Int64("quote.product_id", productID)))
	defer span.End()

	result, err := s.inner.Add(ctx, quoteID, productID)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add quote item", slog.String("quote.id", quoteID))
	}
	return result, nil
}

func (s *Service) SetQuantity(ctx context.Context, quoteID string, productID int64, quantity int) (*ports.QuoteView, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.SetQuantity", trace.WithAttributes(
		attribute.String("quote.id", quoteID),
		attribute.Int64("quote.product_id", productID),
		attribute.Int("quote.quantity", quantity)))
	defer span.End()

	result, err := s.inner.SetQuantity(ctx, quoteID, productID, quantity)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set quote quantity", slog.String("quote.id", quoteID))
	}
	return result, nil
}

// Submit generates the customer quote with instrumentation.
func (s *Service) Submit(ctx context.Context, input ports.SubmitInput) (*ports.SubmitResult, error) {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Submit", trace.WithAttributes(attribute.String("quote.id", input.QuoteID)))
	defer span.End()

	result, err := s.inner.Submit(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to submit quote", slog.String("quote.id", input.QuoteID))
	}
	span.SetAttributes(attribute.String("quote.total", result.Quote.Total.String()))
	if s.submitted != nil {
		s.submitted.Add(ctx, 1)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "quote submitted",
		slog.String("quote.id", result.Quote.ID),
		slog.String("company", result.Quote.Customer.Company),
		slog.String("total", result.Quote.Total.StringFixed(2)))
	return result, nil
}

func (s *Service) Discard(ctx context.Context, quoteID string) error {
	ctx, span := s.tracer.Start(ctx, "QuoteService.Discard", trace.WithAttributes(attribute.String("quote.id", quoteID)))
	defer span.End()

	if err := s.inner.Discard(ctx, quoteID); err != nil {
		return s.handleError(ctx, span, err, "failed to discard quote", slog.String("quote.id", quoteID))
	}
	return nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()))
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ ports.Service = (*Service)(nil)
