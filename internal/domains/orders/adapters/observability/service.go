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

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/observability/service"

// Service decorates the validation workflow with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
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
		s.metrics = newServiceMetrics(m)
	}
}

// New wires a decorator around the core service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
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
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

// PlaceOrder opens an order with instrumentation.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrderService.PlaceOrder",
		attribute.String("order.payment_method", input.PaymentMethod),
		attribute.String("order.amount", input.Amount.String()))
	defer span.End()

	result, err := s.inner.PlaceOrder(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to place order", slog.String("customer", input.Customer))
	}
	order := result.Entity
	span.SetAttributes(
		attribute.String("order.id", order.ID),
		attribute.String("order.status", string(order.Status)),
		attribute.String("order.priority", string(order.Priority)))
	s.metrics.recordPlaced(ctx, order)
	s.logInfo(ctx, "order placed",
		slog.String("order.id", order.ID),
		slog.String("status", string(order.Status)),
		slog.String("priority", string(order.Priority)))
	return result, nil
}

func (s *Service) Get(ctx context.Context, id string) (*ports.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrderService.Get", attribute.String("order.id", id))
	defer span.End()

	result, err := s.inner.Get(ctx, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to get order", slog.String("order.id", id))
	}
	return result, nil
}

func (s *Service) List(ctx context.Context, input ports.ListInput) ([]*ports.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, "OrderService.List",
		attribute.String("order.filter.status", input.Status),
		attribute.String("order.filter.priority", input.Priority))
	defer span.End()

	result, err := s.inner.List(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list orders")
	}
	span.SetAttributes(attribute.Int("order.result.count", len(result)))
	return result, nil
}

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	ctx, span := s.startSpan(ctx, "OrderService.Summary")
	defer span.End()

	result, err := s.inner.Summary(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarize orders")
	}
	return result, nil
}

// Approve records an approval with instrumentation.
func (s *Service) Approve(ctx context.Context, input ports.DecisionInput) (*ports.OrderProjection, error) {
	return s.decide(ctx, "OrderService.Approve", input, s.inner.Approve)
}

// Reject records a rejection with instrumentation.
func (s *Service) Reject(ctx context.Context, input ports.DecisionInput) (*ports.OrderProjection, error) {
	return s.decide(ctx, "OrderService.Reject", input, s.inner.Reject)
}

func (s *Service) decide(ctx context.Context, name string, input ports.DecisionInput, next func(context.Context, ports.DecisionInput) (*ports.OrderProjection, error)) (*ports.OrderProjection, error) {
	ctx, span := s.startSpan(ctx, name, attribute.String("order.id", input.OrderID))
	defer span.End()

	result, err := next(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to decide order", slog.String("order.id", input.OrderID))
	}
	order := result.Entity
	span.SetAttributes(attribute.String("order.status", string(order.Status)))
	s.metrics.recordDecided(ctx, order)
	s.logInfo(ctx, "order decided", slog.String("order.id", order.ID), slog.String("status", string(order.Status)))
	return result, nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
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
	if err == nil {
		return nil
	}
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	ordersPlaced  metric.Int64Counter
	ordersDecided metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	placed, _ := m.Int64Counter("orders.service.orders_placed", metric.WithDescription("Number of orders entering validation"))
	decided, _ := m.Int64Counter("orders.service.orders_decided", metric.WithDescription("Number of orders approved or rejected"))
	return serviceMetrics{ordersPlaced: placed, ordersDecided: decided}
}

func (m serviceMetrics) recordPlaced(ctx context.Context, order *domain.Order) {
	if m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Add(ctx, 1, metric.WithAttributes(
		attribute.String("order.status", string(order.Status)),
		attribute.String("order.priority", string(order.Priority))))
}

func (m serviceMetrics) recordDecided(ctx context.Context, order *domain.Order) {
	if m.ordersDecided == nil {
		return
	}
	m.ordersDecided.Add(ctx, 1, metric.WithAttributes(attribute.String("order.status", string(order.Status))))
}

var _ ports.Service = (*Service)(nil)
