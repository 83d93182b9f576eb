package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

const tracerName = "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/observability/service"

// Service decorates the inventory service with tracing, logging, and metrics.
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

func (s *Service) List(ctx context.Context, filter domain.Filter) ([]*domain.Unit, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.List", attribute.String("inventory.product", filter.Product))
	defer span.End()

	result, err := s.inner.List(ctx, filter)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to list inventory")
	}
	span.SetAttributes(attribute.Int("inventory.result.count", len(result)))
	return result, nil
}

func (s *Service) UniqueCategories(ctx context.Context) (*domain.Categories, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.UniqueCategories")
	defer span.End()

	result, err := s.inner.UniqueCategories(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to collect inventory categories")
	}
	return result, nil
}

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.Summary")
	defer span.End()

	result, err := s.inner.Summary(ctx)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to summarize inventory")
	}
	return result, nil
}

// AddUnit registers a unit with instrumentation.
func (s *Service) AddUnit(ctx context.Context, input ports.AddUnitInput) (*domain.Unit, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.AddUnit", attribute.String("inventory.product", input.Product))
	defer span.End()

	s.logInfo(ctx, "adding inventory unit", slog.String("product", input.Product), slog.String("model", input.Model))
	result, err := s.inner.AddUnit(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to add inventory unit", slog.String("product", input.Product))
	}
	s.metrics.recordAdded(ctx, 1, "manual")
	s.logInfo(ctx, "inventory unit added", slog.Int64("unit.id", result.ID), slog.String("product", result.Product))
	return result, nil
}

// Import registers a CSV batch with instrumentation.
func (s *Service) Import(ctx context.Context, input ports.ImportInput) (*ports.ImportResult, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.Import", attribute.String("inventory.import.source", input.Source))
	defer span.End()

	s.logInfo(ctx, "importing inventory", slog.String("source", input.Source))
	result, err := s.inner.Import(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to import inventory", slog.String("source", input.Source))
	}
	span.SetAttributes(attribute.Int("inventory.import.count", result.Imported))
	s.metrics.recordAdded(ctx, int64(result.Imported), "csv")
	s.logInfo(ctx, "inventory imported", slog.String("source", input.Source), slog.Int("count", result.Imported))
	return result, nil
}

// Sell records a FIFO sale with instrumentation.
func (s *Service) Sell(ctx context.Context, input ports.SellInput) (*ports.SaleResult, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.Sell",
		attribute.String("inventory.product", input.Product),
		attribute.Int("inventory.sale.requested", input.Quantity))
	defer span.End()

	s.logInfo(ctx, "selling inventory", slog.String("product", input.Product), slog.Int("quantity", input.Quantity))
	result, err := s.inner.Sell(ctx, input)
	if err != nil {
		var shortage *domain.InsufficientStockError
		if errors.As(err, &shortage) {
			s.metrics.recordRejected(ctx, input.Product)
			span.SetAttributes(attribute.Int("inventory.sale.available", shortage.Available))
		}
		return nil, s.handleError(ctx, span, err, "failed to sell inventory",
			slog.String("product", input.Product), slog.Int("quantity", input.Quantity))
	}
	span.SetAttributes(attribute.Bool("inventory.sale.replayed", result.Replayed))
	if !result.Replayed {
		s.metrics.recordSold(ctx, int64(result.Sold), result.Product)
	}
	s.logInfo(ctx, "inventory sold",
		slog.String("product", result.Product),
		slog.Int("sold", result.Sold),
		slog.Any("unit.ids", result.UnitIDs),
		slog.Bool("replayed", result.Replayed))
	return result, nil
}

func (s *Service) Export(ctx context.Context, input ports.ExportInput) (*ports.ExportResult, error) {
	ctx, span := s.startSpan(ctx, "InventoryService.Export", attribute.String("inventory.export.format", string(input.Format)))
	defer span.End()

	result, err := s.inner.Export(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to export inventory", slog.String("format", string(input.Format)))
	}
	span.SetAttributes(attribute.Int("inventory.export.bytes", len(result.Data)))
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
	unitsAdded    metric.Int64Counter
	unitsSold     metric.Int64Counter
	salesRejected metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	unitsAdded, _ := m.Int64Counter("inventory.service.units_added", metric.WithDescription("Number of units taken into stock"))
	unitsSold, _ := m.Int64Counter("inventory.service.units_sold", metric.WithDescription("Number of units sold FIFO"))
	salesRejected, _ := m.Int64Counter("inventory.service.sales_rejected", metric.WithDescription("Number of sales rejected for insufficient stock"))
	return serviceMetrics{unitsAdded: unitsAdded, unitsSold: unitsSold, salesRejected: salesRejected}
}

func (m serviceMetrics) recordAdded(ctx context.Context, count int64, source string) {
	addCounter(ctx, m.unitsAdded, count, attribute.String("inventory.source", source))
}

func (m serviceMetrics) recordSold(ctx context.Context, count int64, product string) {
	addCounter(ctx, m.unitsSold, count, attribute.String("inventory.product", product))
}

func (m serviceMetrics) recordRejected(ctx context.Context, product string) {
	addCounter(ctx, m.salesRejected, 1, attribute.String("inventory.product", product))
}

func addCounter(ctx context.Context, counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if counter == nil {
		return
	}
	counter.Add(ctx, value, metric.WithAttributes(attrs...))
}

var _ ports.Service = (*Service)(nil)
