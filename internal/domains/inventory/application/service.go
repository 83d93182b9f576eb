package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	auditdomain "github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

// Service orchestrates the inventory use cases.
type Service struct {
	repo        ports.Repository
	audit       auditports.Recorder
	locker      ports.ProductLocker
	idempotency ports.IdempotencyStore
	publisher   ports.EventPublisher
	logger      *slog.Logger
	now         func() time.Time
}

type Option func(*Service)

// WithLocker serializes sales per product through the given locker.
func WithLocker(locker ports.ProductLocker) Option {
	return func(s *Service) { s.locker = locker }
}

// WithIdempotencyStore enables Idempotency-Key replay for sales.
func WithIdempotencyStore(store ports.IdempotencyStore) Option {
	return func(s *Service) { s.idempotency = store }
}

// WithPublisher forwards committed events.
func WithPublisher(publisher ports.EventPublisher) Option {
	return func(s *Service) { s.publisher = publisher }
}

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService wires the inventory service. Every mutation appends to audit before it commits.
func NewService(repo ports.Repository, audit auditports.Recorder, opts ...Option) *Service {
	s := &Service{repo: repo, audit: audit, logger: slog.Default(), now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// List returns units matching the filter, oldest first.
func (s *Service) List(ctx context.Context, filter domain.Filter) ([]*domain.Unit, error) {
	units, err := s.repo.List(ctx, filter.Normalize())
	if err != nil {
		return nil, mapError(err)
	}
	return units, nil
}

// UniqueCategories collects filter menu values across the unfiltered inventory.
func (s *Service) UniqueCategories(ctx context.Context) (*domain.Categories, error) {
	units, err := s.repo.List(ctx, domain.Filter{})
	if err != nil {
		return nil, mapError(err)
	}
	categories := domain.CollectCategories(units)
	return &categories, nil
}

// Summary computes the dashboard counters.
func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	units, err := s.repo.List(ctx, domain.Filter{})
	if err != nil {
		return nil, mapError(err)
	}
	summary := domain.Summarize(units, s.now())
	return &summary, nil
}

// AddUnit registers a single unit from manual intake.
func (s *Service) AddUnit(ctx context.Context, input ports.AddUnitInput) (*domain.Unit, error) {
	unit, err := s.buildUnit(input)
	if err != nil {
		return nil, mapError(err)
	}
	stored, err := s.repo.Add(ctx, []*domain.Unit{unit}, func(ctx context.Context, units []*domain.Unit) error {
		u := units[0]
		return s.record(ctx, auditdomain.ActionInventoryUpdated, unitTarget(u.ID),
			fmt.Sprintf("Added %s (%s) IMEI %s serial %s", u.Model, u.Product, valueOrDash(u.IMEI), valueOrDash(u.SerialNumber)))
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.UnitsAdded{
		BaseEvent: domain.BaseEvent{Timestamp: s.now().UTC()},
		UnitIDs:   unitIDs(stored),
		Products:  []string{stored[0].Product},
		Source:    "manual",
	})
	return stored[0], nil
}

// Import registers every row of a CSV document in one atomic batch.
func (s *Service) Import(ctx context.Context, input ports.ImportInput) (*ports.ImportResult, error) {
	rows, err := parseImport(input.Reader)
	if err != nil {
		return nil, mapError(err)
	}
	units := make([]*domain.Unit, 0, len(rows))
	for _, row := range rows {
		unit, err := s.buildUnit(row.input)
		if err != nil {
			return nil, mapError(fmt.Errorf("row %d: %w", row.line, err))
		}
		units = append(units, unit)
	}
	source := strings.TrimSpace(input.Source)
	if source == "" {
		source = "csv"
	}
	stored, err := s.repo.Add(ctx, units, func(ctx context.Context, added []*domain.Unit) error {
		return s.record(ctx, auditdomain.ActionCSVImport, source,
			fmt.Sprintf("Imported %d unit(s): ids %s", len(added), joinIDs(unitIDs(added))))
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.UnitsAdded{
		BaseEvent: domain.BaseEvent{Timestamp: s.now().UTC()},
		UnitIDs:   unitIDs(stored),
		Products:  distinctProducts(stored),
		Source:    source,
	})
	return &ports.ImportResult{Imported: len(stored), UnitIDs: unitIDs(stored)}, nil
}

// Sell consumes the oldest available units of a product. The check and the status change are
// one critical section per product.
func (s *Service) Sell(ctx context.Context, input ports.SellInput) (*ports.SaleResult, error) {
	product := strings.TrimSpace(input.Product)
	if product == "" {
		return nil, mapError(domain.ErrEmptyProduct)
	}
	if input.Quantity <= 0 {
		return nil, mapError(domain.ErrInvalidQuantity)
	}
	key := strings.TrimSpace(input.IdempotencyKey)
	if s.idempotency == nil {
		key = ""
	}
	var requestHash string
	if key != "" {
		hash, err := FingerprintSale(product, input.Quantity)
		if err != nil {
			return nil, err
		}
		requestHash = hash
	}

	// Same-key sales for different products must not interleave between the lookup and the save.
	if key != "" {
		unlockKey, err := s.lock(ctx, "idempotency-key:"+key)
		if err != nil {
			return nil, err
		}
		defer unlockKey()
	}
	unlock, err := s.lock(ctx, "product:"+product)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if key != "" {
		existing, err := s.idempotency.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			if existing.RequestHash != requestHash {
				return nil, mapError(ports.ErrIdempotencyConflict)
			}
			return &ports.SaleResult{
				Product:  existing.Product,
				Sold:     len(existing.UnitIDs),
				UnitIDs:  append([]int64(nil), existing.UnitIDs...),
				Replayed: true,
			}, nil
		}
	}

	sold, err := s.repo.SellFIFO(ctx, product, input.Quantity, s.now(), func(ctx context.Context, units []*domain.Unit) error {
		ids := unitIDs(units)
		if err := s.record(ctx, auditdomain.ActionInventorySold, product,
			fmt.Sprintf("Sold %d unit(s) FIFO: ids %s", len(units), joinIDs(ids))); err != nil {
			return err
		}
		if key == "" {
			return nil
		}
		_, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{
			Key:         key,
			RequestHash: requestHash,
			Product:     product,
			UnitIDs:     ids,
		})
		return err
	})
	if err != nil {
		return nil, mapError(err)
	}
	ids := unitIDs(sold)
	s.publish(ctx, domain.UnitsSold{
		BaseEvent: domain.BaseEvent{Timestamp: s.now().UTC()},
		Product:   product,
		UnitIDs:   ids,
	})
	return &ports.SaleResult{Product: product, Sold: len(sold), UnitIDs: ids}, nil
}

// Export renders matching units as CSV or XLSX.
func (s *Service) Export(ctx context.Context, input ports.ExportInput) (*ports.ExportResult, error) {
	format := ports.ExportFormat(strings.ToLower(strings.TrimSpace(string(input.Format))))
	if format == "" {
		format = ports.ExportCSV
	}
	units, err := s.repo.List(ctx, input.Filter.Normalize())
	if err != nil {
		return nil, mapError(err)
	}
	stamp := s.now().UTC().Format("20060102-150405")
	switch format {
	case ports.ExportCSV:
		data, err := encodeCSV(units)
		if err != nil {
			return nil, err
		}
		return &ports.ExportResult{FileName: "inventory-" + stamp + ".csv", ContentType: "text/csv", Data: data}, nil
	case ports.ExportXLSX:
		data, err := encodeXLSX(units)
		if err != nil {
			return nil, err
		}
		return &ports.ExportResult{
			FileName:    "inventory-" + stamp + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return nil, mapError(fmt.Errorf("%w: %q", ErrUnsupportedFormat, format))
	}
}

func (s *Service) buildUnit(input ports.AddUnitInput) (*domain.Unit, error) {
	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, err
	}
	dateAdded, err := domain.ParseDateAdded(input.DateAdded, s.now())
	if err != nil {
		return nil, err
	}
	return domain.NewUnit(domain.Attributes{
		Model:        input.Model,
		Product:      input.Product,
		IMEI:         input.IMEI,
		SKU:          input.SKU,
		SerialNumber: input.SerialNumber,
		Color:        input.Color,
		Location:     input.Location,
		Batch:        input.Batch,
		Status:       status,
		DateAdded:    dateAdded,
	})
}

func (s *Service) lock(ctx context.Context, name string) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}
	unlock, err := s.locker.Lock(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("lock %q: %w", name, err)
	}
	return unlock, nil
}

func (s *Service) record(ctx context.Context, action auditdomain.Action, target, detail string) error {
	if s.audit == nil {
		return errors.New("audit recorder not configured")
	}
	if _, err := s.audit.Record(ctx, auditports.RecordInput{Action: action, Target: target, Detail: detail}); err != nil {
		return fmt.Errorf("record audit entry: %w", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, events ...domain.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		names := make([]string, 0, len(events))
		for _, e := range events {
			names = append(names, e.EventName())
		}
		s.logger.LogAttrs(ctx, slog.LevelWarn, "inventory event publish failed",
			slog.Any("events", names), slog.String("error", err.Error()))
	}
}

func unitIDs(units []*domain.Unit) []int64 {
	ids := make([]int64, 0, len(units))
	for _, u := range units {
		ids = append(ids, u.ID)
	}
	return ids
}

func distinctProducts(units []*domain.Unit) []string {
	seen := map[string]struct{}{}
	products := make([]string, 0)
	for _, u := range units {
		if _, ok := seen[u.Product]; ok {
			continue
		}
		seen[u.Product] = struct{}{}
		products = append(products, u.Product)
	}
	return products
}

func joinIDs(ids []int64) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(id, 10))
	}
	return strings.Join(parts, ",")
}

func unitTarget(id int64) string {
	return "unit-" + strconv.FormatInt(id, 10)
}

func valueOrDash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}

var _ ports.Service = (*Service)(nil)
