package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auditdomain "github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

// Service prices quote sessions against the catalog.
type Service struct {
	catalog  ports.Catalog
	sessions ports.SessionStore
	audit    auditports.Recorder
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
	newID    func() string
	locker   ports.SessionLocker

	// mu serializes read-modify-write cycles on sessions when no locker is configured.
	mu sync.Mutex
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithLocker locks each quote by id instead of sharing one in-process mutex across all quotes.
func WithLocker(locker ports.SessionLocker) Option {
	return func(s *Service) { s.locker = locker }
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides how quote identifiers are minted.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(catalog ports.Catalog, sessions ports.SessionStore, audit auditports.Recorder, opts ...Option) *Service {
	s := &Service{
		catalog:  catalog,
		sessions: sessions,
		audit:    audit,
		validate: validator.New(),
		logger:   slog.Default(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func (s *Service) Catalog(ctx context.Context) ([]domain.Product, error) {
	return s.catalog.List(ctx)
}

// Create opens an empty quote session for the customer.
func (s *Service) Create(ctx context.Context, input ports.CustomerInput) (*ports.QuoteView, error) {
	customer, err := s.customer(input)
	if err != nil {
		return nil, mapError(err)
	}
	quote, err := domain.NewQuote(s.newID(), customer, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	if err := s.sessions.Save(ctx, quote); err != nil {
		return nil, err
	}
	return s.view(ctx, quote)
}

func (s *Service) Get(ctx context.Context, quoteID string) (*ports.QuoteView, error) {
	quote, err := s.sessions.Get(ctx, strings.TrimSpace(quoteID))
	if err != nil {
		return nil, err
	}
	return s.view(ctx, quote)
}

// Add increments a product by one unit, capped at its availability.
func (s *Service) Add(ctx context.Context, quoteID string, productID int64) (*ports.QuoteView, error) {
	return s.mutate(ctx, quoteID, productID, func(q *domain.Quote, p domain.Product) error {
		q.Add(p, s.now())
		return nil
	})
}

// SetQuantity sets a line to min(quantity, available); zero removes it.
func (s *Service) SetQuantity(ctx context.Context, quoteID string, productID int64, quantity int) (*ports.QuoteView, error) {
	return s.mutate(ctx, quoteID, productID, func(q *domain.Quote, p domain.Product) error {
		return q.SetQuantity(p, quantity, s.now())
	})
}

// Submit records the quote in the audit trail and closes the session.
func (s *Service) Submit(ctx context.Context, input ports.SubmitInput) (*ports.SubmitResult, error) {
	id := strings.TrimSpace(input.QuoteID)
	unlock, err := s.lockQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	quote, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	override, err := s.customer(input.Customer)
	if err != nil {
		return nil, mapError(err)
	}
	if override.Company != "" {
		quote.Customer.Company = override.Company
	}
	if override.Contact != "" {
		quote.Customer.Contact = override.Contact
	}
	if override.Email != "" {
		quote.Customer.Email = override.Email
	}
	if err := quote.ReadyToSubmit(); err != nil {
		return nil, mapError(err)
	}
	view, err := s.view(ctx, quote)
	if err != nil {
		return nil, err
	}
	if s.audit == nil {
		return nil, errors.New("audit recorder not configured")
	}
	detail := fmt.Sprintf("%s: %d items, total %s MXN", quote.Customer.Company, view.Items, view.Total.StringFixed(2))
	if view.HasOutOfStockSelections {
		detail += " (includes out-of-stock selections)"
	}
	if _, err := s.audit.Record(ctx, auditports.RecordInput{
		Action: auditdomain.ActionQuoteGenerated,
		Target: quote.ID,
		Detail: detail,
	}); err != nil {
		return nil, fmt.Errorf("record audit entry: %w", err)
	}
	if err := s.sessions.Delete(ctx, quote.ID); err != nil && !errors.Is(err, ports.ErrQuoteNotFound) {
		s.logger.LogAttrs(ctx, slog.LevelWarn, "submitted quote session not removed",
			slog.String("quote.id", quote.ID), slog.String("error", err.Error()))
	}
	return &ports.SubmitResult{Quote: *view, SubmittedAt: s.now().UTC()}, nil
}

// Discard drops the session without recording anything.
func (s *Service) Discard(ctx context.Context, quoteID string) error {
	id := strings.TrimSpace(quoteID)
	unlock, err := s.lockQuote(ctx, id)
	if err != nil {
		return err
	}
	defer unlock()
	return s.sessions.Delete(ctx, id)
}

func (s *Service) mutate(ctx context.Context, quoteID string, productID int64, apply func(*domain.Quote, domain.Product) error) (*ports.QuoteView, error) {
	id := strings.TrimSpace(quoteID)
	unlock, err := s.lockQuote(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	quote, err := s.sessions.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	product, err := s.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := apply(quote, *product); err != nil {
		return nil, mapError(err)
	}
	if err := s.sessions.Save(ctx, quote); err != nil {
		return nil, err
	}
	return s.view(ctx, quote)
}

func (s *Service) lockQuote(ctx context.Context, id string) (func(), error) {
	if s.locker == nil {
		s.mu.Lock()
		return s.mu.Unlock, nil
	}
	unlock, err := s.locker.Lock(ctx, "quote:"+id)
	if err != nil {
		return nil, fmt.Errorf("lock quote %q: %w", id, err)
	}
	return unlock, nil
}

func (s *Service) customer(input ports.CustomerInput) (domain.Customer, error) {
	customer := domain.Customer{Company: input.Company, Contact: input.Contact, Email: input.Email}.Normalize()
	if customer.Email != "" {
		if err := s.validate.Var(customer.Email, "email"); err != nil {
			return domain.Customer{}, fmt.Errorf("%w: %q", domain.ErrInvalidEmail, customer.Email)
		}
	}
	return customer, nil
}

// view prices the quote with live catalog data.
func (s *Service) view(ctx context.Context, quote *domain.Quote) (*ports.QuoteView, error) {
	products, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	view := &ports.QuoteView{
		ID:                      quote.ID,
		Customer:                quote.Customer,
		Lines:                   make([]ports.LineView, 0, len(quote.Lines)),
		Items:                   quote.ItemCount(),
		Total:                   quote.Total(byID),
		HasOutOfStockSelections: quote.HasOutOfStockSelections(byID),
		CreatedAt:               quote.CreatedAt,
		UpdatedAt:               quote.UpdatedAt,
	}
	for _, line := range quote.Lines {
		product, ok := byID[line.ProductID]
		if !ok {
			product = domain.Product{ID: line.ProductID}
		}
		view.Lines = append(view.Lines, ports.LineView{
			Product:  product,
			Quantity: line.Quantity,
			Subtotal: product.Price.Mul(decimalFromInt(line.Quantity)),
		})
	}
	return view, nil
}

var _ ports.Service = (*Service)(nil)

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
