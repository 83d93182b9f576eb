package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	auditdomain "github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	auditports "github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

// DefaultValidationThreshold is the SPEI amount above which orders need reinforced validation.
var DefaultValidationThreshold = decimal.NewFromInt(200000)

var errInvalidOrderDate = errors.New("orderDate must be RFC 3339, YYYY-MM-DD HH:MM or YYYY-MM-DD")

var orderDateLayouts = []string{time.RFC3339Nano, "2006-01-02 15:04", "2006-01-02"}

// Service runs the SPEI validation workflow.
type Service struct {
	repo      ports.Repository
	audit     auditports.Recorder
	publisher ports.EventPublisher
	threshold decimal.Decimal
	logger    *slog.Logger
	now       func() time.Time
	newID     func() string
}

type Option func(*Service)

// WithThreshold overrides the SPEI validation threshold.
func WithThreshold(threshold decimal.Decimal) Option {
	return func(s *Service) { s.threshold = threshold }
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

// WithIDGenerator overrides how identifiers are minted for orders placed without one.
func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		if newID != nil {
			s.newID = newID
		}
	}
}

func NewService(repo ports.Repository, audit auditports.Recorder, opts ...Option) *Service {
	s := &Service{
		repo:      repo,
		audit:     audit,
		threshold: DefaultValidationThreshold,
		logger:    slog.Default(),
		now:       time.Now,
		newID:     defaultOrderID,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

func defaultOrderID() string {
	return "ORD-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
}

// PlaceOrder opens an order in its initial validation state.
func (s *Service) PlaceOrder(ctx context.Context, input ports.PlaceOrderInput) (*ports.OrderProjection, error) {
	orderedAt, err := s.parseOrderDate(input.OrderedAt)
	if err != nil {
		return nil, mapError(err)
	}
	var priority domain.Priority
	if strings.TrimSpace(input.Priority) != "" {
		if priority, err = domain.ParsePriority(input.Priority); err != nil {
			return nil, mapError(err)
		}
	}
	id := strings.TrimSpace(input.ID)
	if id == "" {
		id = s.newID()
	}
	order, err := domain.NewOrder(domain.Attributes{
		ID:               id,
		Customer:         input.Customer,
		Amount:           input.Amount,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
		Priority:         priority,
		OrderedAt:        orderedAt,
		Items:            input.Items,
	}, s.threshold)
	if err != nil {
		return nil, mapError(err)
	}
	saved, err := s.repo.Create(ctx, order, func(ctx context.Context, o *domain.Order) error {
		return s.record(ctx, auditdomain.ActionOrderPlaced, o.ID,
			fmt.Sprintf("%s %s MXN via %s (%s), %s", o.Customer, o.Amount.StringFixed(2), o.PaymentMethod, o.Status, o.Priority))
	})
	if err != nil {
		return nil, mapError(err)
	}
	s.publish(ctx, domain.OrderPlaced{
		BaseEvent: domain.BaseEvent{Timestamp: s.now().UTC()},
		OrderID:   saved.Entity.ID,
		Amount:    saved.Entity.Amount,
		Status:    saved.Entity.Status,
		Priority:  saved.Entity.Priority,
	})
	return saved, nil
}

func (s *Service) Get(ctx context.Context, id string) (*ports.OrderProjection, error) {
	return s.repo.GetByID(ctx, strings.TrimSpace(id))
}

// List returns orders filtered by status and priority; blank or "all" disables a filter.
func (s *Service) List(ctx context.Context, input ports.ListInput) ([]*ports.OrderProjection, error) {
	var filter ports.Filter
	if raw := strings.TrimSpace(input.Status); raw != "" && !strings.EqualFold(raw, "all") {
		status, err := domain.ParseStatus(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Status = status
	}
	if raw := strings.TrimSpace(input.Priority); raw != "" && !strings.EqualFold(raw, "all") {
		priority, err := domain.ParsePriority(raw)
		if err != nil {
			return nil, mapError(err)
		}
		filter.Priority = priority
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Summary(ctx context.Context) (*domain.Summary, error) {
	projections, err := s.repo.List(ctx, ports.Filter{})
	if err != nil {
		return nil, err
	}
	orders := make([]*domain.Order, 0, len(projections))
	for _, p := range projections {
		orders = append(orders, p.Entity)
	}
	summary := domain.Summarize(orders)
	return &summary, nil
}

// Approve closes an open order as paid.
func (s *Service) Approve(ctx context.Context, input ports.DecisionInput) (*ports.OrderProjection, error) {
	return s.decide(ctx, input, auditdomain.ActionPaymentApproved, func(o *domain.Order, who string, at time.Time) error {
		return o.Approve(input.Note, input.BankReference, who, at)
	})
}

// Reject closes an open order as not paid.
func (s *Service) Reject(ctx context.Context, input ports.DecisionInput) (*ports.OrderProjection, error) {
	return s.decide(ctx, input, auditdomain.ActionPaymentRejected, func(o *domain.Order, who string, at time.Time) error {
		return o.Reject(input.Note, input.BankReference, who, at)
	})
}

func (s *Service) decide(ctx context.Context, input ports.DecisionInput, action auditdomain.Action, transition func(*domain.Order, string, time.Time) error) (*ports.OrderProjection, error) {
	id := strings.TrimSpace(input.OrderID)
	if id == "" {
		return nil, mapError(domain.ErrEmptyID)
	}
	who := actor.FromContext(ctx).ID
	at := s.now()
	saved, err := s.repo.Update(ctx, id, func(o *domain.Order) error {
		return transition(o, who, at)
	}, func(ctx context.Context, o *domain.Order) error {
		return s.record(ctx, action, o.ID, decisionDetail(o))
	})
	if err != nil {
		return nil, mapError(err)
	}
	decided := saved.Entity
	event := domain.OrderDecided{
		BaseEvent: domain.BaseEvent{Timestamp: s.now().UTC()},
		OrderID:   decided.ID,
		Status:    decided.Status,
		Actor:     who,
	}
	if decided.Decision != nil {
		event.BankReference = decided.Decision.BankReference
	}
	s.publish(ctx, event)
	return saved, nil
}

func decisionDetail(o *domain.Order) string {
	parts := []string{fmt.Sprintf("%s MXN %s", o.Amount.StringFixed(2), o.PaymentReference)}
	if o.Decision != nil {
		if o.Decision.BankReference != "" {
			parts = append(parts, "bank ref "+o.Decision.BankReference)
		}
		if o.Decision.Note != "" {
			parts = append(parts, o.Decision.Note)
		}
	}
	return strings.Join(parts, "; ")
}

func (s *Service) parseOrderDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return s.now().UTC(), nil
	}
	for _, layout := range orderDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", errInvalidOrderDate, raw)
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
		s.logger.LogAttrs(ctx, slog.LevelWarn, "order event publish failed", slog.String("error", err.Error()))
	}
}

var _ ports.Service = (*Service)(nil)
