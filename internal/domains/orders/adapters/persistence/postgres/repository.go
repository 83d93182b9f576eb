package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	platformpostgres "github.com/Apurer/reseller-ops-api/internal/platform/postgres"
	"github.com/Apurer/reseller-ops-api/internal/shared/projection"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists orders in PostgreSQL. Decisions lock the row so concurrent approvals serialize.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type orderRecord struct {
	ID               string          `gorm:"primaryKey;column:id"`
	Customer         string          `gorm:"column:customer"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(14,2)"`
	PaymentMethod    string          `gorm:"column:payment_method"`
	PaymentReference string          `gorm:"column:payment_reference"`
	Priority         string          `gorm:"column:priority;type:varchar(16);index"`
	Status           string          `gorm:"column:status;type:varchar(32);index"`
	OrderedAt        time.Time       `gorm:"column:ordered_at;index"`
	Items            pq.StringArray  `gorm:"column:items;type:text[]"`
	DecisionNote     string          `gorm:"column:decision_note"`
	BankReference    string          `gorm:"column:bank_reference"`
	DecidedBy        string          `gorm:"column:decided_by"`
	DecidedAt        *time.Time      `gorm:"column:decided_at"`
	CreatedAt        time.Time       `gorm:"column:created_at"`
	UpdatedAt        time.Time       `gorm:"column:updated_at"`
}

func (orderRecord) TableName() string { return "orders" }

func newOrderRecord(o *domain.Order) orderRecord {
	rec := orderRecord{
		ID:               o.ID,
		Customer:         o.Customer,
		Amount:           o.Amount,
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
		Priority:         string(o.Priority),
		Status:           string(o.Status),
		OrderedAt:        o.OrderedAt.UTC(),
		Items:            pq.StringArray(append([]string(nil), o.Items...)),
	}
	if o.Decision != nil {
		decidedAt := o.Decision.DecidedAt.UTC()
		rec.DecisionNote = o.Decision.Note
		rec.BankReference = o.Decision.BankReference
		rec.DecidedBy = o.Decision.Actor
		rec.DecidedAt = &decidedAt
	}
	return rec
}

func (rec *orderRecord) toProjection() *ports.OrderProjection {
	order := &domain.Order{
		ID:               rec.ID,
		Customer:         rec.Customer,
		Amount:           rec.Amount,
		PaymentMethod:    rec.PaymentMethod,
		PaymentReference: rec.PaymentReference,
		Priority:         domain.Priority(rec.Priority),
		Status:           domain.Status(rec.Status),
		OrderedAt:        rec.OrderedAt.UTC(),
		Items:            append([]string(nil), rec.Items...),
	}
	if rec.DecidedAt != nil {
		order.Decision = &domain.Decision{
			Note:          rec.DecisionNote,
			BankReference: rec.BankReference,
			Actor:         rec.DecidedBy,
			DecidedAt:     rec.DecidedAt.UTC(),
		}
	}
	return projection.Restore(order, rec.CreatedAt, rec.UpdatedAt)
}

func (r *Repository) Create(ctx context.Context, order *domain.Order, beforeCommit ports.BeforeCommit) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	if err := order.Validate(); err != nil {
		return nil, err
	}
	rec := newOrderRecord(order)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return domain.ErrDuplicateOrder
			}
			return err
		}
		if beforeCommit != nil {
			return beforeCommit(platformpostgres.WithTx(ctx, tx), order.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec.toProjection(), nil
}

func (r *Repository) GetByID(ctx context.Context, id string) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rec orderRecord
	if err := r.db.WithContext(ctx).First(&rec, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return rec.toProjection(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&orderRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.Priority != "" {
		query = query.Where("priority = ?", string(filter.Priority))
	}
	var records []orderRecord
	if err := query.Order("ordered_at DESC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]*ports.OrderProjection, 0, len(records))
	for i := range records {
		result = append(result, records[i].toProjection())
	}
	return result, nil
}

// Update applies mutate to the row under SELECT ... FOR UPDATE and commits only if beforeCommit succeeds.
func (r *Repository) Update(ctx context.Context, id string, mutate func(*domain.Order) error, beforeCommit ports.BeforeCommit) (*ports.OrderProjection, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var saved orderRecord
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rec orderRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&rec, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ports.ErrNotFound
			}
			return err
		}
		order := rec.toProjection().Entity
		if mutate != nil {
			if err := mutate(order); err != nil {
				return err
			}
		}
		if err := order.Validate(); err != nil {
			return err
		}
		saved = newOrderRecord(order)
		saved.CreatedAt = rec.CreatedAt
		if err := tx.Save(&saved).Error; err != nil {
			return err
		}
		if beforeCommit != nil {
			return beforeCommit(platformpostgres.WithTx(ctx, tx), order.Clone())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return saved.toProjection(), nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres order repository not configured")
	}
	return nil
}
