package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/audit/ports"
	platformpostgres "github.com/Apurer/reseller-ops-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists audit entries in PostgreSQL. Rows are only ever inserted.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed audit log. Schema is owned by platform/migrations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type entryRecord struct {
	ID         string    `gorm:"primaryKey;column:id;size:36"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
	Actor      string    `gorm:"column:actor;index"`
	Action     string    `gorm:"column:action;type:varchar(64);index"`
	Target     string    `gorm:"column:target"`
	Detail     string    `gorm:"column:detail"`
	Address    string    `gorm:"column:address;type:varchar(64)"`
}

func (entryRecord) TableName() string { return "audit_entries" }

func (r *Repository) Append(ctx context.Context, entry *domain.Entry) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if entry == nil {
		return errors.New("audit entry is nil")
	}
	record := entryRecord{
		ID:         entry.ID,
		OccurredAt: entry.Timestamp,
		Actor:      entry.Actor,
		Action:     string(entry.Action),
		Target:     entry.Target,
		Detail:     entry.Detail,
		Address:    entry.Address,
	}
	return platformpostgres.Conn(ctx, r.db).Create(&record).Error
}

func (r *Repository) List(ctx context.Context, filter ports.Filter) ([]*domain.Entry, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&entryRecord{})
	if filter.Action != "" {
		query = query.Where("action = ?", string(filter.Action))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + escapeLike(search) + "%"
		query = query.Where("actor ILIKE ? OR action ILIKE ? OR target ILIKE ? OR detail ILIKE ?", pattern, pattern, pattern, pattern)
	}
	var records []entryRecord
	if err := query.Order("occurred_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	entries := make([]*domain.Entry, 0, len(records))
	for i := range records {
		entries = append(entries, records[i].toDomain())
	}
	return entries, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres audit repository not configured")
	}
	return nil
}

func (r entryRecord) toDomain() *domain.Entry {
	return &domain.Entry{
		ID:        r.ID,
		Timestamp: r.OccurredAt.UTC(),
		Actor:     r.Actor,
		Action:    domain.Action(r.Action),
		Target:    r.Target,
		Detail:    r.Detail,
		Address:   r.Address,
	}
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
