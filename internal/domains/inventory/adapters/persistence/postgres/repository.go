package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	platformpostgres "github.com/Apurer/reseller-ops-api/internal/platform/postgres"
)

var _ ports.Repository = (*Repository)(nil)

// intakeLockKey serializes identifier assignment across API replicas.
const intakeLockKey = "inventory_units:intake"

// Repository persists units in PostgreSQL. Sales hold a transaction-scoped advisory lock keyed by
// product so the availability check and the status update commit together.
type Repository struct {
	db *gorm.DB
}

// NewRepository wires a PostgreSQL-backed repository. The caller owns the DB lifecycle and schema.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type unitRecord struct {
	ID           int64      `gorm:"primaryKey;autoIncrement:false;column:id"`
	Model        string     `gorm:"column:model;index"`
	Product      string     `gorm:"column:product;index:idx_inventory_units_fifo,priority:1"`
	IMEI         string     `gorm:"column:imei"`
	SKU          string     `gorm:"column:sku"`
	SerialNumber string     `gorm:"column:serial_number"`
	Color        string     `gorm:"column:color"`
	Location     string     `gorm:"column:location"`
	Batch        string     `gorm:"column:batch"`
	Status       string     `gorm:"column:status;type:varchar(32);index:idx_inventory_units_fifo,priority:2"`
	DateAdded    time.Time  `gorm:"column:date_added;index:idx_inventory_units_fifo,priority:3"`
	SoldAt       *time.Time `gorm:"column:sold_at"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at"`
}

func (unitRecord) TableName() string { return "inventory_units" }

func newUnitRecord(u *domain.Unit) unitRecord {
	return unitRecord{
		ID:           u.ID,
		Model:        u.Model,
		Product:      u.Product,
		IMEI:         u.IMEI,
		SKU:          u.SKU,
		SerialNumber: u.SerialNumber,
		Color:        u.Color,
		Location:     u.Location,
		Batch:        u.Batch,
		Status:       string(u.Status),
		DateAdded:    u.DateAdded.UTC(),
		SoldAt:       u.SoldAt,
	}
}

func (rec *unitRecord) toDomain() *domain.Unit {
	unit := &domain.Unit{
		ID:           rec.ID,
		Model:        rec.Model,
		Product:      rec.Product,
		IMEI:         rec.IMEI,
		SKU:          rec.SKU,
		SerialNumber: rec.SerialNumber,
		Color:        rec.Color,
		Location:     rec.Location,
		Batch:        rec.Batch,
		Status:       domain.Status(rec.Status),
		DateAdded:    rec.DateAdded.UTC(),
	}
	if rec.SoldAt != nil {
		soldAt := rec.SoldAt.UTC()
		unit.SoldAt = &soldAt
	}
	return unit
}

// Add inserts the units in one transaction after assigning identifiers from max(id)+1.
func (r *Repository) Add(ctx context.Context, units []*domain.Unit, beforeCommit ports.BeforeCommit) ([]*domain.Unit, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if len(units) == 0 {
		return nil, errors.New("no units to add")
	}
	var stored []*domain.Unit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", intakeLockKey).Error; err != nil {
			return fmt.Errorf("acquire intake lock: %w", err)
		}
		if err := checkDuplicates(tx, units); err != nil {
			return err
		}
		var maxID int64
		if err := tx.Model(&unitRecord{}).Select("COALESCE(MAX(id), 0)").Scan(&maxID).Error; err != nil {
			return err
		}
		records := make([]unitRecord, 0, len(units))
		for _, u := range units {
			if u == nil {
				return errors.New("unit is nil")
			}
			if err := u.Validate(); err != nil {
				return err
			}
			maxID++
			clone := u.Clone()
			clone.ID = maxID
			records = append(records, newUnitRecord(clone))
		}
		if err := tx.Create(&records).Error; err != nil {
			return translateError(err)
		}
		stored = make([]*domain.Unit, 0, len(records))
		for i := range records {
			stored = append(stored, records[i].toDomain())
		}
		if beforeCommit != nil {
			return beforeCommit(platformpostgres.WithTx(ctx, tx), stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

func checkDuplicates(tx *gorm.DB, units []*domain.Unit) error {
	imeis := make([]string, 0, len(units))
	serials := make([]string, 0, len(units))
	seenIMEI := map[string]struct{}{}
	seenSerial := map[string]struct{}{}
	for _, u := range units {
		if u == nil {
			continue
		}
		if u.IMEI != "" {
			if _, dup := seenIMEI[u.IMEI]; dup {
				return domain.ErrDuplicateIMEI
			}
			seenIMEI[u.IMEI] = struct{}{}
			imeis = append(imeis, u.IMEI)
		}
		if u.SerialNumber != "" {
			if _, dup := seenSerial[u.SerialNumber]; dup {
				return domain.ErrDuplicateSerial
			}
			seenSerial[u.SerialNumber] = struct{}{}
			serials = append(serials, u.SerialNumber)
		}
	}
	if len(imeis) > 0 {
		var count int64
		if err := tx.Model(&unitRecord{}).Where("imei IN ?", imeis).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateIMEI
		}
	}
	if len(serials) > 0 {
		var count int64
		if err := tx.Model(&unitRecord{}).Where("serial_number IN ?", serials).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return domain.ErrDuplicateSerial
		}
	}
	return nil
}

// List returns units matching the filter ordered by date added then id.
func (r *Repository) List(ctx context.Context, filter domain.Filter) ([]*domain.Unit, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Model(&unitRecord{})
	exact := map[string]string{
		"model":   filter.Model,
		"product": filter.Product,
		"sku":     filter.SKU,
		"color":   filter.Color,
		"batch":   filter.Batch,
	}
	for column, value := range exact {
		if value != "" {
			query = query.Where(column+" = ?", value)
		}
	}
	if filter.IMEI != "" {
		query = query.Where("imei ILIKE ?", "%"+escapeLike(filter.IMEI)+"%")
	}
	if filter.SerialNumber != "" {
		query = query.Where("serial_number ILIKE ?", "%"+escapeLike(filter.SerialNumber)+"%")
	}
	var records []unitRecord
	if err := query.Order("date_added ASC, id ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	result := make([]*domain.Unit, 0, len(records))
	for i := range records {
		result = append(result, records[i].toDomain())
	}
	return result, nil
}

// SellFIFO marks the oldest available units of product as sold inside one transaction.
func (r *Repository) SellFIFO(ctx context.Context, product string, quantity int, at time.Time, beforeCommit ports.BeforeCommit) ([]*domain.Unit, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	var sold []*domain.Unit
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "inventory_units:sale:"+product).Error; err != nil {
			return fmt.Errorf("acquire product lock: %w", err)
		}
		var available int64
		if err := tx.Model(&unitRecord{}).
			Where("product = ? AND status = ?", product, string(domain.StatusAvailable)).
			Count(&available).Error; err != nil {
			return err
		}
		if available < int64(quantity) {
			return &domain.InsufficientStockError{Product: product, Available: int(available), Requested: quantity}
		}
		var records []unitRecord
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("product = ? AND status = ?", product, string(domain.StatusAvailable)).
			Order("date_added ASC, id ASC").
			Limit(quantity).
			Find(&records).Error; err != nil {
			return err
		}
		ids := make([]int64, 0, len(records))
		sold = make([]*domain.Unit, 0, len(records))
		for i := range records {
			unit := records[i].toDomain()
			if err := unit.MarkSold(at); err != nil {
				return err
			}
			ids = append(ids, unit.ID)
			sold = append(sold, unit)
		}
		soldAt := at.UTC()
		result := tx.Model(&unitRecord{}).
			Where("id IN ? AND status = ?", ids, string(domain.StatusAvailable)).
			Updates(map[string]any{
				"status":     string(domain.StatusSold),
				"sold_at":    soldAt,
				"updated_at": gorm.Expr("NOW()"),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(quantity) {
			return fmt.Errorf("sale of %q updated %d rows, expected %d", product, result.RowsAffected, quantity)
		}
		if beforeCommit != nil {
			return beforeCommit(platformpostgres.WithTx(ctx, tx), sold)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sold, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres inventory repository not configured")
	}
	return nil
}

func translateError(err error) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	msg := err.Error()
	if strings.Contains(msg, "serial") {
		return domain.ErrDuplicateSerial
	}
	if strings.Contains(msg, "imei") {
		return domain.ErrDuplicateIMEI
	}
	return err
}

func escapeLike(value string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(value)
}
