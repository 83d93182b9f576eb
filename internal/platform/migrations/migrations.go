package migrations

import (
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for the bounded contexts. Adapters never automigrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	if err := db.AutoMigrate(
		&unitRecord{},
		&idempotencyRecord{},
		&orderRecord{},
		&auditEntryRecord{},
	); err != nil {
		return err
	}
	for _, stmt := range constraints {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("apply constraint: %w", err)
		}
	}
	return nil
}

// constraints holds DDL that struct tags cannot express. Every statement is idempotent.
var constraints = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_units_imei ON inventory_units (imei) WHERE imei <> ''`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_inventory_units_serial ON inventory_units (serial_number) WHERE serial_number <> ''`,
	`CREATE OR REPLACE FUNCTION audit_entries_append_only() RETURNS trigger AS $$
BEGIN
	RAISE EXCEPTION 'audit_entries is append-only';
END;
$$ LANGUAGE plpgsql`,
	`DROP TRIGGER IF EXISTS audit_entries_append_only ON audit_entries`,
	`CREATE TRIGGER audit_entries_append_only BEFORE UPDATE OR DELETE ON audit_entries
	FOR EACH ROW EXECUTE FUNCTION audit_entries_append_only()`,
}

// Unit schema mirrors the inventory Postgres adapter.
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

// Idempotency schema mirrors the sale idempotency store.
type idempotencyRecord struct {
	Key         string        `gorm:"primaryKey;column:key;size:255"`
	RequestHash string        `gorm:"column:request_hash;size:128"`
	Product     string        `gorm:"column:product"`
	UnitIDs     pq.Int64Array `gorm:"column:unit_ids;type:bigint[]"`
	CreatedAt   time.Time     `gorm:"column:created_at"`
	UpdatedAt   time.Time     `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "sale_idempotency_keys" }

// Order schema mirrors the orders Postgres adapter.
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

// Audit schema mirrors the audit Postgres adapter.
type auditEntryRecord struct {
	ID         string    `gorm:"primaryKey;column:id;size:36"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
	Actor      string    `gorm:"column:actor;index"`
	Action     string    `gorm:"column:action;type:varchar(64);index"`
	Target     string    `gorm:"column:target"`
	Detail     string    `gorm:"column:detail"`
	Address    string    `gorm:"column:address;type:varchar(64)"`
}

func (auditEntryRecord) TableName() string { return "audit_entries" }
