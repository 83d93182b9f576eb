package ports

import (
	"context"
	"io"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
)

// AddUnitInput is the manual intake payload. DateAdded accepts YYYY-MM-DD or RFC 3339.
type AddUnitInput struct {
	Model        string
	Product      string
	IMEI         string
	SKU          string
	SerialNumber string
	Color        string
	Location     string
	Batch        string
	Status       string
	DateAdded    string
}

// ImportInput carries a CSV document with a header row.
type ImportInput struct {
	Source string
	Reader io.Reader
}

type ImportResult struct {
	Imported int
	UnitIDs  []int64
}

type SellInput struct {
	Product        string
	Quantity       int
	IdempotencyKey string
}

type SaleResult struct {
	Product  string
	Sold     int
	UnitIDs  []int64
	Replayed bool
}

// ExportFormat selects the export encoding.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)

type ExportInput struct {
	Filter domain.Filter
	Format ExportFormat
}

type ExportResult struct {
	FileName    string
	ContentType string
	Data        []byte
}

// Service exposes inventory use cases to adapters.
type Service interface {
	List(ctx context.Context, filter domain.Filter) ([]*domain.Unit, error)
	UniqueCategories(ctx context.Context) (*domain.Categories, error)
	Summary(ctx context.Context) (*domain.Summary, error)
	AddUnit(ctx context.Context, input AddUnitInput) (*domain.Unit, error)
	Import(ctx context.Context, input ImportInput) (*ImportResult, error)
	Sell(ctx context.Context, input SellInput) (*SaleResult, error)
	Export(ctx context.Context, input ExportInput) (*ExportResult, error)
}
