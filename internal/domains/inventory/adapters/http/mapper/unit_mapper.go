package mapper

import (
	"fmt"
	"time"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

// InventoryUnit is the HTTP representation of a serialized unit.
type InventoryUnit struct {
	ID           int64      `json:"id"`
	Model        string     `json:"model"`
	Product      string     `json:"product"`
	IMEI         string     `json:"imei"`
	SKU          string     `json:"sku"`
	SerialNumber string     `json:"serialNumber"`
	Color        string     `json:"color"`
	Location     string     `json:"location"`
	Batch        string     `json:"batch"`
	Status       string     `json:"status"`
	DateAdded    time.Time  `json:"dateAdded"`
	SoldAt       *time.Time `json:"soldAt,omitempty"`
}

// NewUnit is the intake payload. A client supplied id is ignored; the server assigns max+1.
type NewUnit struct {
	ID           int64  `json:"id,omitempty"`
	Model        string `json:"model" binding:"required"`
	Product      string `json:"product" binding:"required"`
	IMEI         string `json:"imei"`
	SKU          string `json:"sku"`
	SerialNumber string `json:"serialNumber"`
	Color        string `json:"color"`
	Location     string `json:"location"`
	Batch        string `json:"batch"`
	Status       string `json:"status"`
	DateAdded    string `json:"dateAdded"`
}

// Categories lists distinct non-blank values per filterable attribute.
type Categories struct {
	Models   []string `json:"models"`
	Products []string `json:"products"`
	SKUs     []string `json:"skus"`
	Colors   []string `json:"colors"`
	Batches  []string `json:"batches"`
}

type Summary struct {
	Total     int `json:"total"`
	Available int `json:"available"`
	Reserved  int `json:"reserved"`
	SoldToday int `json:"soldToday"`
}

// SellRequest asks for a FIFO sale of quantity units of product.
type SellRequest struct {
	Product  string `json:"product" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,gt=0"`
}

type SellResponse struct {
	Message  string  `json:"message"`
	Product  string  `json:"product"`
	Sold     int     `json:"sold"`
	UnitIDs  []int64 `json:"unitIds"`
	Replayed bool    `json:"replayed,omitempty"`
}

type ImportResponse struct {
	Imported int     `json:"imported"`
	UnitIDs  []int64 `json:"unitIds"`
}

// Filter collects the list query parameters.
type Filter struct {
	Model        string `form:"model"`
	Product      string `form:"product"`
	SKU          string `form:"sku"`
	Color        string `form:"color"`
	Batch        string `form:"batch"`
	IMEI         string `form:"imei"`
	SerialNumber string `form:"serialNumber"`
}

// ToDomainFilter maps query parameters to the domain filter.
func (f Filter) ToDomainFilter() domain.Filter {
	return domain.Filter{
		Model:        f.Model,
		Product:      f.Product,
		SKU:          f.SKU,
		Color:        f.Color,
		Batch:        f.Batch,
		IMEI:         f.IMEI,
		SerialNumber: f.SerialNumber,
	}
}

// ToAddUnitInput maps the intake payload to the service input.
func ToAddUnitInput(in NewUnit) ports.AddUnitInput {
	return ports.AddUnitInput{
		Model:        in.Model,
		Product:      in.Product,
		IMEI:         in.IMEI,
		SKU:          in.SKU,
		SerialNumber: in.SerialNumber,
		Color:        in.Color,
		Location:     in.Location,
		Batch:        in.Batch,
		Status:       in.Status,
		DateAdded:    in.DateAdded,
	}
}

func FromDomainUnit(u *domain.Unit) InventoryUnit {
	out := InventoryUnit{
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
	}
	if u.SoldAt != nil {
		soldAt := u.SoldAt.UTC()
		out.SoldAt = &soldAt
	}
	return out
}

func FromDomainUnits(units []*domain.Unit) []InventoryUnit {
	out := make([]InventoryUnit, 0, len(units))
	for _, u := range units {
		out = append(out, FromDomainUnit(u))
	}
	return out
}

func FromCategories(c *domain.Categories) Categories {
	return Categories{
		Models:   nonNil(c.Models),
		Products: nonNil(c.Products),
		SKUs:     nonNil(c.SKUs),
		Colors:   nonNil(c.Colors),
		Batches:  nonNil(c.Batches),
	}
}

func FromSummary(s *domain.Summary) Summary {
	return Summary{Total: s.Total, Available: s.Available, Reserved: s.Reserved, SoldToday: s.SoldToday}
}

func FromSaleResult(r *ports.SaleResult) SellResponse {
	return SellResponse{
		Message:  saleMessage(r),
		Product:  r.Product,
		Sold:     r.Sold,
		UnitIDs:  nonNilIDs(r.UnitIDs),
		Replayed: r.Replayed,
	}
}

func saleMessage(r *ports.SaleResult) string {
	if r.Sold == 1 {
		return "Sold 1 unit of " + r.Product
	}
	return fmt.Sprintf("Sold %d units of %s", r.Sold, r.Product)
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func nonNilIDs(ids []int64) []int64 {
	if ids == nil {
		return []int64{}
	}
	return ids
}
