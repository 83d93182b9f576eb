package domain

import (
	"sort"
	"strings"
	"time"
)

// AllValues is the sentinel a client sends to disable an exact-match filter.
const AllValues = "all"

// Filter holds optional conjunctive predicates over units. Model, product, SKU, color and batch match
// exactly; IMEI and serial number match case-insensitive substrings.
type Filter struct {
	Model        string
	Product      string
	SKU          string
	Color        string
	Batch        string
	IMEI         string
	SerialNumber string
}

// Normalize trims values and clears the "all" sentinel.
func (f Filter) Normalize() Filter {
	exact := func(v string) string {
		v = strings.TrimSpace(v)
		if strings.EqualFold(v, AllValues) {
			return ""
		}
		return v
	}
	return Filter{
		Model:        exact(f.Model),
		Product:      exact(f.Product),
		SKU:          exact(f.SKU),
		Color:        exact(f.Color),
		Batch:        exact(f.Batch),
		IMEI:         strings.TrimSpace(f.IMEI),
		SerialNumber: strings.TrimSpace(f.SerialNumber),
	}
}

// Matches reports whether the unit satisfies every set predicate. The filter must be normalized.
func (f Filter) Matches(u *Unit) bool {
	if f.Model != "" && u.Model != f.Model {
		return false
	}
	if f.Product != "" && u.Product != f.Product {
		return false
	}
	if f.SKU != "" && u.SKU != f.SKU {
		return false
	}
	if f.Color != "" && u.Color != f.Color {
		return false
	}
	if f.Batch != "" && u.Batch != f.Batch {
		return false
	}
	if f.IMEI != "" && !containsFold(u.IMEI, f.IMEI) {
		return false
	}
	if f.SerialNumber != "" && !containsFold(u.SerialNumber, f.SerialNumber) {
		return false
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// Categories lists the distinct attribute values used to populate filter menus.
type Categories struct {
	Models   []string
	Products []string
	SKUs     []string
	Colors   []string
	Batches  []string
}

// CollectCategories deduplicates and sorts attribute values across units. Blank values are skipped.
func CollectCategories(units []*Unit) Categories {
	models, products, skus, colors, batches := newValueSet(), newValueSet(), newValueSet(), newValueSet(), newValueSet()
	for _, u := range units {
		models.add(u.Model)
		products.add(u.Product)
		skus.add(u.SKU)
		colors.add(u.Color)
		batches.add(u.Batch)
	}
	return Categories{
		Models:   models.sorted(),
		Products: products.sorted(),
		SKUs:     skus.sorted(),
		Colors:   colors.sorted(),
		Batches:  batches.sorted(),
	}
}

type valueSet map[string]struct{}

func newValueSet() valueSet { return valueSet{} }

func (s valueSet) add(v string) {
	if v != "" {
		s[v] = struct{}{}
	}
}

func (s valueSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Summary holds the dashboard counters.
type Summary struct {
	Total     int
	Available int
	Reserved  int
	SoldToday int
}

// Summarize counts units by status; sold units count toward SoldToday when sold on now's UTC day.
func Summarize(units []*Unit, now time.Time) Summary {
	y, m, d := now.UTC().Date()
	summary := Summary{Total: len(units)}
	for _, u := range units {
		switch u.Status {
		case StatusAvailable:
			summary.Available++
		case StatusReserved:
			summary.Reserved++
		case StatusSold:
			if u.SoldAt != nil {
				sy, sm, sd := u.SoldAt.UTC().Date()
				if sy == y && sm == m && sd == d {
					summary.SoldToday++
				}
			}
		}
	}
	return summary
}
