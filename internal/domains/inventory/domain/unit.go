package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Status enumerates the lifecycle of a serialized unit.
type Status string

const (
	StatusAvailable Status = "Available"
	StatusReserved  Status = "Reserved"
	StatusSold      Status = "Sold"
)

const dateOnlyLayout = "2006-01-02"

var (
	ErrEmptyModel      = errors.New("model is required")
	ErrEmptyProduct    = errors.New("product is required")
	ErrInvalidStatus   = errors.New("unit status is invalid")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
	ErrInvalidDate     = errors.New("dateAdded must be YYYY-MM-DD or RFC 3339")
	ErrDuplicateIMEI   = errors.New("imei is already registered")
	ErrDuplicateSerial = errors.New("serial number is already registered")
	ErrNotAvailable    = errors.New("unit is not available")
)

// ParseStatus accepts any casing of a known status; blank defaults to Available.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return StatusAvailable, nil
	}
	for _, s := range []Status{StatusAvailable, StatusReserved, StatusSold} {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// ParseDateAdded normalizes an intake date to UTC. Blank values resolve to now.
func ParseDateAdded(raw string, now time.Time) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return now.UTC(), nil
	}
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.Parse(dateOnlyLayout, raw); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// Unit is one physically serialized item.
type Unit struct {
	ID           int64
	Model        string
	Product      string
	IMEI         string
	SKU          string
	SerialNumber string
	Color        string
	Location     string
	Batch        string
	Status       Status
	DateAdded    time.Time
	SoldAt       *time.Time
}

// Attributes carries intake data for a new unit.
type Attributes struct {
	Model        string
	Product      string
	IMEI         string
	SKU          string
	SerialNumber string
	Color        string
	Location     string
	Batch        string
	Status       Status
	DateAdded    time.Time
}

// NewUnit validates intake attributes. The identifier is assigned by the store.
func NewUnit(attrs Attributes) (*Unit, error) {
	unit := &Unit{
		Model:        strings.TrimSpace(attrs.Model),
		Product:      strings.TrimSpace(attrs.Product),
		IMEI:         strings.TrimSpace(attrs.IMEI),
		SKU:          strings.TrimSpace(attrs.SKU),
		SerialNumber: strings.TrimSpace(attrs.SerialNumber),
		Color:        strings.TrimSpace(attrs.Color),
		Location:     strings.TrimSpace(attrs.Location),
		Batch:        strings.TrimSpace(attrs.Batch),
		Status:       attrs.Status,
		DateAdded:    attrs.DateAdded.UTC(),
	}
	if unit.Status == "" {
		unit.Status = StatusAvailable
	}
	if err := unit.Validate(); err != nil {
		return nil, err
	}
	return unit, nil
}

// Validate enforces invariants on the unit.
func (u *Unit) Validate() error {
	if u.Model == "" {
		return ErrEmptyModel
	}
	if u.Product == "" {
		return ErrEmptyProduct
	}
	switch u.Status {
	case StatusAvailable, StatusReserved, StatusSold:
	default:
		return ErrInvalidStatus
	}
	if u.DateAdded.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// MarkSold transitions an available unit to sold.
func (u *Unit) MarkSold(at time.Time) error {
	if u.Status != StatusAvailable {
		return fmt.Errorf("%w: unit %d is %s", ErrNotAvailable, u.ID, u.Status)
	}
	soldAt := at.UTC()
	u.Status = StatusSold
	u.SoldAt = &soldAt
	return nil
}

// Clone returns a deep copy.
func (u *Unit) Clone() *Unit {
	if u == nil {
		return nil
	}
	clone := *u
	if u.SoldAt != nil {
		soldAt := *u.SoldAt
		clone.SoldAt = &soldAt
	}
	return &clone
}

// FIFOLess orders units oldest first, breaking ties on identifier.
func FIFOLess(a, b *Unit) bool {
	if !a.DateAdded.Equal(b.DateAdded) {
		return a.DateAdded.Before(b.DateAdded)
	}
	return a.ID < b.ID
}

// SortFIFO sorts units in place by FIFOLess.
func SortFIFO(units []*Unit) {
	sort.SliceStable(units, func(i, j int) bool { return FIFOLess(units[i], units[j]) })
}

// InsufficientStockError reports a sale that asked for more units than are available.
type InsufficientStockError struct {
	Product   string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d requested", e.Product, e.Available, e.Requested)
}
