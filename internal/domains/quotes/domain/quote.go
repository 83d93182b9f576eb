package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyQuoteID    = errors.New("quote id is required")
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrEmptyQuote      = errors.New("quote has no items")
	ErrEmptyCompany    = errors.New("customer company is required")
	ErrInvalidEmail    = errors.New("customer email is invalid")
)

// Customer identifies who the quote is addressed to.
type Customer struct {
	Company string `json:"company"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
}

// Normalize trims whitespace from every field.
func (c Customer) Normalize() Customer {
	return Customer{
		Company: strings.TrimSpace(c.Company),
		Contact: strings.TrimSpace(c.Contact),
		Email:   strings.TrimSpace(c.Email),
	}
}

// Line is one selected product. Quantity is always positive.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
}

// Quote is a transient quoting session. Lines keep selection order.
type Quote struct {
	ID        string    `json:"id"`
	Customer  Customer  `json:"customer"`
	Lines     []Line    `json:"lines"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func NewQuote(id string, customer Customer, at time.Time) (*Quote, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrEmptyQuoteID
	}
	at = at.UTC()
	return &Quote{ID: id, Customer: customer.Normalize(), CreatedAt: at, UpdatedAt: at}, nil
}

// Quantity returns the selected quantity for productID, zero when absent.
func (q *Quote) Quantity(productID int64) int {
	if i := q.index(productID); i >= 0 {
		return q.Lines[i].Quantity
	}
	return 0
}

// Add increments the product's quantity by one, capped at its availability. It reports whether the
// quantity changed; reaching the cap is not an error.
func (q *Quote) Add(p Product, at time.Time) bool {
	current := q.Quantity(p.ID)
	if current+1 > p.Available {
		return false
	}
	q.put(p.ID, current+1)
	q.UpdatedAt = at.UTC()
	return true
}

// SetQuantity sets the line to min(n, available). Zero removes the line; a negative n is rejected.
func (q *Quote) SetQuantity(p Product, n int, at time.Time) error {
	if n < 0 {
		return ErrInvalidQuantity
	}
	if n > p.Available {
		n = p.Available
	}
	if n == 0 {
		q.remove(p.ID)
	} else {
		q.put(p.ID, n)
	}
	q.UpdatedAt = at.UTC()
	return nil
}

// Total sums price × quantity using the given prices. Products missing from prices contribute nothing.
func (q *Quote) Total(products map[int64]Product) decimal.Decimal {
	total := decimal.Zero
	for _, line := range q.Lines {
		if p, ok := products[line.ProductID]; ok {
			total = total.Add(p.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
	}
	return total
}

// HasOutOfStockSelections reports whether any selected product now has zero live availability.
func (q *Quote) HasOutOfStockSelections(products map[int64]Product) bool {
	for _, line := range q.Lines {
		p, ok := products[line.ProductID]
		if !ok || !p.InStock() {
			return true
		}
	}
	return false
}

// ItemCount sums quantities over all lines.
func (q *Quote) ItemCount() int {
	count := 0
	for _, line := range q.Lines {
		count += line.Quantity
	}
	return count
}

// ReadyToSubmit checks the quote can be turned into a customer proposal.
func (q *Quote) ReadyToSubmit() error {
	if len(q.Lines) == 0 {
		return ErrEmptyQuote
	}
	if q.Customer.Company == "" {
		return ErrEmptyCompany
	}
	return nil
}

func (q *Quote) Clone() *Quote {
	if q == nil {
		return nil
	}
	clone := *q
	clone.Lines = append([]Line(nil), q.Lines...)
	return &clone
}

func (q *Quote) index(productID int64) int {
	for i, line := range q.Lines {
		if line.ProductID == productID {
			return i
		}
	}
	return -1
}

func (q *Quote) put(productID int64, quantity int) {
	if i := q.index(productID); i >= 0 {
		q.Lines[i].Quantity = quantity
		return
	}
	q.Lines = append(q.Lines, Line{ProductID: productID, Quantity: quantity})
}

func (q *Quote) remove(productID int64) {
	if i := q.index(productID); i >= 0 {
		q.Lines = append(q.Lines[:i], q.Lines[i+1:]...)
	}
}
