package mapper

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
)

type Product struct {
	ID        int64       `json:"id"`
	Name      string      `json:"name"`
	Price     json.Number `json:"price"`
	Category  string      `json:"category"`
	Available int         `json:"available"`
	InStock   bool        `json:"inStock"`
}

type Customer struct {
	Company string `json:"company"`
	Contact string `json:"contact"`
	Email   string `json:"email"`
}

type Line struct {
	Product  Product     `json:"product"`
	Quantity int         `json:"quantity"`
	Subtotal json.Number `json:"subtotal"`
}

// Quote is a quote priced against the live catalog.
type Quote struct {
	ID                      string      `json:"id"`
	Customer                Customer    `json:"customer"`
	Lines                   []Line      `json:"lines"`
	Items                   int         `json:"items"`
	Total                   json.Number `json:"total"`
	HasOutOfStockSelections bool        `json:"hasOutOfStockSelections"`
	CreatedAt               time.Time   `json:"createdAt"`
	UpdatedAt               time.Time   `json:"updatedAt"`
}

type SubmittedQuote struct {
	Quote       Quote     `json:"quote"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// AddItem adds one unit of a catalog product.
type AddItem struct {
	ProductID int64 `json:"productId" binding:"required,gt=0"`
}

// SetQuantity replaces a line's quantity; zero removes the line.
type SetQuantity struct {
	Quantity *int `json:"quantity" binding:"required"`
}

func (c Customer) ToInput() ports.CustomerInput {
	return ports.CustomerInput{Company: c.Company, Contact: c.Contact, Email: c.Email}
}

func FromProduct(p domain.Product) Product {
	return Product{
		ID:        p.ID,
		Name:      p.Name,
		Price:     money(p.Price),
		Category:  p.Category,
		Available: p.Available,
		InStock:   p.InStock(),
	}
}

func FromProducts(products []domain.Product) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		out = append(out, FromProduct(p))
	}
	return out
}

func FromView(v *ports.QuoteView) Quote {
	lines := make([]Line, 0, len(v.Lines))
	for _, l := range v.Lines {
		lines = append(lines, Line{Product: FromProduct(l.Product), Quantity: l.Quantity, Subtotal: money(l.Subtotal)})
	}
	return Quote{
		ID:                      v.ID,
		Customer:                Customer{Company: v.Customer.Company, Contact: v.Customer.Contact, Email: v.Customer.Email},
		Lines:                   lines,
		Items:                   v.Items,
		Total:                   money(v.Total),
		HasOutOfStockSelections: v.HasOutOfStockSelections,
		CreatedAt:               v.CreatedAt.UTC(),
		UpdatedAt:               v.UpdatedAt.UTC(),
	}
}

func FromSubmitResult(r *ports.SubmitResult) SubmittedQuote {
	return SubmittedQuote{Quote: FromView(&r.Quote), SubmittedAt: r.SubmittedAt.UTC()}
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
