package ports

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
)

// CustomerInput carries raw customer fields from adapters.
type CustomerInput struct {
	Company string
	Contact string
	Email   string
}

// SubmitInput finalizes a quote. Non-blank customer fields replace the stored ones.
type SubmitInput struct {
	QuoteID  string
	Customer CustomerInput
}

// LineView is a priced quote line.
type LineView struct {
	Product  domain.Product
	Quantity int
	Subtotal decimal.Decimal
}

// QuoteView is a quote priced against the live catalog.
type QuoteView struct {
	ID                      string
	Customer                domain.Customer
	Lines                   []LineView
	Items                   int
	Total                   decimal.Decimal
	HasOutOfStockSelections bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// SubmitResult is the final quote returned to the caller after the session is closed.
type SubmitResult struct {
	Quote       QuoteView
	SubmittedAt time.Time
}

// Service exposes the quote calculator to adapters.
type Service interface {
	Catalog(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, customer CustomerInput) (*QuoteView, error)
	Get(ctx context.Context, quoteID string) (*QuoteView, error)
	Add(ctx context.Context, quoteID string, productID int64) (*QuoteView, error)
	SetQuantity(ctx context.Context, quoteID string, productID int64, quantity int) (*QuoteView, error)
	Submit(ctx context.Context, input SubmitInput) (*SubmitResult, error)
	Discard(ctx context.Context, quoteID string) error
}
