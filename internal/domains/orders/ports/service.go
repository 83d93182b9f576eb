package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
)

// PlaceOrderInput opens an order. OrderedAt accepts RFC 3339, "YYYY-MM-DD HH:MM" or YYYY-MM-DD.
type PlaceOrderInput struct {
	ID               string
	Customer         string
	Amount           decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	Priority         string
	OrderedAt        string
	Items            []string
}

// DecisionInput approves or rejects an order.
type DecisionInput struct {
	OrderID       string
	Note          string
	BankReference string
}

type ListInput struct {
	Status   string
	Priority string
}

// Service exposes the validation workflow to adapters.
type Service interface {
	PlaceOrder(ctx context.Context, input PlaceOrderInput) (*OrderProjection, error)
	Get(ctx context.Context, id string) (*OrderProjection, error)
	List(ctx context.Context, input ListInput) ([]*OrderProjection, error)
	Summary(ctx context.Context) (*domain.Summary, error)
	Approve(ctx context.Context, input DecisionInput) (*OrderProjection, error)
	Reject(ctx context.Context, input DecisionInput) (*OrderProjection, error)
}
