package mapper

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
)

// Order is the HTTP representation of an order awaiting or past payment validation.
type Order struct {
	ID               string      `json:"id"`
	Customer         string      `json:"customer"`
	Amount           json.Number `json:"amount"`
	PaymentMethod    string      `json:"paymentMethod"`
	PaymentReference string      `json:"paymentReference"`
	Priority         string      `json:"priority"`
	Status           string      `json:"status"`
	OrderedAt        time.Time   `json:"orderedAt"`
	Items            []string    `json:"items"`
	Decision         *Decision   `json:"decision,omitempty"`
	CreatedAt        time.Time   `json:"createdAt"`
	UpdatedAt        time.Time   `json:"updatedAt"`
}

type Decision struct {
	Note          string    `json:"note,omitempty"`
	BankReference string    `json:"bankReference,omitempty"`
	Actor         string    `json:"actor"`
	DecidedAt     time.Time `json:"decidedAt"`
}

// PlaceOrder is the order intake payload.
type PlaceOrder struct {
	ID               string          `json:"id"`
	Customer         string          `json:"customer" binding:"required"`
	Amount           decimal.Decimal `json:"amount"`
	PaymentMethod    string          `json:"paymentMethod" binding:"required"`
	PaymentReference string          `json:"paymentReference"`
	Priority         string          `json:"priority"`
	OrderedAt        string          `json:"orderedAt"`
	Items            []string        `json:"items" binding:"required,min=1"`
}

// DecisionRequest carries the operator's approve or reject note.
type DecisionRequest struct {
	Note          string `json:"note"`
	BankReference string `json:"bankReference"`
}

type Summary struct {
	Pending            int         `json:"pending"`
	ValidationRequired int         `json:"validationRequired"`
	PendingAmount      json.Number `json:"pendingAmount"`
	Approved           int         `json:"approved"`
	Rejected           int         `json:"rejected"`
}

// Filter collects the list query parameters.
type Filter struct {
	Status   string `form:"status"`
	Priority string `form:"priority"`
}

func (f Filter) ToListInput() ports.ListInput {
	return ports.ListInput{Status: f.Status, Priority: f.Priority}
}

func ToPlaceOrderInput(in PlaceOrder) ports.PlaceOrderInput {
	return ports.PlaceOrderInput{
		ID:               in.ID,
		Customer:         in.Customer,
		Amount:           in.Amount,
		PaymentMethod:    in.PaymentMethod,
		PaymentReference: in.PaymentReference,
		Priority:         in.Priority,
		OrderedAt:        in.OrderedAt,
		Items:            in.Items,
	}
}

func ToDecisionInput(orderID string, in DecisionRequest) ports.DecisionInput {
	return ports.DecisionInput{OrderID: orderID, Note: in.Note, BankReference: in.BankReference}
}

// FromProjection converts a stored order to its transport shape.
func FromProjection(p *ports.OrderProjection) Order {
	o := p.Entity
	out := Order{
		ID:               o.ID,
		Customer:         o.Customer,
		Amount:           money(o.Amount),
		PaymentMethod:    o.PaymentMethod,
		PaymentReference: o.PaymentReference,
		Priority:         string(o.Priority),
		Status:           string(o.Status),
		OrderedAt:        o.OrderedAt.UTC(),
		Items:            append([]string{}, o.Items...),
		CreatedAt:        p.Metadata.CreatedAt.UTC(),
		UpdatedAt:        p.Metadata.UpdatedAt.UTC(),
	}
	if d := o.Decision; d != nil {
		out.Decision = &Decision{
			Note:          d.Note,
			BankReference: d.BankReference,
			Actor:         d.Actor,
			DecidedAt:     d.DecidedAt.UTC(),
		}
	}
	return out
}

func FromProjections(ps []*ports.OrderProjection) []Order {
	out := make([]Order, 0, len(ps))
	for _, p := range ps {
		out = append(out, FromProjection(p))
	}
	return out
}

func FromSummary(s *domain.Summary) Summary {
	return Summary{
		Pending:            s.Pending,
		ValidationRequired: s.ValidationRequired,
		PendingAmount:      money(s.PendingAmount),
		Approved:           s.Approved,
		Rejected:           s.Rejected,
	}
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}
