package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event is the base interface for order domain events.
type Event interface {
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent provides common event metadata.
type BaseEvent struct {
	Timestamp time.Time `json:"occurredAt"`
}

// OccurredAt returns when the event occurred.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// OrderPlaced is raised when an order enters validation.
type OrderPlaced struct {
	BaseEvent
	OrderID  string          `json:"orderId"`
	Amount   decimal.Decimal `json:"amount"`
	Status   Status          `json:"status"`
	Priority Priority        `json:"priority"`
}

// EventName returns the event type identifier.
func (e OrderPlaced) EventName() string {
	return "orders.order.placed"
}

// OrderDecided is raised when an order is approved or rejected.
type OrderDecided struct {
	BaseEvent
	OrderID       string `json:"orderId"`
	Status        Status `json:"status"`
	BankReference string `json:"bankReference,omitempty"`
	Actor         string `json:"actor"`
}

// EventName returns the event type identifier.
func (e OrderDecided) EventName() string {
	return "orders.order.decided"
}
