package domain

import (
	"errors"
	"strings"
	"time"
)

// Action enumerates the administrative actions tracked by the audit trail.
type Action string

const (
	ActionOrderPlaced      Action = "Order Placed"
	ActionPaymentApproved  Action = "Payment Approved"
	ActionPaymentRejected  Action = "Payment Rejected"
	ActionInventoryUpdated Action = "Inventory Updated"
	ActionInventorySold    Action = "Inventory Sold"
	ActionCSVImport        Action = "CSV Import"
	ActionQuoteGenerated   Action = "Quote Generated"
)

var (
	ErrInvalidAction = errors.New("audit action is invalid")
	ErrEmptyActor    = errors.New("audit actor is required")
	ErrEmptyTarget   = errors.New("audit target is required")
)

// Actions lists every known action in display order.
func Actions() []Action {
	return []Action{
		ActionOrderPlaced,
		ActionPaymentApproved,
		ActionPaymentRejected,
		ActionInventoryUpdated,
		ActionInventorySold,
		ActionCSVImport,
		ActionQuoteGenerated,
	}
}

// ParseAction resolves a display label to a known action.
func ParseAction(raw string) (Action, error) {
	raw = strings.TrimSpace(raw)
	for _, a := range Actions() {
		if strings.EqualFold(string(a), raw) {
			return a, nil
		}
	}
	return "", ErrInvalidAction
}

// Entry is one immutable audit record.
type Entry struct {
	ID        string
	Timestamp time.Time
	Actor     string
	Action    Action
	Target    string
	Detail    string
	Address   string
}

// NewEntry validates and builds an audit entry.
func NewEntry(id string, at time.Time, actor string, action Action, target, detail, address string) (*Entry, error) {
	if strings.TrimSpace(actor) == "" {
		return nil, ErrEmptyActor
	}
	if _, err := ParseAction(string(action)); err != nil {
		return nil, err
	}
	if strings.TrimSpace(target) == "" {
		return nil, ErrEmptyTarget
	}
	return &Entry{
		ID:        id,
		Timestamp: at.UTC(),
		Actor:     strings.TrimSpace(actor),
		Action:    action,
		Target:    strings.TrimSpace(target),
		Detail:    strings.TrimSpace(detail),
		Address:   strings.TrimSpace(address),
	}, nil
}

// Matches reports whether the entry satisfies a free-text search and optional action filter.
func (e *Entry) Matches(search string, action Action) bool {
	if action != "" && e.Action != action {
		return false
	}
	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return true
	}
	for _, field := range []string{e.Actor, string(e.Action), e.Target, e.Detail} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
