package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status enumerates the validation state machine.
type Status string

const (
	StatusPendingValidation  Status = "Pending Validation"
	StatusValidationRequired Status = "Validation Required"
	StatusApproved           Status = "Approved"
	StatusRejected           Status = "Rejected"
)

// Priority enumerates how urgently an order needs a decision.
type Priority string

const (
	PriorityLow      Priority = "Low"
	PriorityMedium   Priority = "Medium"
	PriorityHigh     Priority = "High"
	PriorityCritical Priority = "Critical"
)

// PaymentMethodSPEI is the bank transfer method that requires manual validation above the threshold.
const PaymentMethodSPEI = "SPEI"

var (
	ErrEmptyID               = errors.New("order id is required")
	ErrEmptyCustomer         = errors.New("customer is required")
	ErrInvalidAmount         = errors.New("amount must be greater than zero")
	ErrNoItems               = errors.New("at least one item is required")
	ErrInvalidStatus         = errors.New("order status is invalid")
	ErrInvalidPriority       = errors.New("order priority is invalid")
	ErrMissingBankReference  = errors.New("bank reference is required to approve")
	ErrAlreadyDecided        = errors.New("order already decided")
	ErrDuplicateOrder        = errors.New("order id already exists")
	ErrEmptyPaymentMethod    = errors.New("payment method is required")
	ErrEmptyPaymentReference = errors.New("payment reference is required")
)

var (
	mediumFloor   = decimal.NewFromInt(50000)
	highFloor     = decimal.NewFromInt(100000)
	criticalFloor = decimal.NewFromInt(200000)
)

// ParseStatus accepts any casing of a known status. "Validated" is read as Approved.
func ParseStatus(raw string) (Status, error) {
	raw = strings.TrimSpace(raw)
	if strings.EqualFold(raw, "Validated") {
		return StatusApproved, nil
	}
	for _, s := range Statuses() {
		if strings.EqualFold(raw, string(s)) {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
}

// Statuses lists every status in state machine order.
func Statuses() []Status {
	return []Status{StatusPendingValidation, StatusValidationRequired, StatusApproved, StatusRejected}
}

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// ParsePriority accepts any casing of a known priority.
func ParsePriority(raw string) (Priority, error) {
	raw = strings.TrimSpace(raw)
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical} {
		if strings.EqualFold(raw, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidPriority, raw)
}

// PriorityForAmount derives a default priority from amount bands.
func PriorityForAmount(amount decimal.Decimal) Priority {
	switch {
	case amount.GreaterThanOrEqual(criticalFloor):
		return PriorityCritical
	case amount.GreaterThanOrEqual(highFloor):
		return PriorityHigh
	case amount.GreaterThanOrEqual(mediumFloor):
		return PriorityMedium
	default:
		return PriorityLow
	}
}

// InitialStatus routes SPEI orders above threshold to Validation Required.
func InitialStatus(paymentMethod string, amount, threshold decimal.Decimal) Status {
	if strings.EqualFold(strings.TrimSpace(paymentMethod), PaymentMethodSPEI) && amount.GreaterThan(threshold) {
		return StatusValidationRequired
	}
	return StatusPendingValidation
}

// Decision records who closed the order and with which bank evidence.
type Decision struct {
	Note          string
	BankReference string
	Actor         string
	DecidedAt     time.Time
}

// Order is a customer purchase pending or past payment validation.
type Order struct {
	ID               string
	Customer         string
	Amount           decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	Priority         Priority
	OrderedAt        time.Time
	Items            []string
	Status           Status
	Decision         *Decision
}

// Attributes carries the data needed to open an order.
type Attributes struct {
	ID               string
	Customer         string
	Amount           decimal.Decimal
	PaymentMethod    string
	PaymentReference string
	Priority         Priority
	OrderedAt        time.Time
	Items            []string
}

// NewOrder validates attributes and opens the order in its initial validation state.
func NewOrder(attrs Attributes, threshold decimal.Decimal) (*Order, error) {
	items := make([]string, 0, len(attrs.Items))
	for _, item := range attrs.Items {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	order := &Order{
		ID:               strings.TrimSpace(attrs.ID),
		Customer:         strings.TrimSpace(attrs.Customer),
		Amount:           attrs.Amount,
		PaymentMethod:    strings.TrimSpace(attrs.PaymentMethod),
		PaymentReference: strings.TrimSpace(attrs.PaymentReference),
		Priority:         attrs.Priority,
		OrderedAt:        attrs.OrderedAt.UTC(),
		Items:            items,
	}
	if strings.EqualFold(order.PaymentMethod, PaymentMethodSPEI) {
		order.PaymentMethod = PaymentMethodSPEI
	}
	if order.Priority == "" {
		order.Priority = PriorityForAmount(order.Amount)
	}
	order.Status = InitialStatus(order.PaymentMethod, order.Amount, threshold)
	if err := order.Validate(); err != nil {
		return nil, err
	}
	return order, nil
}

// Validate enforces invariants on the aggregate.
func (o *Order) Validate() error {
	if o.ID == "" {
		return ErrEmptyID
	}
	if o.Customer == "" {
		return ErrEmptyCustomer
	}
	if !o.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if o.PaymentMethod == "" {
		return ErrEmptyPaymentMethod
	}
	if o.PaymentMethod == PaymentMethodSPEI && o.PaymentReference == "" {
		return ErrEmptyPaymentReference
	}
	if len(o.Items) == 0 {
		return ErrNoItems
	}
	if _, err := ParsePriority(string(o.Priority)); err != nil {
		return err
	}
	if _, err := ParseStatus(string(o.Status)); err != nil {
		return err
	}
	return nil
}

// ItemSummary joins item lines for display.
func (o *Order) ItemSummary() string {
	return strings.Join(o.Items, ", ")
}

// Approve closes the order as paid. A bank reference is mandatory.
func (o *Order) Approve(note, bankReference, actor string, at time.Time) error {
	if strings.TrimSpace(bankReference) == "" {
		return ErrMissingBankReference
	}
	return o.decide(StatusApproved, note, bankReference, actor, at)
}

// Reject closes the order as not paid.
func (o *Order) Reject(note, bankReference, actor string, at time.Time) error {
	return o.decide(StatusRejected, note, bankReference, actor, at)
}

func (o *Order) decide(to Status, note, bankReference, actor string, at time.Time) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s is %s", ErrAlreadyDecided, o.ID, o.Status)
	}
	o.Status = to
	o.Decision = &Decision{
		Note:          strings.TrimSpace(note),
		BankReference: strings.TrimSpace(bankReference),
		Actor:         actor,
		DecidedAt:     at.UTC(),
	}
	return nil
}

// Clone returns a deep copy.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Items = append([]string(nil), o.Items...)
	if o.Decision != nil {
		decision := *o.Decision
		clone.Decision = &decision
	}
	return &clone
}
