package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/reseller-ops-api/internal/domains/orders/domain"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid order input")
	// ErrConflict signals the request collides with the order's current state.
	ErrConflict = errors.New("order conflict")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyID) ||
		errors.Is(err, domain.ErrEmptyCustomer) ||
		errors.Is(err, domain.ErrInvalidAmount) ||
		errors.Is(err, domain.ErrNoItems) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidPriority) ||
		errors.Is(err, domain.ErrMissingBankReference) ||
		errors.Is(err, domain.ErrEmptyPaymentMethod) ||
		errors.Is(err, domain.ErrEmptyPaymentReference) ||
		errors.Is(err, errInvalidOrderDate) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrAlreadyDecided) ||
		errors.Is(err, domain.ErrDuplicateOrder) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
