package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
)

var (
	// ErrInvalidInput signals the request violated a domain invariant.
	ErrInvalidInput = errors.New("invalid inventory input")
	// ErrConflict signals the request collides with stored state.
	ErrConflict = errors.New("inventory conflict")
	// ErrEmptyImport signals a CSV document without data rows.
	ErrEmptyImport = errors.New("import contains no rows")
	// ErrInvalidCSV signals a malformed CSV document.
	ErrInvalidCSV = errors.New("malformed csv")
	// ErrUnsupportedFormat signals an unknown export format.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyModel) ||
		errors.Is(err, domain.ErrEmptyProduct) ||
		errors.Is(err, domain.ErrInvalidStatus) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrInvalidDate) ||
		errors.Is(err, ErrEmptyImport) ||
		errors.Is(err, ErrInvalidCSV) ||
		errors.Is(err, ErrUnsupportedFormat) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if errors.Is(err, domain.ErrDuplicateIMEI) ||
		errors.Is(err, domain.ErrDuplicateSerial) ||
		errors.Is(err, ports.ErrIdempotencyConflict) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
