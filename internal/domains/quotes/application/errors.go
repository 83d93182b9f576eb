package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/reseller-ops-api/internal/domains/quotes/domain"
)

// ErrInvalidInput signals the request violated a quote invariant.
var ErrInvalidInput = errors.New("invalid quote input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrEmptyQuoteID) ||
		errors.Is(err, domain.ErrInvalidQuantity) ||
		errors.Is(err, domain.ErrEmptyQuote) ||
		errors.Is(err, domain.ErrEmptyCompany) ||
		errors.Is(err, domain.ErrInvalidEmail) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
