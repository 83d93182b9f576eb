package application

import (
	"errors"
	"fmt"

	"github.com/Apurer/reseller-ops-api/internal/domains/audit/domain"
)

// ErrInvalidInput signals the request violated a domain invariant.
var ErrInvalidInput = errors.New("invalid audit input")

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrInvalidAction) ||
		errors.Is(err, domain.ErrEmptyActor) ||
		errors.Is(err, domain.ErrEmptyTarget) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}
