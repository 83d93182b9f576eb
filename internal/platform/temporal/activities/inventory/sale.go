package inventory

import (
	"context"
	"errors"
	"fmt"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/application"
	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

const (
	// SellActivityName executes a FIFO sale through the inventory service.
	SellActivityName = "inventory.activities.Sell"

	// Application error types that must not be retried.
	ErrTypeInsufficientStock = "InsufficientStock"
	ErrTypeInvalidInput      = "InvalidInput"
	ErrTypeConflict          = "Conflict"
)

// SellInput carries the sale command plus the identity it is attributed to in the audit log.
type SellInput struct {
	Command inventoryports.SellInput
	Actor   actor.Actor
}

// Activities groups activities that operate on the inventory bounded context.
type Activities struct {
	service inventoryports.Service
}

// NewActivities wires the inventory service into the Temporal activities bundle.
func NewActivities(service inventoryports.Service) *Activities {
	return &Activities{service: service}
}

// Sell runs one FIFO sale. Domain failures are returned as non-retryable application errors.
func (a *Activities) Sell(ctx context.Context, input SellInput) (*inventoryports.SaleResult, error) {
	logger := activity.GetLogger(ctx)
	product := input.Command.Product
	if a == nil || a.service == nil {
		logger.Error("sell activity not initialized", "product", product)
		return nil, errors.New("sell activity not initialized")
	}
	logger.Info("Sell activity started", "product", product, "quantity", input.Command.Quantity)
	ctx = actor.WithActor(ctx, input.Actor)
	result, err := a.service.Sell(ctx, input.Command)
	if err != nil {
		logger.Error("Sell activity failed", "product", product, "error", err)
		return nil, ToApplicationError(err)
	}
	logger.Info("Sell activity completed", "product", product, "sold", result.Sold)
	return result, nil
}

// ToApplicationError marks domain failures as non-retryable. Other errors pass through so the
// retry policy applies to infrastructure failures.
func ToApplicationError(err error) error {
	var shortage *domain.InsufficientStockError
	switch {
	case errors.As(err, &shortage):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInsufficientStock, nil,
			shortage.Product, shortage.Available, shortage.Requested)
	case errors.Is(err, application.ErrInvalidInput):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidInput, nil)
	case errors.Is(err, application.ErrConflict):
		return temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeConflict, nil)
	default:
		return err
	}
}

// FromApplicationError restores the domain error carried by a workflow failure.
func FromApplicationError(err error) error {
	var appErr *temporal.ApplicationError
	if !errors.As(err, &appErr) {
		return err
	}
	switch appErr.Type() {
	case ErrTypeInsufficientStock:
		var (
			product              string
			available, requested int
		)
		if detailErr := appErr.Details(&product, &available, &requested); detailErr != nil {
			return err
		}
		return &domain.InsufficientStockError{Product: product, Available: available, Requested: requested}
	case ErrTypeInvalidInput:
		return fmt.Errorf("%w: %s", application.ErrInvalidInput, appErr.Message())
	case ErrTypeConflict:
		return fmt.Errorf("%w: %s", application.ErrConflict, appErr.Message())
	default:
		return err
	}
}
