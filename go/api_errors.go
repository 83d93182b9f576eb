package opsserver

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	auditapp "github.com/Apurer/reseller-ops-api/internal/domains/audit/application"
	redislockadapter "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/redislock"
	inventoryapp "github.com/Apurer/reseller-ops-api/internal/domains/inventory/application"
	inventorydomain "github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	ordersapp "github.com/Apurer/reseller-ops-api/internal/domains/orders/application"
	ordersports "github.com/Apurer/reseller-ops-api/internal/domains/orders/ports"
	quotesapp "github.com/Apurer/reseller-ops-api/internal/domains/quotes/application"
	quotesports "github.com/Apurer/reseller-ops-api/internal/domains/quotes/ports"
	apierrors "github.com/Apurer/reseller-ops-api/internal/shared/errors"
)

// respondProblem maps a ProblemDetail through the shared responder.
func respondProblem(c *gin.Context, problem apierrors.ProblemDetail) {
	apierrors.Respond(c, problem)
}

// respondBindingError turns gin binding failures into 400 problems, listing offending fields when
// the validator reports them.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = describeFieldError(fe)
		}
		respondProblem(c, apierrors.NewValidationProblem(fields).WithDetail("request body failed validation"))
		return
	}
	respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
}

// serviceErrors maps application errors of every bounded context onto problem responses; anything
// unmatched becomes a 500.
var serviceErrors = apierrors.NewChainedResponder("",
	inventoryProblem,
	ordersProblem,
	quotesProblem,
	auditProblem,
	lockProblem,
)

func respondServiceError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	serviceErrors.RespondError(c, err)
}

func inventoryProblem(err error) (apierrors.ProblemDetail, bool) {
	var shortage *inventorydomain.InsufficientStockError
	switch {
	case errors.As(err, &shortage):
		return apierrors.NewConflictProblem(err.Error(), map[string]any{
			"product":   shortage.Product,
			"available": shortage.Available,
			"requested": shortage.Requested,
		}), true
	case errors.Is(err, inventoryapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, inventoryports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, inventoryapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func ordersProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, ordersapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, ordersports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, ordersapp.ErrConflict):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func quotesProblem(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, quotesapp.ErrInvalidInput):
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	case errors.Is(err, quotesports.ErrQuoteNotFound), errors.Is(err, quotesports.ErrProductNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func auditProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, auditapp.ErrInvalidInput) {
		return apierrors.ErrBadRequest.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func lockProblem(err error) (apierrors.ProblemDetail, bool) {
	if errors.Is(err, redislockadapter.ErrLockNotObtained) {
		return apierrors.ErrUnavailable.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt", "gte", "min":
		return fmt.Sprintf("must be at least %s", minimumFor(fe))
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}

func minimumFor(fe validator.FieldError) string {
	if fe.Tag() == "gt" {
		return fe.Param() + " (exclusive)"
	}
	return fe.Param()
}
