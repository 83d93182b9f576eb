package sequences

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	inventoryactivities "github.com/Apurer/reseller-ops-api/internal/platform/temporal/activities/inventory"
)

// RunSaleSequence executes the sale activity with a retry policy for infrastructure failures.
func RunSaleSequence(ctx workflow.Context, input inventoryactivities.SellInput) (*inventoryports.SaleResult, error) {
	logger := workflow.GetLogger(ctx)
	product := input.Command.Product
	logger.Info("sale sequence started", "product", product, "quantity", input.Command.Quantity)
	options := workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    2 * time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    10 * time.Second,
			MaximumAttempts:    5,
			NonRetryableErrorTypes: []string{
				inventoryactivities.ErrTypeInsufficientStock,
				inventoryactivities.ErrTypeInvalidInput,
				inventoryactivities.ErrTypeConflict,
			},
		},
	}

	var result inventoryports.SaleResult
	err := workflow.ExecuteActivity(workflow.WithActivityOptions(ctx, options), inventoryactivities.SellActivityName, input).Get(ctx, &result)
	if err != nil {
		logger.Error("sale sequence failed", "product", product, "error", err)
		return nil, err
	}
	logger.Info("sale sequence completed", "product", product, "sold", result.Sold)
	return &result, nil
}
