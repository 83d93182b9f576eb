package inventory

import (
	"go.temporal.io/sdk/workflow"

	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	inventoryactivities "github.com/Apurer/reseller-ops-api/internal/platform/temporal/activities/inventory"
	"github.com/Apurer/reseller-ops-api/internal/platform/temporal/sequences"
)

const (
	// SaleWorkflowName is the public identifier for registering the workflow.
	SaleWorkflowName = "inventory.workflows.Sale"
	// SaleTaskQueue is the queue consumed by the worker processing sale workflows.
	SaleTaskQueue = "INVENTORY_SALE"
)

// SaleWorkflowInput captures the payload required to run a FIFO sale.
type SaleWorkflowInput struct {
	Sale    inventoryactivities.SellInput
	TraceID string
}

// SaleWorkflow runs a FIFO sale as a durable execution.
func SaleWorkflow(ctx workflow.Context, input SaleWorkflowInput) (*inventoryports.SaleResult, error) {
	logger := workflow.GetLogger(ctx)
	product := input.Sale.Command.Product
	logger.Info("SaleWorkflow started", withTraceID(input.TraceID, "product", product)...)
	result, err := sequences.RunSaleSequence(ctx, input.Sale)
	if err != nil {
		logger.Error("SaleWorkflow failed", withTraceID(input.TraceID, "product", product, "error", err)...)
		return nil, err
	}
	logger.Info("SaleWorkflow completed", withTraceID(input.TraceID, "product", product, "sold", result.Sold)...)
	return result, nil
}

func withTraceID(traceID string, keyvals ...interface{}) []interface{} {
	if traceID == "" {
		return keyvals
	}
	return append(keyvals, "traceId", traceID)
}
