package ports

import "context"

// WorkflowOrchestrator exposes durable sale execution.
type WorkflowOrchestrator interface {
	Sell(ctx context.Context, input SellInput) (*SaleResult, error)
}
