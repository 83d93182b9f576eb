package workflows

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	oteltrace "go.opentelemetry.io/otel/trace"
	"go.temporal.io/api/serviceerror"
	"go.temporal.io/sdk/client"

	"github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	inventoryactivities "github.com/Apurer/reseller-ops-api/internal/platform/temporal/activities/inventory"
	inventoryworkflows "github.com/Apurer/reseller-ops-api/internal/platform/temporal/workflows/inventory"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

var (
	_ ports.WorkflowOrchestrator = (*TemporalSaleWorkflows)(nil)
	_ ports.WorkflowOrchestrator = (*InlineSaleWorkflows)(nil)
)

// TemporalSaleWorkflows starts sale workflows on a Temporal cluster.
type TemporalSaleWorkflows struct {
	client    client.Client
	taskQueue string
}

// NewTemporalSaleWorkflows wires a Temporal client into the orchestrator.
func NewTemporalSaleWorkflows(c client.Client) *TemporalSaleWorkflows {
	return &TemporalSaleWorkflows{client: c, taskQueue: inventoryworkflows.SaleTaskQueue}
}

// Sell starts the sale workflow and waits for its result.
func (o *TemporalSaleWorkflows) Sell(ctx context.Context, input ports.SellInput) (*ports.SaleResult, error) {
	if o == nil || o.client == nil {
		return nil, errors.New("temporal sale workflows not configured")
	}
	traceComponent := workflowTraceComponent(ctx)
	workflowID := buildSaleWorkflowID(input, traceComponent)
	options := client.StartWorkflowOptions{
		ID:        workflowID,
		TaskQueue: o.taskQueue,
	}
	run, err := o.client.ExecuteWorkflow(
		ctx,
		options,
		inventoryworkflows.SaleWorkflow,
		inventoryworkflows.SaleWorkflowInput{
			Sale:    inventoryactivities.SellInput{Command: input, Actor: actor.FromContext(ctx)},
			TraceID: traceComponent,
		},
	)
	if err != nil {
		var alreadyStarted *serviceerror.WorkflowExecutionAlreadyStarted
		if errors.As(err, &alreadyStarted) && strings.TrimSpace(input.IdempotencyKey) != "" {
			existingRun := o.client.GetWorkflow(ctx, workflowID, alreadyStarted.RunId)
			var result ports.SaleResult
			if err := existingRun.Get(ctx, &result); err != nil {
				return nil, inventoryactivities.FromApplicationError(err)
			}
			result.Replayed = true
			return &result, nil
		}
		return nil, err
	}
	var result ports.SaleResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, inventoryactivities.FromApplicationError(err)
	}
	return &result, nil
}

// InlineSaleWorkflows executes the service directly without Temporal, useful for tests or dev fallbacks.
type InlineSaleWorkflows struct {
	service ports.Service
}

// NewInlineSaleWorkflows wraps the inventory service for synchronous execution.
func NewInlineSaleWorkflows(service ports.Service) *InlineSaleWorkflows {
	return &InlineSaleWorkflows{service: service}
}

// Sell delegates to the application service without durable orchestration.
func (o *InlineSaleWorkflows) Sell(ctx context.Context, input ports.SellInput) (*ports.SaleResult, error) {
	if o == nil || o.service == nil {
		return nil, errors.New("inline sale workflows not configured")
	}
	return o.service.Sell(ctx, input)
}

func buildSaleWorkflowID(input ports.SellInput, traceComponent string) string {
	if key := strings.TrimSpace(input.IdempotencyKey); key != "" {
		return fmt.Sprintf("inventory-sale-idem-%s", hashKey(key))
	}
	return fmt.Sprintf("inventory-sale-%s-%s", hashKey(input.Product), traceComponent)
}

func hashKey(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}

func workflowTraceComponent(ctx context.Context) string {
	traceComponent := workflowTraceID(ctx)
	if traceComponent != "" {
		return traceComponent
	}
	return fmt.Sprintf("fallback-%d", time.Now().UnixNano())
}

func workflowTraceID(ctx context.Context) string {
	span := oteltrace.SpanFromContext(ctx)
	if span == nil {
		return ""
	}
	spanCtx := span.SpanContext()
	if !spanCtx.IsValid() {
		return ""
	}
	traceID := spanCtx.TraceID()
	if !traceID.IsValid() {
		return ""
	}
	return traceID.String()
}
