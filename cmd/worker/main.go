package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/reseller-ops-api/internal/app/api"
	platformobservability "github.com/Apurer/reseller-ops-api/internal/platform/observability"
	inventoryactivities "github.com/Apurer/reseller-ops-api/internal/platform/temporal/activities/inventory"
	inventoryworkflows "github.com/Apurer/reseller-ops-api/internal/platform/temporal/workflows/inventory"
)

func main() {
	ctx := context.Background()
	const serviceName = "reseller-ops-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	// The API process owns demo seeding.
	cfg.SeedDemoData = false

	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := api.BuildStack(ctx, cfg, instruments)
	if err != nil {
		logger.Error("failed to build service stack", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer stack.Close()
	if !stack.Durable {
		logger.Warn("worker is running on in-memory storage; sales will not be visible to the API process")
	}
	saleActivities := inventoryactivities.NewActivities(stack.Inventory)

	temporalClient, err := api.ConnectTemporalClient(cfg, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, inventoryworkflows.SaleTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(inventoryworkflows.SaleWorkflow, workflow.RegisterOptions{Name: inventoryworkflows.SaleWorkflowName})
	w.RegisterActivityWithOptions(saleActivities.Sell, activity.RegisterOptions{Name: inventoryactivities.SellActivityName})

	logger.Info("worker listening", slog.String("taskQueue", inventoryworkflows.SaleTaskQueue), slog.String("namespace", cfg.TemporalNamespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
