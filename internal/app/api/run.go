package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	"go.temporal.io/sdk/interceptor"
	workerlog "go.temporal.io/sdk/log"

	opsserver "github.com/Apurer/reseller-ops-api/go"

	inventoryworkflows "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/workflows"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	platformobservability "github.com/Apurer/reseller-ops-api/internal/platform/observability"
)

const serviceName = "reseller-ops-api"

// Run boots the ops dashboard HTTP API with observability, repositories, and workflows wired.
func Run(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	stack, err := BuildStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer stack.Close()

	var saleWorkflows inventoryports.WorkflowOrchestrator = inventoryworkflows.NewInlineSaleWorkflows(stack.Inventory)
	switch temporalClient, err := ConnectTemporalClient(cfg, instruments); {
	case err != nil:
		logger.Warn("Temporal workflows unavailable, running sales inline", slog.String("error", err.Error()))
	case !stack.Durable:
		temporalClient.Close()
		logger.Warn("Temporal sale workflows need shared postgres storage, running sales inline")
	default:
		defer temporalClient.Close()
		saleWorkflows = inventoryworkflows.NewTemporalSaleWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}

	handlers := opsserver.ApiHandleFunctions{
		AuditAPI:     opsserver.NewAuditAPI(stack.Audit),
		HealthAPI:    opsserver.NewHealthAPI(stack.Health),
		InventoryAPI: opsserver.NewInventoryAPI(stack.Inventory, saleWorkflows),
		OrdersAPI:    opsserver.NewOrdersAPI(stack.Orders),
		QuotesAPI:    opsserver.NewQuotesAPI(stack.Quotes),
	}
	engine := gin.New()
	engine.Use(gin.Logger(), gin.Recovery(), otelgin.Middleware(serviceName))
	router := opsserver.NewRouterWithGinEngine(engine, handlers)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: router, ReadHeaderTimeout: 10 * time.Second}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	errCh := make(chan error, 1)
	go func() {
		logger.Info("reseller ops API listening", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("reseller ops API server exited", slog.String("addr", srv.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("reseller ops API shutting down")
	return srv.Shutdown(shutdownCtx)
}

// ConnectTemporalClient dials Temporal with OpenTelemetry tracing unless TEMPORAL_DISABLED is set.
func ConnectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(temporalotel.TracerOptions{
		Tracer: instruments.Tracer("temporal-client"),
	})
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:     cfg.TemporalAddress,
		Namespace:    cfg.TemporalNamespace,
		Logger:       workerlog.NewStructuredLogger(instruments.Logger),
		Interceptors: []interceptor.ClientInterceptor{tracingInterceptor},
	}
	return client.Dial(options)
}
