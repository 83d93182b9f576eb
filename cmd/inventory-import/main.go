// Command inventory-import loads a CSV file of serialized units through the inventory service,
// recording a CSV Import audit entry like an upload through the API would.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Apurer/reseller-ops-api/internal/app/api"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	platformobservability "github.com/Apurer/reseller-ops-api/internal/platform/observability"
	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

func main() {
	file := flag.String("file", "", "path to the CSV file to import")
	who := flag.String("actor", actor.SystemID, "identity recorded in the audit log")
	flag.Parse()
	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(context.Background(), *file, *who); err != nil {
		log.Fatalf("inventory import failed: %v", err)
	}
}

func run(ctx context.Context, path, who string) error {
	cfg, err := api.LoadConfig()
	if err != nil {
		return err
	}
	cfg.SeedDemoData = false

	instruments, shutdown, err := platformobservability.Init(ctx, "reseller-ops-inventory-import")
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()
	logger := instruments.Logger

	stack, err := api.BuildStack(ctx, cfg, instruments)
	if err != nil {
		return err
	}
	defer stack.Close()
	if !stack.Durable {
		return fmt.Errorf("POSTGRES_DSN must point at a reachable database; an in-memory import would be discarded")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	ctx = actor.WithActor(ctx, actor.Actor{ID: who, Address: "cli"})
	result, err := stack.Inventory.Import(ctx, inventoryports.ImportInput{Source: filepath.Base(path), Reader: f})
	if err != nil {
		return err
	}
	logger.Info("inventory import completed",
		slog.String("file", path),
		slog.Int("imported", result.Imported),
		slog.Any("unitIds", result.UnitIDs))
	return nil
}
