//go:build pact
// +build pact

package pacttest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

const (
	ProviderName = "reseller-ops-api"
	ConsumerName = "ops-dashboard"

	StateWidgetsInStock  = "two Widget units are in stock"
	StateGadgetsSoldOut  = "no Gadget units are in stock"
	StateOrderAwaitsSPEI = "order ORD-2024-003 awaits SPEI validation"
	StateOrderMissing    = "no order with id ORD-404"
)

const (
	WidgetProduct  = "Widget"
	GadgetProduct  = "Gadget"
	OpenOrderID    = "ORD-2024-003"
	MissingOrderID = "ORD-404"
	BankReference  = "BBVA-240116-0042"
	OperatorActor  = "ana.torres"
)

// PactDir returns the workspace-level directory for generated pact files.
func PactDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "pacts")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact dir: %v", err)
	}
	return dir
}

// PactFile returns the canonical pact file path for the dashboard consumer.
func PactFile(t testing.TB) string {
	t.Helper()
	return filepath.Join(PactDir(t), ConsumerName+"-"+ProviderName+".json")
}

// LogDir returns the log output directory for pact-go.
func LogDir(t testing.TB) string {
	t.Helper()
	dir := filepath.Join(projectRoot(t), "bin", "pact-logs")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("create pact log dir: %v", err)
	}
	return dir
}

// ExampleSellPayload provides stable test data for sale interactions.
func ExampleSellPayload(product string, quantity int) map[string]any {
	return map[string]any{
		"product":  product,
		"quantity": quantity,
	}
}

// ExampleDecisionPayload is the approval an operator submits for a large SPEI transfer.
func ExampleDecisionPayload() map[string]any {
	return map[string]any{
		"note":          "Transfer matched on bank statement",
		"bankReference": BankReference,
	}
}

// projectRoot walks up from this file to the workspace root.
func projectRoot(t testing.TB) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("cannot determine caller for pact paths")
	}
	return filepath.Clean(filepath.Join(filepath.Dir(file), "..", ".."))
}
