package opsserver

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auditmemory "github.com/Apurer/reseller-ops-api/internal/domains/audit/adapters/memory"
	auditapp "github.com/Apurer/reseller-ops-api/internal/domains/audit/application"
	inventorymemory "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/memory"
	inventoryapp "github.com/Apurer/reseller-ops-api/internal/domains/inventory/application"
	inventorydomain "github.com/Apurer/reseller-ops-api/internal/domains/inventory/domain"
	ordersmemory "github.com/Apurer/reseller-ops-api/internal/domains/orders/adapters/memory"
	ordersapp "github.com/Apurer/reseller-ops-api/internal/domains/orders/application"
	quotesmemory "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/memory"
	quotesstock "github.com/Apurer/reseller-ops-api/internal/domains/quotes/adapters/stock"
	quotesapp "github.com/Apurer/reseller-ops-api/internal/domains/quotes/application"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router    *gin.Engine
	inventory *inventorymemory.Repository
}

func newTestServer(t *testing.T, checks map[string]HealthCheck) *testServer {
	t.Helper()
	audit := auditapp.NewService(auditmemory.NewRepository())

	inventoryRepo := inventorymemory.NewRepository()
	inventory := inventoryapp.NewService(inventoryRepo, audit,
		inventoryapp.WithLocker(inventorymemory.NewProductLocker()),
		inventoryapp.WithIdempotencyStore(inventorymemory.NewIdempotencyStore()),
	)
	orders := ordersapp.NewService(ordersmemory.NewRepository(), audit)
	require.NoError(t, ordersmemory.SeedDemo(context.Background(), orders))
	quotes := quotesapp.NewService(quotesstock.NewCatalog(quotesmemory.NewDemoCatalog(), inventory), quotesmemory.NewSessionStore(time.Hour), audit)

	router := NewRouterWithGinEngine(gin.New(), ApiHandleFunctions{
		AuditAPI:     NewAuditAPI(audit),
		HealthAPI:    NewHealthAPI(checks),
		InventoryAPI: NewInventoryAPI(inventory, nil),
		OrdersAPI:    NewOrdersAPI(orders),
		QuotesAPI:    NewQuotesAPI(quotes),
	})
	return &testServer{router: router, inventory: inventoryRepo}
}

func (s *testServer) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func widgetUnit(id int64, date string) *inventorydomain.Unit {
	added, _ := time.Parse("2006-01-02", date)
	return &inventorydomain.Unit{ID: id, Model: "W-1", Product: "Widget", Status: inventorydomain.StatusAvailable, DateAdded: added}
}

func TestSellInventory_FIFOThenShortage(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.inventory.Seed(widgetUnit(3, "2024-01-03"), widgetUnit(1, "2024-01-01"), widgetUnit(2, "2024-01-02"))

	rec := srv.do(t, http.MethodPost, "/api/inventory/sell", map[string]any{"product": "Widget", "quantity": 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sold := decode[map[string]any](t, rec)
	assert.Equal(t, float64(2), sold["sold"])
	assert.Equal(t, []any{float64(1), float64(2)}, sold["unitIds"])

	rec = srv.do(t, http.MethodPost, "/api/inventory/sell", map[string]any{"product": "Widget", "quantity": 5})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	problem := decode[map[string]any](t, rec)
	ext := problem["extensions"].(map[string]any)
	assert.Equal(t, float64(1), ext["available"])
	assert.Equal(t, float64(5), ext["requested"])
	assert.NotEmpty(t, problem["error"])
}

func TestSellInventory_RejectsNonPositiveQuantity(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/inventory/sell", map[string]any{"product": "Widget", "quantity": 0})

	require.Equal(t, http.StatusBadRequest, rec.Code)
	problem := decode[map[string]any](t, rec)
	fields := problem["extensions"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "quantity")
}

func TestSellInventory_IdempotentReplay(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.inventory.Seed(widgetUnit(1, "2024-01-01"), widgetUnit(2, "2024-01-02"))
	body := map[string]any{"product": "Widget", "quantity": 1}

	first := srv.do(t, http.MethodPost, "/api/inventory/sell", body, IdempotencyKeyHeader, "sale-1")
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())
	second := srv.do(t, http.MethodPost, "/api/inventory/sell", body, IdempotencyKeyHeader, "sale-1")
	require.Equal(t, http.StatusOK, second.Code, second.Body.String())

	replay := decode[map[string]any](t, second)
	assert.Equal(t, true, replay["replayed"])
	assert.Equal(t, []any{float64(1)}, replay["unitIds"])
}

func TestAddInventoryUnit(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.inventory.Seed(widgetUnit(7, "2024-01-01"))

	rec := srv.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"id": 1, "model": "A2848", "product": "iPhone 15 Pro", "imei": "356789012345678", "dateAdded": "2024-02-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	unit := decode[map[string]any](t, rec)
	assert.Equal(t, float64(8), unit["id"])
	assert.Equal(t, "2024-02-01T00:00:00Z", unit["dateAdded"])
	assert.Equal(t, "Available", unit["status"])

	rec = srv.do(t, http.MethodPost, "/api/inventory", map[string]any{
		"model": "A2848", "product": "iPhone 15 Pro", "imei": "356789012345678",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/inventory", map[string]any{"product": "iPhone 15 Pro"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields := decode[map[string]any](t, rec)["extensions"].(map[string]any)["fields"].(map[string]any)
	assert.Contains(t, fields, "model")
}

func TestListInventoryAndCategories(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.inventory.Seed(widgetUnit(1, "2024-01-01"), &inventorydomain.Unit{
		ID: 2, Model: "G-1", Product: "Gadget", Color: "Black", Status: inventorydomain.StatusAvailable,
		DateAdded: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	})

	rec := srv.do(t, http.MethodGet, "/api/inventory?product=Gadget&model=all", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	units := decode[[]map[string]any](t, rec)
	require.Len(t, units, 1)
	assert.Equal(t, "Gadget", units[0]["product"])

	rec = srv.do(t, http.MethodGet, "/api/inventory/unique-categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	categories := decode[map[string][]string](t, rec)
	assert.Equal(t, []string{"Gadget", "Widget"}, categories["products"])
	assert.Equal(t, []string{"Black"}, categories["colors"])
	assert.Equal(t, []string{}, categories["batches"])
}

func TestExportInventory_CSV(t *testing.T) {
	srv := newTestServer(t, nil)
	srv.inventory.Seed(widgetUnit(1, "2024-01-01"))

	rec := srv.do(t, http.MethodGet, "/api/inventory/export?format=csv", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Widget")
}

func TestImportInventory_CSVBody(t *testing.T) {
	srv := newTestServer(t, nil)
	csvBody := "model,product,imei\nA2848,iPhone 15 Pro,356789012345671\nA2848,iPhone 15 Pro,356789012345672\n"

	req := httptest.NewRequest(http.MethodPost, "/api/inventory/import", bytes.NewBufferString(csvBody))
	req.Header.Set("Content-Type", "text/csv")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, float64(2), decode[map[string]any](t, rec)["imported"])
}

func TestOrders_ApproveRecordsActor(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/orders?status=Validation%20Required", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	open := decode[[]map[string]any](t, rec)
	require.Len(t, open, 1)
	assert.Equal(t, "ORD-2024-003", open[0]["id"])
	assert.Equal(t, float64(234600), open[0]["amount"])

	rec = srv.do(t, http.MethodPost, "/api/orders/ORD-2024-003/approve", map[string]string{"note": "ok"}, ActorHeader, "ana")
	require.Equal(t, http.StatusBadRequest, rec.Code, "approval needs a bank reference")

	rec = srv.do(t, http.MethodPost, "/api/orders/ORD-2024-003/approve",
		map[string]string{"note": "ok", "bankReference": "BBVA-998"}, ActorHeader, "ana")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	approved := decode[map[string]any](t, rec)
	assert.Equal(t, "Approved", approved["status"])
	assert.Equal(t, "ana", approved["decision"].(map[string]any)["actor"])

	rec = srv.do(t, http.MethodPost, "/api/orders/ORD-2024-003/reject", nil, ActorHeader, "ana")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/audit-logs?action=Payment%20Approved", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]map[string]any](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "ana", entries[0]["user"])
	assert.Equal(t, "ORD-2024-003", entries[0]["target"])
}

func TestOrders_NotFoundAndSummary(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/orders/ORD-404", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/orders/summary", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decode[map[string]any](t, rec)
	assert.Equal(t, float64(3), summary["pending"])
	assert.Equal(t, float64(1), summary["validationRequired"])
	assert.Equal(t, float64(451400), summary["pendingAmount"])
}

func TestPlaceOrder_RoutesLargeSPEI(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/orders", map[string]any{
		"id": "ORD-2024-010", "customer": "Grupo Norte", "amount": "250000", "paymentMethod": "spei",
		"paymentReference": "SPEI240120010", "items": []string{"Laptop x10"},
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	order := decode[map[string]any](t, rec)
	assert.Equal(t, "Validation Required", order["status"])
	assert.Equal(t, "Critical", order["priority"])
	assert.Equal(t, "SPEI", order["paymentMethod"])
}

func TestQuotes_Lifecycle(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodPost, "/api/quotes", nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := decode[map[string]any](t, rec)["id"].(string)
	base := "/api/quotes/" + id

	for i := 0; i < 2; i++ {
		rec = srv.do(t, http.MethodPost, base+"/items", map[string]any{"productId": 1})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}
	rec = srv.do(t, http.MethodPost, base+"/items", map[string]any{"productId": 5})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decode[map[string]any](t, rec)["items"], "out of stock product is not added")

	rec = srv.do(t, http.MethodPut, base+"/items/3", map[string]any{"quantity": 99})
	require.Equal(t, http.StatusOK, rec.Code)
	quote := decode[map[string]any](t, rec)
	assert.Equal(t, float64(10), quote["items"])
	assert.Equal(t, float64(413990), quote["total"])

	rec = srv.do(t, http.MethodPut, base+"/items/3", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = srv.do(t, http.MethodPut, base+"/items/abc", map[string]any{"quantity": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodPost, base+"/submit", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code, "company is required to submit")

	rec = srv.do(t, http.MethodPost, base+"/submit", map[string]string{
		"company": "Comercializadora MX", "contact": "Luis", "email": "luis@example.com",
	}, ActorHeader, "maria")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	submitted := decode[map[string]any](t, rec)
	assert.Equal(t, float64(413990), submitted["quote"].(map[string]any)["total"])

	rec = srv.do(t, http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodGet, "/api/audit-logs?q=comercializadora", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	entries := decode[[]map[string]any](t, rec)
	require.Len(t, entries, 1)
	assert.Equal(t, "Quote Generated", entries[0]["action"])
	assert.Equal(t, "maria", entries[0]["user"])
}

func TestAuditLogs_RejectsUnknownAction(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := srv.do(t, http.MethodGet, "/api/audit-logs?action=Teleported", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	})
	rec := srv.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	srv = newTestServer(t, map[string]HealthCheck{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})
	rec = srv.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[map[string]any](t, rec)
	assert.Equal(t, "degraded", body["status"])
}
