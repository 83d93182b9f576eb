package opsserver

import (
	"net/http"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/Apurer/reseller-ops-api/internal/shared/actor"
)

// ActorHeader names the request header carrying the administrator identity.
const ActorHeader = "X-Actor"

// Route is the information for every URI.
type Route struct {
	// Name is the name of this Route.
	Name string
	// Method is the string for the HTTP method. ex) GET, POST etc..
	Method string
	// Pattern is the pattern of the URI.
	Pattern string
	// HandlerFunc is the handler function of this route.
	HandlerFunc gin.HandlerFunc
}

// NewRouter returns a new router.
func NewRouter(handleFunctions ApiHandleFunctions) *gin.Engine {
	return NewRouterWithGinEngine(gin.Default(), handleFunctions)
}

// NewRouterWithGinEngine adds the API routes to an existing gin engine.
func NewRouterWithGinEngine(router *gin.Engine, handleFunctions ApiHandleFunctions) *gin.Engine {
	useJSONFieldNames()
	router.Use(ActorMiddleware())
	for _, route := range getRoutes(handleFunctions) {
		if route.HandlerFunc == nil {
			route.HandlerFunc = DefaultHandleFunc
		}
		switch route.Method {
		case http.MethodGet:
			router.GET(route.Pattern, route.HandlerFunc)
		case http.MethodPost:
			router.POST(route.Pattern, route.HandlerFunc)
		case http.MethodPut:
			router.PUT(route.Pattern, route.HandlerFunc)
		case http.MethodPatch:
			router.PATCH(route.Pattern, route.HandlerFunc)
		case http.MethodDelete:
			router.DELETE(route.Pattern, route.HandlerFunc)
		}
	}

	return router
}

var registerTagNames sync.Once

// useJSONFieldNames makes validation errors report the JSON member name instead of the Go field.
func useJSONFieldNames() {
	registerTagNames.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			if name == "" {
				return field.Name
			}
			return name
		})
	})
}

// DefaultHandleFunc answers routes whose handler has not been wired.
func DefaultHandleFunc(c *gin.Context) {
	c.String(http.StatusNotImplemented, "501 not implemented")
}

// ActorMiddleware attributes the request to the X-Actor header (default "system") and the client IP.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		who := actor.Actor{ID: strings.TrimSpace(c.GetHeader(ActorHeader)), Address: c.ClientIP()}
		c.Request = c.Request.WithContext(actor.WithActor(c.Request.Context(), who))
		c.Next()
	}
}

type ApiHandleFunctions struct {
	// Routes for the AuditAPI part of the API
	AuditAPI AuditAPI
	// Routes for the HealthAPI part of the API
	HealthAPI HealthAPI
	// Routes for the InventoryAPI part of the API
	InventoryAPI InventoryAPI
	// Routes for the OrdersAPI part of the API
	OrdersAPI OrdersAPI
	// Routes for the QuotesAPI part of the API
	QuotesAPI QuotesAPI
}

func getRoutes(handleFunctions ApiHandleFunctions) []Route {
	return []Route{
		{"ListAuditLogs", http.MethodGet, "/api/audit-logs", handleFunctions.AuditAPI.ListAuditLogs},
		{"Healthz", http.MethodGet, "/healthz", handleFunctions.HealthAPI.Healthz},
		{"ListInventory", http.MethodGet, "/api/inventory", handleFunctions.InventoryAPI.ListInventory},
		{"UniqueCategories", http.MethodGet, "/api/inventory/unique-categories", handleFunctions.InventoryAPI.UniqueCategories},
		{"InventorySummary", http.MethodGet, "/api/inventory/summary", handleFunctions.InventoryAPI.Summary},
		{"ExportInventory", http.MethodGet, "/api/inventory/export", handleFunctions.InventoryAPI.ExportInventory},
		{"AddInventoryUnit", http.MethodPost, "/api/inventory", handleFunctions.InventoryAPI.AddInventoryUnit},
		{"ImportInventory", http.MethodPost, "/api/inventory/import", handleFunctions.InventoryAPI.ImportInventory},
		{"SellInventory", http.MethodPost, "/api/inventory/sell", handleFunctions.InventoryAPI.SellInventory},
		{"ListOrders", http.MethodGet, "/api/orders", handleFunctions.OrdersAPI.ListOrders},
		{"OrderSummary", http.MethodGet, "/api/orders/summary", handleFunctions.OrdersAPI.Summary},
		{"GetOrder", http.MethodGet, "/api/orders/:orderId", handleFunctions.OrdersAPI.GetOrder},
		{"PlaceOrder", http.MethodPost, "/api/orders", handleFunctions.OrdersAPI.PlaceOrder},
		{"ApproveOrder", http.MethodPost, "/api/orders/:orderId/approve", handleFunctions.OrdersAPI.ApproveOrder},
		{"RejectOrder", http.MethodPost, "/api/orders/:orderId/reject", handleFunctions.OrdersAPI.RejectOrder},
		{"QuoteCatalog", http.MethodGet, "/api/quotes/catalog", handleFunctions.QuotesAPI.Catalog},
		{"CreateQuote", http.MethodPost, "/api/quotes", handleFunctions.QuotesAPI.CreateQuote},
		{"GetQuote", http.MethodGet, "/api/quotes/:quoteId", handleFunctions.QuotesAPI.GetQuote},
		{"DiscardQuote", http.MethodDelete, "/api/quotes/:quoteId", handleFunctions.QuotesAPI.DiscardQuote},
		{"AddQuoteItem", http.MethodPost, "/api/quotes/:quoteId/items", handleFunctions.QuotesAPI.AddItem},
		{"SetQuoteItemQuantity", http.MethodPut, "/api/quotes/:quoteId/items/:productId", handleFunctions.QuotesAPI.SetItemQuantity},
		{"SubmitQuote", http.MethodPost, "/api/quotes/:quoteId/submit", handleFunctions.QuotesAPI.SubmitQuote},
	}
}
