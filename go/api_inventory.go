package opsserver

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	inventoryhttpmapper "github.com/Apurer/reseller-ops-api/internal/domains/inventory/adapters/http/mapper"
	inventoryports "github.com/Apurer/reseller-ops-api/internal/domains/inventory/ports"
	apierrors "github.com/Apurer/reseller-ops-api/internal/shared/errors"
)

// IdempotencyKeyHeader lets clients retry a sale without selling twice.
const IdempotencyKeyHeader = "Idempotency-Key"

// InventoryAPI wires HTTP transport with the inventory service and durable sale workflows.
type InventoryAPI struct {
	service   inventoryports.Service
	workflows inventoryports.WorkflowOrchestrator
}

// NewInventoryAPI creates an InventoryAPI. A nil orchestrator sells through the service directly.
func NewInventoryAPI(service inventoryports.Service, workflows inventoryports.WorkflowOrchestrator) InventoryAPI {
	return InventoryAPI{service: service, workflows: workflows}
}

// Get /api/inventory
// Lists units matching the query filters in FIFO order
func (api *InventoryAPI) ListInventory(c *gin.Context) {
	var filter inventoryhttpmapper.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindingError(c, err)
		return
	}
	units, err := api.service.List(c.Request.Context(), filter.ToDomainFilter())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventoryhttpmapper.FromDomainUnits(units))
}

// Get /api/inventory/unique-categories
// Lists distinct values per filterable attribute
func (api *InventoryAPI) UniqueCategories(c *gin.Context) {
	categories, err := api.service.UniqueCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventoryhttpmapper.FromCategories(categories))
}

// Get /api/inventory/summary
func (api *InventoryAPI) Summary(c *gin.Context) {
	summary, err := api.service.Summary(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventoryhttpmapper.FromSummary(summary))
}

// Get /api/inventory/export
// Exports filtered units as CSV or XLSX
func (api *InventoryAPI) ExportInventory(c *gin.Context) {
	var filter inventoryhttpmapper.Filter
	if err := c.ShouldBindQuery(&filter); err != nil {
		respondBindingError(c, err)
		return
	}
	format := inventoryports.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(inventoryports.ExportCSV))))
	result, err := api.service.Export(c.Request.Context(), inventoryports.ExportInput{
		Filter: filter.ToDomainFilter(),
		Format: format,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": result.FileName}))
	c.Data(http.StatusOK, result.ContentType, result.Data)
}

// Post /api/inventory
// Registers one serialized unit
func (api *InventoryAPI) AddInventoryUnit(c *gin.Context) {
	var payload inventoryhttpmapper.NewUnit
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	unit, err := api.service.AddUnit(c.Request.Context(), inventoryhttpmapper.ToAddUnitInput(payload))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inventoryhttpmapper.FromDomainUnit(unit))
}

// Post /api/inventory/import
// Imports units from a CSV upload, either multipart field "file" or a raw text/csv body
func (api *InventoryAPI) ImportInventory(c *gin.Context) {
	input, closeFn, err := importInput(c)
	if err != nil {
		respondProblem(c, apierrors.ErrBadRequest.WithDetail(err.Error()))
		return
	}
	defer closeFn()
	result, err := api.service.Import(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inventoryhttpmapper.ImportResponse{Imported: result.Imported, UnitIDs: result.UnitIDs})
}

func importInput(c *gin.Context) (inventoryports.ImportInput, func(), error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return inventoryports.ImportInput{}, nil, fmt.Errorf("multipart field \"file\" is required: %w", err)
		}
		file, err := header.Open()
		if err != nil {
			return inventoryports.ImportInput{}, nil, err
		}
		return inventoryports.ImportInput{Source: header.Filename, Reader: file}, func() { _ = file.Close() }, nil
	}
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return inventoryports.ImportInput{}, nil, fmt.Errorf("csv body is required")
	}
	return inventoryports.ImportInput{Source: "request body", Reader: c.Request.Body}, func() {}, nil
}

// Post /api/inventory/sell
// Sells the oldest available units of a product
func (api *InventoryAPI) SellInventory(c *gin.Context) {
	var payload inventoryhttpmapper.SellRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondBindingError(c, err)
		return
	}
	result, err := api.sell(c.Request.Context(), inventoryports.SellInput{
		Product:        payload.Product,
		Quantity:       payload.Quantity,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader)),
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, inventoryhttpmapper.FromSaleResult(result))
}

func (api *InventoryAPI) sell(ctx context.Context, input inventoryports.SellInput) (*inventoryports.SaleResult, error) {
	if api.workflows != nil {
		return api.workflows.Sell(ctx, input)
	}
	return api.service.Sell(ctx, input)
}
